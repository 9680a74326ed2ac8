package video

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/ved/internal/model"
)

func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	return root
}

func TestFindVideos(t *testing.T) {
	root := makeTree(t, "b.mp4", "a.mp4", "sub/c.webm", "sub/deeper/d.mov", "e.txt", "f.avi")

	got, err := FindVideos(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a.mp4"),
		filepath.Join(root, "b.mp4"),
		filepath.Join(root, "sub", "c.webm"),
		filepath.Join(root, "f.avi"),
		filepath.Join(root, "sub", "deeper", "d.mov"),
	}, got)
}

func TestFindVideosExcept(t *testing.T) {
	root := makeTree(t, "a.mp4", "b.webm", "c.avi")

	got, err := FindVideosExcept(root, ".mp4")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "b.webm"),
		filepath.Join(root, "c.avi"),
	}, got)
}

func TestFindVideosIgnoresExtensionCase(t *testing.T) {
	root := makeTree(t, "b.mp4", "Clip.MP4", "sub/c.WebM", "d.TXT")

	got, err := FindVideos(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Clip.MP4"),
		filepath.Join(root, "b.mp4"),
		filepath.Join(root, "sub", "c.WebM"),
	}, got)

	single, err := Resolve(filepath.Join(root, "Clip.MP4"))
	require.NoError(t, err)
	assert.Equal(t, got[:1], single)

	got, err = FindVideosExcept(root, "webm")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Clip.MP4"),
		filepath.Join(root, "b.mp4"),
	}, got)
}

func TestResolve(t *testing.T) {
	root := makeTree(t, "a.mp4", "notes.txt", "sub/b.ogv")

	got, err := Resolve(filepath.Join(root, "a.mp4"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.mp4")}, got)

	got, err = Resolve(root)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	var cliErr *model.CLIError
	_, err = Resolve(filepath.Join(root, "notes.txt"))
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitUsageError, cliErr.Code)

	_, err = Resolve(filepath.Join(root, "missing.mp4"))
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitUsageError, cliErr.Code)
}

func TestSample(t *testing.T) {
	paths := []string{"a", "b", "c", "d", "e"}

	first := Sample(paths, SampleOptions{Seed: 42, Max: 3})
	second := Sample(paths, SampleOptions{Seed: 42, Max: 3})
	assert.Len(t, first, 3)
	assert.Equal(t, first, second, "same seed must give the same draw")

	seen := make(map[string]bool)
	for _, p := range first {
		assert.False(t, seen[p], "sample must not repeat %s", p)
		seen[p] = true
	}

	assert.Len(t, Sample(paths, SampleOptions{Seed: 1, Max: 50}), 5, "k above N is clamped")
	assert.Empty(t, Sample(paths, SampleOptions{Seed: 1, Max: 0}))

	random := Sample(paths, SampleOptions{Seed: 7, Max: -1})
	assert.LessOrEqual(t, len(random), len(paths))

	assert.Empty(t, Sample(nil, SampleOptions{Max: -1}))
}
