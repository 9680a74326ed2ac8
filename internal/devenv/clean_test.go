package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, nil, 0o644))
}

func TestCleanTargets(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "pkg/__pycache__/mod.cpython-312.pyc")
	touch(t, root, "pkg/mod.py")
	touch(t, root, "loose.pyc")
	touch(t, root, "build/lib/x.py")
	touch(t, root, "ved.egg-info/PKG-INFO")

	targets, err := CleanTargets(root, []string{"**/__pycache__", "**/*.pyc", "build", "*.egg-info", ""})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "build"),
		filepath.Join(root, "loose.pyc"),
		filepath.Join(root, "pkg", "__pycache__"),
		filepath.Join(root, "ved.egg-info"),
	}, targets)
}

func TestCleanTargetsInvalidPattern(t *testing.T) {
	_, err := CleanTargets(t.TempDir(), []string{"[unclosed"})
	assert.Error(t, err)
}
