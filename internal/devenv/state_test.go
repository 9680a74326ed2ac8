package devenv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateFileLifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".running_containers")
	state := NewStateFile(path)

	_, err := state.Read(ctx)
	require.ErrorIs(t, err, ErrNoState)

	require.NoError(t, state.Append(ctx, "lab-jupyter-1"))
	require.NoError(t, state.Append(ctx, "lab-jupyter-2"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "lab-jupyter-1\nlab-jupyter-2\n", string(data))

	names, err := state.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lab-jupyter-1", "lab-jupyter-2"}, names)

	require.NoError(t, state.Remove(ctx))
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+".lock")

	assert.ErrorIs(t, state.Remove(ctx), ErrNoState)
}

func TestStateFileSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, []byte("\n a \n\nb\r\n"), 0o644))

	names, err := NewStateFile(path).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestStateFileCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state")
	require.NoError(t, NewStateFile(path).Append(context.Background(), "x"))
	assert.FileExists(t, path)
}
