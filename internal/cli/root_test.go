// Package cli — root_test.go tests the root command and the mapping of
// errors to exit codes.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/ved/internal/model"
)

func TestRootWithoutArgsPrintsHelp(t *testing.T) {
	workspace(t)
	stdout, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "convert")
	assert.Contains(t, stdout, "--dry-run")
}

func TestUsageErrors(t *testing.T) {
	workspace(t)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"bogus"}},
		{"unknown flag", []string{"list", "--bogus", "."}},
		{"missing argument", []string{"clip", "0:0:1"}},
		{"bad timestamp", []string{"clip", "1:2", "0:0:5", "a.mp4"}},
		{"minute out of range", []string{"split", "0:61:0", "."}},
		{"missing path", []string{"list", "does-not-exist"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, model.ExitUsageError, exitCode(err))
		})
	}
}

func TestHandleError(t *testing.T) {
	jsonOutput = false
	var buf bytes.Buffer
	code := handleError(&buf, fmt.Errorf("wrapped: %w",
		model.WrapCLIError(model.ExitDockerNotRunning, "Docker daemon is not responding", errors.New("dial unix"))))
	assert.Equal(t, model.ExitDockerNotRunning, code)
	assert.Equal(t, "Error: Docker daemon is not responding: dial unix\n", buf.String())

	buf.Reset()
	assert.Equal(t, model.ExitGeneralError, handleError(&buf, errors.New("boom")))
	assert.Equal(t, "Error: boom\n", buf.String())

	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })
	buf.Reset()
	handleError(&buf, model.UsageError("bad %s", "input"))
	assert.JSONEq(t, `{"error":{"message":"bad input"}}`, buf.String())
}
