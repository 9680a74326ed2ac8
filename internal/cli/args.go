// Package cli — args.go validates positional arguments.
//
// Every failure is reported as a usage error so the process exits with
// code 2, the same as a cobra flag error.
package cli

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/shinji-kodama/ved/internal/model"
	"github.com/shinji-kodama/ved/internal/video"
)

// parseTimestampArg parses a HOUR:MINUTE:SECOND argument.
func parseTimestampArg(name, value string) (model.Timestamp, error) {
	ts, err := model.ParseTimestamp(value)
	if err != nil {
		return model.Timestamp{}, model.UsageError("invalid value for %s: %v", name, err)
	}
	return ts, nil
}

// videoFileArg checks that path is an existing file with a video
// extension.
func videoFileArg(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.UsageError("path %q does not exist", path)
		}
		return err
	}
	if info.IsDir() {
		return model.UsageError("%q is a directory, a video file is required", path)
	}
	return video.ValidateExtension(path)
}

// isDir reports whether path is an existing directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// choiceArg matches value case-insensitively against choices and returns
// the canonical spelling.
func choiceArg(name, value string, choices []string) (string, error) {
	for _, c := range choices {
		if strings.EqualFold(c, value) {
			return c, nil
		}
	}
	return "", model.UsageError("invalid value for %s: %q is not one of %s",
		name, value, strings.Join(choices, ", "))
}
