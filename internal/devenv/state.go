package devenv

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/shinji-kodama/ved/internal/model"
)

// ErrNoState is returned when the state file does not exist.
var ErrNoState = errors.New("no running containers recorded")

const lockRetryDelay = 50 * time.Millisecond

// StateFile is the newline-delimited list of container names started by
// `ved env jupyter`. Every access holds an advisory lock on <path>.lock
// so concurrent invocations never interleave partial writes.
type StateFile struct {
	path string
	lock *flock.Flock
}

// NewStateFile returns a StateFile stored at path.
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the location of the state file.
func (s *StateFile) Path() string {
	return s.path
}

// Append records name as a started container, creating the file if needed.
func (s *StateFile) Append(ctx context.Context, name string) error {
	return s.withLock(ctx, func() error {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(f, name); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

// Read returns the recorded names in insertion order, skipping blank
// lines. A missing file yields ErrNoState.
func (s *StateFile) Read(ctx context.Context) ([]string, error) {
	var names []string
	err := s.withLock(ctx, func() error {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return ErrNoState
			}
			return err
		}
		names = parseState(data)
		return nil
	})
	return names, err
}

// Remove deletes the state file. A missing file yields ErrNoState.
func (s *StateFile) Remove(ctx context.Context) error {
	err := s.withLock(ctx, func() error {
		if err := os.Remove(s.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return ErrNoState
			}
			return err
		}
		return nil
	})
	if err == nil {
		_ = os.Remove(s.lock.Path())
	}
	return err
}

func (s *StateFile) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return model.WrapCLIError(model.ExitStateFileError, "prepare state directory", err)
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return model.WrapCLIError(model.ExitStateFileError, "lock state file "+s.path, err)
	}
	if !locked {
		return model.NewCLIError(model.ExitStateFileError, "state file "+s.path+" is locked")
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := fn(); err != nil {
		if errors.Is(err, ErrNoState) {
			return err
		}
		return model.WrapCLIError(model.ExitStateFileError, "state file "+s.path, err)
	}
	return nil
}

func parseState(data []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names
}
