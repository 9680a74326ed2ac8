package devenv

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shinji-kodama/ved/internal/config"
	"github.com/shinji-kodama/ved/internal/docker"
	"github.com/shinji-kodama/ved/internal/logging"
	"github.com/shinji-kodama/ved/internal/model"
)

// fakeRuntime is an in-memory container engine.
type fakeRuntime struct {
	containers map[string]model.ContainerInfo
	logs       map[string]string
	runs       []docker.RunSpec
	stops      []string
	execs      []docker.ExecOptions
	builds     []docker.BuildOptions
	execErr    error
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		containers: make(map[string]model.ContainerInfo),
		logs:       make(map[string]string),
	}
}

func (f *fakeRuntime) add(info model.ContainerInfo) {
	f.containers[info.ContainerName] = info
}

func (f *fakeRuntime) List(_ context.Context, namespace string) ([]model.ContainerInfo, error) {
	var out []model.ContainerInfo
	for _, c := range f.containers {
		if namespace == "" || c.Labels[docker.LabelNamespace] == namespace {
			out = append(out, c)
		}
	}
	sortByCreated(out)
	return out, nil
}

func sortByCreated(cs []model.ContainerInfo) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].Created.Before(cs[j-1].Created); j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

func (f *fakeRuntime) Inspect(_ context.Context, name string) (model.ContainerInfo, error) {
	c, ok := f.containers[name]
	if !ok {
		return model.ContainerInfo{ContainerName: name, Status: model.StatusMissing},
			fmt.Errorf("%w: %s", docker.ErrContainerNotFound, name)
	}
	return c, nil
}

func (f *fakeRuntime) Run(_ context.Context, spec docker.RunSpec) (string, error) {
	f.runs = append(f.runs, spec)
	info := model.ContainerInfo{
		ContainerID:   "id-" + spec.Name,
		ContainerName: spec.Name,
		Image:         spec.Image,
		Status:        model.StatusRunning,
		Labels:        spec.Labels,
		Created:       time.Now(),
	}
	docker.ApplyLabels(&info)
	f.add(info)
	return info.ContainerID, nil
}

func (f *fakeRuntime) Stop(_ context.Context, name string) error {
	if _, ok := f.containers[name]; !ok {
		return fmt.Errorf("%w: %s", docker.ErrContainerNotFound, name)
	}
	f.stops = append(f.stops, name)
	delete(f.containers, name)
	return nil
}

func (f *fakeRuntime) Logs(_ context.Context, name string) (string, error) {
	if _, ok := f.containers[name]; !ok {
		return "", fmt.Errorf("%w: %s", docker.ErrContainerNotFound, name)
	}
	return f.logs[name], nil
}

func (f *fakeRuntime) Exec(_ context.Context, opts docker.ExecOptions) error {
	f.execs = append(f.execs, opts)
	return f.execErr
}

func (f *fakeRuntime) Build(_ context.Context, opts docker.BuildOptions) error {
	f.builds = append(f.builds, opts)
	return nil
}

// freePorts reports every port as available.
type freePorts struct{}

func (freePorts) IsPortAvailable(int) bool { return true }

// newTestManager returns a Manager over a temp project directory.
func newTestManager(t *testing.T, rt *fakeRuntime) *Manager {
	t.Helper()
	wd := t.TempDir()
	cfg := config.Default()
	cfg.WorkingDir = wd
	cfg.Environment.Namespace = "lab"
	cfg.Environment.Image = "lab:dev"
	cfg.Environment.PauseSeconds = 0

	names := 0
	var stdout, stderr bytes.Buffer
	return &Manager{
		Config:  &cfg,
		Runtime: rt,
		State:   NewStateFile(filepath.Join(wd, cfg.Environment.StateFile)),
		Ports:   freePorts{},
		Logger:  logging.NewNop(),
		Stdout:  &stdout,
		Stderr:  &stderr,
		Sleep:   func(context.Context, time.Duration) error { return nil },
		NewName: func(ns string) string {
			names++
			return fmt.Sprintf("%s-jupyter-%08d", ns, names)
		},
		Now: func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	}
}
