// Package cli — helpers_test.go provides the workspace, command runner
// and in-memory fakes shared by the command tests.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/ved/internal/config"
	"github.com/shinji-kodama/ved/internal/devenv"
	"github.com/shinji-kodama/ved/internal/docker"
	"github.com/shinji-kodama/ved/internal/model"
	"github.com/shinji-kodama/ved/internal/scrape"
	"github.com/shinji-kodama/ved/internal/video"
)

// workspace switches into a fresh project directory with an isolated
// user configuration and returns its path.
func workspace(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{config.EnvNamespace, config.EnvNotebookDir, config.EnvPauseSeconds, config.EnvDockerOptions} {
		t.Setenv(key, "")
	}
	dir := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	t.Chdir(dir)
	return dir
}

// touch creates a file, and its parent directories, below the current
// directory.
func touch(t *testing.T, rel string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(rel), 0o755))
	require.NoError(t, os.WriteFile(rel, []byte(rel), 0o644))
	return rel
}

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(bytes.NewReader(nil))
	root.SetArgs(args)
	root.SetContext(context.Background())
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// exitCode maps err the way Execute does.
func exitCode(err error) model.ExitCode {
	var buf bytes.Buffer
	return handleError(&buf, err)
}

// swap replaces *target for the duration of the test.
func swap[T any](t *testing.T, target *T, value T) {
	t.Helper()
	old := *target
	*target = value
	t.Cleanup(func() { *target = old })
}

type clipCall struct {
	src, dst, start, stop string
}

// fakeTranscoder records ffmpeg operations.
type fakeTranscoder struct {
	mu       sync.Mutex
	clips    []clipCall
	converts [][3]string
	entropy  map[string]float64
}

func (f *fakeTranscoder) Clip(_ context.Context, src, dst, start string, stop *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := "None"
	if stop != nil {
		s = *stop
	}
	f.clips = append(f.clips, clipCall{src, dst, start, s})
	return nil
}

func (f *fakeTranscoder) Convert(_ context.Context, src, dst, codec string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.converts = append(f.converts, [3]string{src, dst, codec})
	return nil
}

func (f *fakeTranscoder) Entropy(_ context.Context, info model.VideoInfo) (float64, error) {
	h, ok := f.entropy[info.Path]
	if !ok {
		return 0, errors.New("no frames")
	}
	return h, nil
}

// fakeProber returns durations by path.
type fakeProber map[string]model.VideoInfo

func (f fakeProber) Probe(_ context.Context, path string) (model.VideoInfo, error) {
	info, ok := f[path]
	if !ok {
		return model.VideoInfo{}, model.NewCLIError(model.ExitMediaToolFailed, "ffprobe "+path+": unknown")
	}
	info.Path = path
	return info, nil
}

func useMedia(t *testing.T, probe fakeProber) *fakeTranscoder {
	t.Helper()
	tc := &fakeTranscoder{entropy: map[string]float64{}}
	swap(t, &newTranscoder, func(*config.Config) transcoder { return tc })
	swap(t, &newProber, func(*config.Config) video.Prober { return probe })
	return tc
}

// fakeRuntime is a minimal in-memory container engine.
type fakeRuntime struct {
	containers map[string]model.ContainerInfo
	logs       map[string]string
	stopped    []string
	execs      []docker.ExecOptions
	builds     []docker.BuildOptions
}

func newFakeRuntime(containers ...model.ContainerInfo) *fakeRuntime {
	f := &fakeRuntime{containers: map[string]model.ContainerInfo{}, logs: map[string]string{}}
	for _, c := range containers {
		f.containers[c.ContainerName] = c
	}
	return f
}

func (f *fakeRuntime) List(_ context.Context, namespace string) ([]model.ContainerInfo, error) {
	var out []model.ContainerInfo
	for _, c := range f.containers {
		if namespace == "" || c.Namespace == namespace {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out, nil
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
	f.containers[spec.Name] = model.ContainerInfo{ContainerName: spec.Name, Status: model.StatusRunning, HostPort: spec.HostPort}
	return "id-" + spec.Name, nil
}

func (f *fakeRuntime) Stop(_ context.Context, name string) error {
	if _, ok := f.containers[name]; !ok {
		return fmt.Errorf("%w: %s", docker.ErrContainerNotFound, name)
	}
	delete(f.containers, name)
	f.stopped = append(f.stopped, name)
	return nil
}

func (f *fakeRuntime) Logs(_ context.Context, name string) (string, error) {
	return f.logs[name], nil
}

func (f *fakeRuntime) Exec(_ context.Context, opts docker.ExecOptions) error {
	f.execs = append(f.execs, opts)
	return nil
}

func (f *fakeRuntime) Build(_ context.Context, opts docker.BuildOptions) error {
	f.builds = append(f.builds, opts)
	return nil
}

func useRuntime(t *testing.T, rt *fakeRuntime) {
	t.Helper()
	swap(t, &newRuntime, func(context.Context) (devenv.Runtime, func(), error) {
		return rt, func() {}, nil
	})
}

// recordingDownloader stores the URLs it was asked to fetch.
type recordingDownloader struct {
	mu   sync.Mutex
	urls []string
}

func (d *recordingDownloader) Download(_ context.Context, _, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.urls = append(d.urls, url)
	return nil
}

func useDownloader(t *testing.T) *recordingDownloader {
	t.Helper()
	d := &recordingDownloader{}
	swap(t, &newDownloader, func(*config.Config) scrape.Downloader { return d })
	return d
}
