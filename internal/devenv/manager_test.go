package devenv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/ved/internal/docker"
	"github.com/shinji-kodama/ved/internal/model"
)

const startupLog = "[I ServerApp] http://127.0.0.1:8888/lab?token=abc123\n"

func runningNotebook(name string, hostPort int, created time.Time) model.ContainerInfo {
	info := model.ContainerInfo{
		ContainerID:   "id-" + name,
		ContainerName: name,
		Status:        model.StatusRunning,
		Created:       created,
		Labels:        docker.BuildLabels("lab", docker.RoleJupyter, hostPort, created),
	}
	docker.ApplyLabels(&info)
	return info
}

func TestJupyterStartsContainer(t *testing.T) {
	ctx := context.Background()
	rt := newFakeRuntime()
	m := newTestManager(t, rt)
	m.Config.Environment.DockerOptions = `--gpus all -e "A=b c"`

	var slept time.Duration
	m.Config.Environment.PauseSeconds = 7
	m.Sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		rt.logs["lab-jupyter-00000001"] = startupLog
		return nil
	}

	nb, err := m.Jupyter(ctx)
	require.NoError(t, err)

	assert.True(t, nb.Started)
	assert.Equal(t, "lab-jupyter-00000001", nb.Container)
	assert.Equal(t, 8888, nb.HostPort)
	assert.Equal(t, "http://localhost:8888/lab?token=abc123", nb.URL)
	assert.Equal(t, 7*time.Second, slept)

	require.Len(t, rt.runs, 1)
	spec := rt.runs[0]
	assert.Equal(t, "lab:dev", spec.Image)
	assert.True(t, spec.Remove)
	assert.Equal(t, []string{"--gpus", "all", "-e", "A=b c"}, spec.ExtraArgs)
	assert.Equal(t, []docker.Mount{{Source: m.Config.WorkingDir, Target: "/home/jovyan/work"}}, spec.Mounts)
	assert.Equal(t, "lab", spec.Labels[docker.LabelNamespace])

	names, err := m.State.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lab-jupyter-00000001"}, names)
}

func TestJupyterReusesRunningContainer(t *testing.T) {
	rt := newFakeRuntime()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rt.add(runningNotebook("lab-jupyter-old", 8888, base))
	rt.add(runningNotebook("lab-jupyter-new", 8889, base.Add(time.Hour)))
	rt.logs["lab-jupyter-new"] = startupLog
	m := newTestManager(t, rt)

	nb, err := m.Jupyter(context.Background())
	require.NoError(t, err)

	assert.False(t, nb.Started)
	assert.Equal(t, "lab-jupyter-new", nb.Container)
	assert.Equal(t, "http://localhost:8889/lab?token=abc123", nb.URL)
	assert.Empty(t, rt.runs)
}

func TestJupyterSkipsPortsOfStoppedContainers(t *testing.T) {
	rt := newFakeRuntime()
	stopped := runningNotebook("lab-jupyter-old", 8888, time.Now())
	stopped.Status = model.StatusExited
	rt.add(stopped)
	m := newTestManager(t, rt)

	nb, err := m.Jupyter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8889, nb.HostPort)
}

func TestJupyterDryRun(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestManager(t, rt)
	m.DryRun = true

	nb, err := m.Jupyter(context.Background())
	require.NoError(t, err)

	assert.Empty(t, rt.runs)
	assert.Contains(t, nb.Command, "docker run -d --rm --name lab-jupyter-00000001")
	assert.Contains(t, nb.Command, "-p 8888:8888")
	assert.NoFileExists(t, m.State.Path())
}

func TestJupyterRejectsBadDockerOptions(t *testing.T) {
	m := newTestManager(t, newFakeRuntime())
	m.Config.Environment.DockerOptions = `-e "open`

	_, err := m.Jupyter(context.Background())
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitUsageError, cliErr.Code)
}

func TestAddressAndList(t *testing.T) {
	ctx := context.Background()
	rt := newFakeRuntime()
	rt.add(runningNotebook("lab-jupyter-a", 8890, time.Now()))
	rt.logs["lab-jupyter-a"] = startupLog
	m := newTestManager(t, rt)
	require.NoError(t, m.State.Append(ctx, "lab-jupyter-a"))
	require.NoError(t, m.State.Append(ctx, "lab-jupyter-gone"))

	nbs, err := m.Address(ctx)
	require.NoError(t, err)
	require.Len(t, nbs, 2)
	assert.Equal(t, "http://localhost:8890/lab?token=abc123", nbs[0].URL)
	assert.Equal(t, model.StatusMissing, nbs[1].Status)
	assert.Empty(t, nbs[1].URL)

	infos, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, model.StatusRunning, infos[0].Status)
	assert.Equal(t, model.StatusMissing, infos[1].Status)
}

func TestPS(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rt := newFakeRuntime()
	rt.add(runningNotebook("lab-jupyter-a", 8890, base.Add(time.Hour)))
	other := runningNotebook("alpha-jupyter-a", 8891, base.Add(2*time.Hour))
	other.Labels = docker.BuildLabels("alpha", docker.RoleJupyter, 8891, base)
	docker.ApplyLabels(&other)
	rt.add(other)
	rt.add(runningNotebook("lab-jupyter-b", 8892, base))
	m := newTestManager(t, rt)

	own, err := m.PS(ctx, false)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "lab-jupyter-b", own[0].ContainerName)

	all, err := m.PS(ctx, true)
	require.NoError(t, err)
	var names []string
	for _, c := range all {
		names = append(names, c.ContainerName)
	}
	assert.Equal(t, []string{"alpha-jupyter-a", "lab-jupyter-b", "lab-jupyter-a"}, names)
}

func TestMissingStateFileIsNoOp(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newFakeRuntime())

	nbs, err := m.Address(ctx)
	require.NoError(t, err)
	assert.Empty(t, nbs)

	infos, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	stopped, err := m.Stop(ctx)
	require.NoError(t, err)
	assert.Empty(t, stopped)
}

func TestStopRemovesStateFile(t *testing.T) {
	ctx := context.Background()
	rt := newFakeRuntime()
	rt.add(runningNotebook("lab-jupyter-a", 8888, time.Now()))
	m := newTestManager(t, rt)
	require.NoError(t, m.State.Append(ctx, "lab-jupyter-a"))
	require.NoError(t, m.State.Append(ctx, "lab-jupyter-gone"))

	stopped, err := m.Stop(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"lab-jupyter-a", "lab-jupyter-gone"}, stopped)
	assert.Equal(t, []string{"lab-jupyter-a"}, rt.stops)
	assert.NoFileExists(t, m.State.Path())
}

func TestStopDryRunKeepsEverything(t *testing.T) {
	ctx := context.Background()
	rt := newFakeRuntime()
	rt.add(runningNotebook("lab-jupyter-a", 8888, time.Now()))
	m := newTestManager(t, rt)
	m.DryRun = true
	require.NoError(t, m.State.Append(ctx, "lab-jupyter-a"))

	stopped, err := m.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lab-jupyter-a"}, stopped)
	assert.Empty(t, rt.stops)
	assert.FileExists(t, m.State.Path())
}

func TestRestart(t *testing.T) {
	ctx := context.Background()
	rt := newFakeRuntime()
	rt.add(runningNotebook("lab-jupyter-a", 8888, time.Now()))
	m := newTestManager(t, rt)
	require.NoError(t, m.State.Append(ctx, "lab-jupyter-a"))

	nb, err := m.Restart(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"lab-jupyter-a"}, rt.stops)
	assert.True(t, nb.Started)
	names, err := m.State.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{nb.Container}, names)
}

func TestRunTask(t *testing.T) {
	rt := newFakeRuntime()
	rt.add(runningNotebook("lab-jupyter-a", 8888, time.Now()))
	m := newTestManager(t, rt)

	executed, err := m.Run(context.Background(), "lint", []string{"--check"})
	require.NoError(t, err)

	require.Len(t, rt.execs, 4)
	assert.Equal(t, []string{"isort", "."}, rt.execs[0].Command)
	assert.Equal(t, []string{"mypy", ".", "--check"}, rt.execs[3].Command)
	assert.Equal(t, "lab-jupyter-a", rt.execs[0].Container)
	assert.Equal(t, "docker exec lab-jupyter-a isort .", executed[0])

	_, err = m.Run(context.Background(), "tests", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"pytest", "-m", "not slow"}, rt.execs[4].Command)
}

func TestRunTaskErrors(t *testing.T) {
	ctx := context.Background()
	var cliErr *model.CLIError

	m := newTestManager(t, newFakeRuntime())
	_, err := m.Run(ctx, "deploy", nil)
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitUsageError, cliErr.Code)
	assert.Contains(t, err.Error(), "lint")

	_, err = m.Run(ctx, "pytest", nil)
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitContainerNotFound, cliErr.Code)

	rt := newFakeRuntime()
	rt.add(runningNotebook("lab-jupyter-a", 8888, time.Now()))
	rt.execErr = errors.New("exit status 1")
	m = newTestManager(t, rt)
	executed, err := m.Run(ctx, "lint", nil)
	require.Error(t, err)
	assert.Len(t, executed, 1, "the task stops at the first failing command")
}

func TestClearNotebooksAndClean(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newFakeRuntime())
	nbDir := filepath.Join(m.Config.WorkingDir, "notebooks")
	require.NoError(t, os.MkdirAll(nbDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nbDir, "a.ipynb"), []byte(dirtyNotebook), 0o644))
	touch(t, m.Config.WorkingDir, "src/__pycache__/x.pyc")

	changed, err := m.ClearNotebooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(nbDir, "a.ipynb")}, changed)

	removed, err := m.Clean(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(m.Config.WorkingDir, "src", "__pycache__")}, removed)
	assert.NoDirExists(t, filepath.Join(m.Config.WorkingDir, "src", "__pycache__"))
}

func TestClearNotebooksMissingRoot(t *testing.T) {
	m := newTestManager(t, newFakeRuntime())
	changed, err := m.ClearNotebooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestBuild(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestManager(t, rt)

	targets, err := m.Build(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []BuildTarget{
		{Target: "runtime", Tag: "lab:latest"},
		{Target: "development", Tag: "lab:dev"},
	}, targets)
	require.Len(t, rt.builds, 2)
	assert.Equal(t, filepath.Join(m.Config.WorkingDir, "Dockerfile"), rt.builds[0].Dockerfile)

	_, err = m.Build(context.Background(), "staging")
	assert.Error(t, err)
}

func TestImageRepository(t *testing.T) {
	assert.Equal(t, "lab", imageRepository("lab:dev"))
	assert.Equal(t, "registry:5000/lab", imageRepository("registry:5000/lab:dev"))
	assert.Equal(t, "registry:5000/lab", imageRepository("registry:5000/lab"))
}

func TestContainerName(t *testing.T) {
	name := containerName("lab")
	assert.Regexp(t, `^lab-jupyter-[0-9a-f]{8}$`, name)
}
