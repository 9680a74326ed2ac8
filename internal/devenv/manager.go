package devenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"

	"github.com/shinji-kodama/ved/internal/config"
	"github.com/shinji-kodama/ved/internal/docker"
	"github.com/shinji-kodama/ved/internal/logging"
	"github.com/shinji-kodama/ved/internal/model"
	"github.com/shinji-kodama/ved/internal/port"
)

// Notebook describes a notebook server container and where to reach it.
type Notebook struct {
	Container string                `json:"container"`
	HostPort  int                   `json:"hostPort,omitempty"`
	URL       string                `json:"url,omitempty"`
	Status    model.ContainerStatus `json:"status"`
	// Started is true when this invocation launched the container.
	Started bool `json:"started"`
	// Command is the docker invocation, filled in dry-run mode.
	Command string `json:"command,omitempty"`
}

// Manager implements the development-environment commands.
type Manager struct {
	Config  *config.Config
	Runtime Runtime
	State   *StateFile
	Ports   port.Checker
	Logger  *slog.Logger

	// DryRun reports what would be done without changing anything.
	DryRun bool
	// Terminal allocates a TTY for `docker exec` when stdin is a terminal.
	Terminal bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Sleep   func(ctx context.Context, d time.Duration) error
	NewName func(namespace string) string
	Now     func() time.Time
}

// NewManager returns a Manager wired to the real clock, port scanner and
// process streams.
func NewManager(cfg *config.Config, rt Runtime, logger *slog.Logger) *Manager {
	return &Manager{
		Config:  cfg,
		Runtime: rt,
		State:   NewStateFile(cfg.StatePath()),
		Ports:   port.NewScanner(),
		Logger:  logging.WithComponent(logger, "devenv"),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Sleep:   sleepContext,
		NewName: containerName,
		Now:     time.Now,
	}
}

// containerName returns "<namespace>-jupyter-<8 hex chars>".
func containerName(namespace string) string {
	return namespace + "-" + docker.RoleJupyter + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// runningNotebooks returns the running notebook containers of the
// project namespace, newest last.
func (m *Manager) runningNotebooks(ctx context.Context) ([]model.ContainerInfo, []model.ContainerInfo, error) {
	all, err := m.Runtime.List(ctx, m.Config.Environment.Namespace)
	if err != nil {
		return nil, nil, err
	}
	var running []model.ContainerInfo
	for _, c := range docker.RunningContainers(all) {
		if c.Labels[docker.LabelRole] == docker.RoleJupyter {
			running = append(running, c)
		}
	}
	return all, running, nil
}

// Jupyter starts a notebook server for the project unless one is
// already running, and reports its address.
func (m *Manager) Jupyter(ctx context.Context) (Notebook, error) {
	env := m.Config.Environment
	all, running, err := m.runningNotebooks(ctx)
	if err != nil {
		return Notebook{}, err
	}
	if len(running) > 0 {
		current := running[len(running)-1]
		m.Logger.Info("notebook server already running", logging.FieldContainer, current.ContainerName)
		nb := Notebook{Container: current.ContainerName, HostPort: current.HostPort, Status: current.Status}
		nb.URL = m.lookupURL(ctx, current.ContainerName, current.HostPort)
		return nb, nil
	}

	allocator := port.NewAllocator(m.Ports)
	allocator.ReserveContainers(all)
	hostPort, err := allocator.Allocate(env.HostPortBase)
	if err != nil {
		return Notebook{}, err
	}

	extra, err := docker.SplitOptions(env.DockerOptions)
	if err != nil {
		return Notebook{}, err
	}

	name := m.NewName(env.Namespace)
	spec := docker.RunSpec{
		Name:          name,
		Image:         env.Image,
		Labels:        docker.BuildLabels(env.Namespace, docker.RoleJupyter, hostPort, m.Now()),
		HostPort:      hostPort,
		ContainerPort: env.ContainerPort,
		Mounts:        []docker.Mount{{Source: m.Config.WorkingDir, Target: env.WorkDir}},
		WorkDir:       env.WorkDir,
		Remove:        true,
		ExtraArgs:     extra,
	}
	nb := Notebook{Container: name, HostPort: hostPort, Started: true}

	if m.DryRun {
		nb.Command = shellquote.Join(append([]string{docker.DefaultBinary}, docker.RunArgs(spec)...)...)
		return nb, nil
	}

	id, err := m.Runtime.Run(ctx, spec)
	if err != nil {
		return Notebook{}, err
	}
	if err := m.State.Append(ctx, name); err != nil {
		return Notebook{}, err
	}
	nb.Status = model.StatusRunning
	m.Logger.Info("notebook server started",
		logging.FieldContainer, name,
		"id", id,
		"host_port", hostPort,
	)

	if err := m.Sleep(ctx, time.Duration(env.PauseSeconds)*time.Second); err != nil {
		return nb, err
	}
	nb.URL = m.lookupURL(ctx, name, hostPort)
	return nb, nil
}

// lookupURL scrapes the container log for the server URL. Failures are
// logged and yield an empty string so callers can print a diagnostic.
func (m *Manager) lookupURL(ctx context.Context, name string, hostPort int) string {
	logs, err := m.Runtime.Logs(ctx, name)
	if err != nil {
		m.Logger.Warn("read container log failed", logging.FieldContainer, name, "error", err)
		return ""
	}
	u, ok := JupyterURL(logs, hostPort)
	if !ok {
		m.Logger.Debug("no notebook URL in container log", logging.FieldContainer, name)
		return ""
	}
	return u
}

// readState returns the recorded names. found is false, with a warning
// logged, when there is no state file.
func (m *Manager) readState(ctx context.Context) (names []string, found bool, err error) {
	names, err = m.State.Read(ctx)
	if errors.Is(err, ErrNoState) {
		m.Logger.Warn("no running containers recorded", logging.FieldPath, m.State.Path())
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return names, true, nil
}

// Address reports the notebook URL of every recorded container.
func (m *Manager) Address(ctx context.Context) ([]Notebook, error) {
	names, _, err := m.readState(ctx)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	out := make([]Notebook, 0, len(names))
	for _, name := range names {
		info, err := m.Runtime.Inspect(ctx, name)
		if err != nil && !errors.Is(err, docker.ErrContainerNotFound) {
			return nil, err
		}
		nb := Notebook{Container: name, HostPort: info.HostPort, Status: info.Status}
		if nb.Status == "" {
			nb.Status = model.StatusMissing
		}
		if nb.Status == model.StatusRunning {
			nb.URL = m.lookupURL(ctx, name, info.HostPort)
		}
		out = append(out, nb)
	}
	return out, nil
}

// List reports the recorded containers with their current state.
func (m *Manager) List(ctx context.Context) ([]model.ContainerInfo, error) {
	names, _, err := m.readState(ctx)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	out := make([]model.ContainerInfo, 0, len(names))
	for _, name := range names {
		info, err := m.Runtime.Inspect(ctx, name)
		if err != nil {
			if !errors.Is(err, docker.ErrContainerNotFound) {
				return nil, err
			}
			info = model.ContainerInfo{ContainerName: name, Status: model.StatusMissing}
		}
		out = append(out, info)
	}
	return out, nil
}

// PS lists ved containers known to the daemon. With all set every
// namespace is included, grouped by namespace in name order.
func (m *Manager) PS(ctx context.Context, all bool) ([]model.ContainerInfo, error) {
	if !all {
		return m.Runtime.List(ctx, m.Config.Environment.Namespace)
	}
	containers, err := m.Runtime.List(ctx, "")
	if err != nil {
		return nil, err
	}
	groups := docker.GroupContainersByNamespace(containers)
	namespaces := make([]string, 0, len(groups))
	for ns := range groups {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	out := make([]model.ContainerInfo, 0, len(containers))
	for _, ns := range namespaces {
		out = append(out, groups[ns]...)
	}
	return out, nil
}

// Stop stops every recorded container and deletes the state file. It
// returns the names that were recorded.
func (m *Manager) Stop(ctx context.Context) ([]string, error) {
	names, found, err := m.readState(ctx)
	if err != nil || !found {
		return nil, err
	}
	if m.DryRun {
		return names, nil
	}
	for _, name := range names {
		if err := m.Runtime.Stop(ctx, name); err != nil {
			if errors.Is(err, docker.ErrContainerNotFound) {
				m.Logger.Warn("container already gone", logging.FieldContainer, name)
				continue
			}
			return nil, err
		}
		m.Logger.Info("container stopped", logging.FieldContainer, name)
	}
	if err := m.State.Remove(ctx); err != nil && !errors.Is(err, ErrNoState) {
		return nil, err
	}
	return names, nil
}

// Restart stops the recorded containers and starts a fresh one.
func (m *Manager) Restart(ctx context.Context) (Notebook, error) {
	if _, err := m.Stop(ctx); err != nil {
		return Notebook{}, err
	}
	return m.Jupyter(ctx)
}

// TaskNames returns the configured task names, sorted.
func (m *Manager) TaskNames() []string {
	names := make([]string, 0, len(m.Config.Tasks))
	for name := range m.Config.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes every command of task inside the newest running notebook
// container. Extra arguments are appended to the last command.
func (m *Manager) Run(ctx context.Context, task string, extra []string) ([]string, error) {
	commands, ok := m.Config.Tasks[task]
	if !ok {
		return nil, model.UsageError("unknown task %q (available: %s)", task, strings.Join(m.TaskNames(), ", "))
	}

	argvs := make([][]string, 0, len(commands))
	for i, command := range commands {
		argv, err := shellquote.Split(command)
		if err != nil {
			return nil, model.UsageError("task %s: cannot parse %q: %v", task, command, err)
		}
		if i == len(commands)-1 {
			argv = append(argv, extra...)
		}
		argvs = append(argvs, argv)
	}

	_, running, err := m.runningNotebooks(ctx)
	if err != nil {
		return nil, err
	}
	if len(running) == 0 {
		return nil, model.NewCLIError(model.ExitContainerNotFound,
			"no running development container, start one with `ved env jupyter`")
	}
	target := running[len(running)-1].ContainerName

	var executed []string
	for _, argv := range argvs {
		opts := docker.ExecOptions{
			Container:   target,
			Command:     argv,
			Interactive: m.Terminal,
			TTY:         m.Terminal,
			Stdin:       m.Stdin,
			Stdout:      m.Stdout,
			Stderr:      m.Stderr,
		}
		line := shellquote.Join(append([]string{docker.DefaultBinary}, docker.ExecArgs(opts)...)...)
		executed = append(executed, line)
		if m.DryRun {
			continue
		}
		m.Logger.Debug("exec", logging.FieldContainer, target, "command", line)
		if err := m.Runtime.Exec(ctx, opts); err != nil {
			return executed, err
		}
	}
	return executed, nil
}

// ClearNotebooks clears outputs of every notebook below the notebook
// root and returns the files that changed.
func (m *Manager) ClearNotebooks(ctx context.Context) ([]string, error) {
	root := m.Config.NotebookPath()
	ok, err := walkable(root)
	if err != nil {
		return nil, err
	}
	if !ok {
		m.Logger.Warn("notebook directory not found", logging.FieldPath, root)
		return nil, nil
	}
	paths, err := FindNotebooks(root)
	if err != nil {
		return nil, err
	}
	var changed []string
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		did, err := ClearNotebook(p, !m.DryRun)
		if err != nil {
			return changed, err
		}
		if did {
			changed = append(changed, p)
		}
	}
	return changed, nil
}

// Clean removes build artefacts matching the configured patterns.
func (m *Manager) Clean(ctx context.Context) ([]string, error) {
	targets, err := CleanTargets(m.Config.WorkingDir, m.Config.Environment.CleanPatterns)
	if err != nil {
		return nil, err
	}
	if m.DryRun {
		return targets, nil
	}
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := os.RemoveAll(t); err != nil {
			return nil, fmt.Errorf("remove %s: %w", t, err)
		}
		m.Logger.Debug("removed", logging.FieldPath, t)
	}
	return targets, nil
}

// BuildTarget pairs a Dockerfile stage with the tag it is built as.
type BuildTarget struct {
	Target string `json:"target"`
	Tag    string `json:"tag"`
}

// BuildTargets returns the runtime and development image variants. The
// development variant is tagged with the configured image; the runtime
// variant uses the same repository with the "latest" tag.
func (m *Manager) BuildTargets() []BuildTarget {
	env := m.Config.Environment
	return []BuildTarget{
		{Target: env.RuntimeTarget, Tag: imageRepository(env.Image) + ":latest"},
		{Target: env.DevTarget, Tag: env.Image},
	}
}

// Build builds the selected variants, or all of them when only is empty.
func (m *Manager) Build(ctx context.Context, only string) ([]BuildTarget, error) {
	targets := m.BuildTargets()
	if only != "" {
		var picked []BuildTarget
		for _, t := range targets {
			if t.Target == only {
				picked = append(picked, t)
			}
		}
		if len(picked) == 0 {
			return nil, model.UsageError("unknown build target %q", only)
		}
		targets = picked
	}
	if m.DryRun {
		return targets, nil
	}
	env := m.Config.Environment
	for _, t := range targets {
		m.Logger.Info("building image", "target", t.Target, "tag", t.Tag)
		err := m.Runtime.Build(ctx, docker.BuildOptions{
			ContextDir: m.Config.ResolvePath(env.BuildContext),
			Dockerfile: m.Config.ResolvePath(env.Dockerfile),
			Target:     t.Target,
			Tag:        t.Tag,
			Stdout:     m.Stderr,
			Stderr:     m.Stderr,
		})
		if err != nil {
			return nil, err
		}
	}
	return targets, nil
}

// imageRepository strips the tag from an image reference, leaving
// registry ports such as "host:5000/name" intact.
func imageRepository(ref string) string {
	slash := strings.LastIndex(ref, "/")
	if colon := strings.LastIndex(ref, ":"); colon > slash {
		return ref[:colon]
	}
	return ref
}
