// Package cli — env.go implements the "ved env" command group.
//
// The env commands replace the Makefile that used to drive the Jupyter
// development container. This file holds the container lifecycle
// subcommands (jupyter, pause, address, ps, list, stop, restart); tasks,
// cleaning and image builds live in env_tasks.go.
package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/devenv"
	"github.com/shinji-kodama/ved/internal/model"
)

// NewEnvCommand creates the "env" command group that manages the
// project's development container.
func NewEnvCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage the Jupyter development container",
		Long: `Start, inspect and stop the project's Jupyter container and run
tooling inside it.

The namespace, notebook directory, start-up pause and extra docker
options default from the configuration and can be overridden with the
DCTNR, INTDR, PSECS and DCKROPT environment variables. Started containers
are recorded in the state file (.running_containers by default).`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newEnvJupyterCommand())
	cmd.AddCommand(newEnvPauseCommand())
	cmd.AddCommand(newEnvAddressCommand())
	cmd.AddCommand(newEnvPSCommand())
	cmd.AddCommand(newEnvListCommand())
	cmd.AddCommand(newEnvStopCommand())
	cmd.AddCommand(newEnvRestartCommand())
	cmd.AddCommand(newEnvRunCommand())
	cmd.AddCommand(newEnvClearNotebooksCommand())
	cmd.AddCommand(newEnvCleanCommand())
	cmd.AddCommand(newEnvBuildCommand())
	return cmd
}

// envSession couples the app with a devenv.Manager for one command.
type envSession struct {
	*app
	manager *devenv.Manager
	close   func()
}

// newEnvSession builds a Manager. Commands that only touch local files
// pass withDocker=false and get a Manager without a runtime.
func newEnvSession(cmd *cobra.Command, withDocker bool) (*envSession, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	var rt devenv.Runtime
	closeFn := func() {}
	if withDocker {
		r, c, err := newRuntime(cmd.Context())
		if err != nil {
			return nil, err
		}
		rt, closeFn = r, c
	}

	m := devenv.NewManager(a.cfg, rt, a.logger)
	m.DryRun = dryRun
	m.Stdin = cmd.InOrStdin()
	m.Stdout = cmd.OutOrStdout()
	m.Stderr = cmd.ErrOrStderr()
	m.Terminal = isTerminal(m.Stdin) && isTerminal(m.Stdout)
	return &envSession{app: a, manager: m, close: closeFn}, nil
}

// runEnv opens a session, runs fn and releases the session.
func runEnv(cmd *cobra.Command, withDocker bool, fn func(ctx context.Context, s *envSession) error) error {
	s, err := newEnvSession(cmd, withDocker)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(cmd.Context(), s)
}

func newEnvJupyterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "jupyter",
		Short: "Start the Jupyter container unless one is running",
		Long: `Start a Jupyter container for the project namespace, mounting the
project at the container work directory and publishing the first free
host port from the configured base. If a container is already running
its address is reported instead.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, true, func(ctx context.Context, s *envSession) error {
				nb, err := s.manager.Jupyter(ctx)
				if err != nil {
					return err
				}
				return s.printNotebooks([]devenv.Notebook{nb})
			})
		},
	}
}

func newEnvPauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Wait the configured start-up pause (PSECS)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, false, func(ctx context.Context, s *envSession) error {
				d := time.Duration(s.cfg.Environment.PauseSeconds) * time.Second
				s.logger.Debug("pausing", "duration", d.String())
				if dryRun {
					return nil
				}
				return s.manager.Sleep(ctx, d)
			})
		},
	}
}

func newEnvAddressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the notebook URL of each recorded container",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, true, func(ctx context.Context, s *envSession) error {
				nbs, err := s.manager.Address(ctx)
				if err != nil {
					return err
				}
				return s.printNotebooks(nbs)
			})
		},
	}
}

// printNotebooks prints each notebook's URL, or a diagnostic when the
// URL could not be found.
func (s *envSession) printNotebooks(nbs []devenv.Notebook) error {
	if IsJSONOutput() {
		return s.printJSON(map[string]any{"notebooks": nonNil(nbs)})
	}
	for _, nb := range nbs {
		switch {
		case nb.Command != "":
			s.println(nb.Command)
		case nb.URL != "":
			s.printf("%s: %s\n", nb.Container, nb.URL)
		case nb.Status != model.StatusRunning && !nb.Started:
			s.printf("%s: container is %s\n", nb.Container, nb.Status)
		default:
			s.printf("%s: notebook address not found, try `docker logs %s`\n", nb.Container, nb.Container)
		}
	}
	return nil
}

type envPSFlags struct {
	all bool
}

func newEnvPSCommand() *cobra.Command {
	flags := &envPSFlags{}
	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List ved containers known to Docker",
		Long: `List the containers ved started, running or not, by querying Docker
for the ved.* labels. Only the project namespace is shown unless --all
is given.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, true, func(ctx context.Context, s *envSession) error {
				containers, err := s.manager.PS(ctx, flags.all)
				if err != nil {
					return err
				}
				return s.printContainers(containers)
			})
		},
	}
	cmd.Flags().BoolVarP(&flags.all, "all", "a", false, "Include every namespace")
	return cmd
}

func newEnvListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the containers recorded in the state file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, true, func(ctx context.Context, s *envSession) error {
				containers, err := s.manager.List(ctx)
				if err != nil {
					return err
				}
				return s.printContainers(containers)
			})
		},
	}
}

// printContainers renders containers as a table, or JSON.
func (s *envSession) printContainers(containers []model.ContainerInfo) error {
	if IsJSONOutput() {
		return s.printJSON(map[string]any{"containers": nonNil(containers)})
	}
	if len(containers) == 0 {
		s.println("No containers found.")
		return nil
	}
	rows := make([][]string, 0, len(containers))
	for _, c := range containers {
		rows = append(rows, containerRow(c, time.Now()))
	}
	s.println(renderTable(
		[]string{"NAME", "NAMESPACE", "STATUS", "PORT", "IMAGE", "CREATED", "ID"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func containerRow(c model.ContainerInfo, now time.Time) []string {
	hostPort := "-"
	if c.HostPort > 0 {
		hostPort = strconv.Itoa(c.HostPort)
	}
	created := "-"
	if !c.Created.IsZero() {
		created = humanize.RelTime(c.Created, now, "ago", "from now")
	}
	return []string{c.ContainerName, orDash(c.Namespace), c.Status.String(), hostPort, orDash(c.Image), created, orDash(c.ShortID())}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newEnvStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the recorded containers and delete the state file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, true, func(ctx context.Context, s *envSession) error {
				names, err := s.manager.Stop(ctx)
				if err != nil {
					return err
				}
				return s.printStopped(names)
			})
		},
	}
}

func (s *envSession) printStopped(names []string) error {
	if IsJSONOutput() {
		return s.printJSON(map[string]any{"stopped": nonNil(names), "dryRun": dryRun})
	}
	verb := "Stopped"
	if dryRun {
		verb = "Would stop"
	}
	for _, name := range names {
		s.printf("%s %s\n", verb, name)
	}
	return nil
}

func newEnvRestartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Stop the recorded containers and start a new one",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, true, func(ctx context.Context, s *envSession) error {
				nb, err := s.manager.Restart(ctx)
				if err != nil {
					return err
				}
				return s.printNotebooks([]devenv.Notebook{nb})
			})
		},
	}
}
