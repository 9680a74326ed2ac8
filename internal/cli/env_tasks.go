// Package cli — env_tasks.go implements the "ved env" subcommands that
// do not manage the container lifecycle: run, clear-nb, clean and build.
package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

func newEnvRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run TASK [-- ARGS...]",
		Short: "Run a configured task inside the running container",
		Long: `Run every command of TASK with docker exec in the newest running
notebook container. Arguments after -- are appended to the task's last
command. Without TASK the configured tasks are listed.

Default tasks: tests, pytest, isort, black, flake8, mypy, shell and lint
(isort, black, flake8 and mypy in sequence).

Examples:
  ved env run lint
  ved env run pytest -- -k parser -x`,
		Args: usageArgs(cobra.ArbitraryArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runEnv(cmd, false, func(_ context.Context, s *envSession) error {
					return s.printTasks()
				})
			}
			return runEnv(cmd, true, func(ctx context.Context, s *envSession) error {
				executed, err := s.manager.Run(ctx, args[0], args[1:])
				if dryRun {
					for _, line := range executed {
						s.println(line)
					}
				}
				return err
			})
		},
	}
}

func (s *envSession) printTasks() error {
	names := s.manager.TaskNames()
	if IsJSONOutput() {
		return s.printJSON(map[string]any{"tasks": s.cfg.Tasks})
	}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strings.Join(s.cfg.Tasks[name], " && ")})
	}
	s.println(renderTable([]string{"TASK", "COMMANDS"}, rows, nil))
	return nil
}

func newEnvClearNotebooksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-nb",
		Short: "Clear outputs of every notebook below the notebook directory",
		Long: `Remove code-cell outputs and execution counts from every .ipynb file
below the notebook directory (INTDR). Checkpoint directories are skipped
and files that are already clean are left untouched.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, false, func(ctx context.Context, s *envSession) error {
				changed, err := s.manager.ClearNotebooks(ctx)
				if err != nil {
					return err
				}
				return s.printPaths("cleared", "Cleared", "Would clear", changed)
			})
		},
	}
}

func newEnvCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove build artefacts matching the configured patterns",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, false, func(ctx context.Context, s *envSession) error {
				removed, err := s.manager.Clean(ctx)
				if err != nil {
					return err
				}
				return s.printPaths("removed", "Removed", "Would remove", removed)
			})
		},
	}
}

// printPaths reports the files a command touched.
func (s *envSession) printPaths(key, verb, dryVerb string, paths []string) error {
	if IsJSONOutput() {
		return s.printJSON(map[string]any{key: nonNil(paths), "dryRun": dryRun})
	}
	if dryRun {
		verb = dryVerb
	}
	for _, p := range paths {
		s.printf("%s %s\n", verb, p)
	}
	return nil
}

type envBuildFlags struct {
	target string
}

func newEnvBuildCommand() *cobra.Command {
	flags := &envBuildFlags{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the runtime and development image variants",
		Long: `Build the runtime stage as <image repository>:latest and the
development stage as the configured image. --target limits the build to
one stage.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, true, func(ctx context.Context, s *envSession) error {
				targets, err := s.manager.Build(ctx, flags.target)
				if err != nil {
					return err
				}
				if IsJSONOutput() {
					return s.printJSON(map[string]any{"images": targets, "dryRun": dryRun})
				}
				verb := "Built"
				if dryRun {
					verb = "Would build"
				}
				for _, t := range targets {
					s.printf("%s %s (target %s)\n", verb, t.Tag, t.Target)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&flags.target, "target", "", "Build only this Dockerfile stage")
	return cmd
}
