// Package cli — deps.go implements the "ved deps" command.
//
// The deps command looks up the external programs ved drives and fails
// with exit code 5 when ffmpeg or ffprobe is missing.
package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/deps"
	"github.com/shinji-kodama/ved/internal/model"
)

// NewDepsCommand creates the "deps" command.
func NewDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that the external programs ved uses are installed",
		Long: `Look up ffmpeg, ffprobe, docker and yt-dlp on PATH (or at the
configured locations). The command fails when a required program is
missing; docker and yt-dlp are only needed by the env and scrape
commands.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runDeps(a)
		},
	}
}

// runDeps prints the availability table and returns an error when a
// required program is missing.
func runDeps(a *app) error {
	statuses := deps.CheckBinaries(deps.Requirements(a.cfg))

	if IsJSONOutput() {
		if err := a.printJSON(map[string]any{"dependencies": statuses}); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(statuses))
		for _, s := range statuses {
			state := "ok"
			if !s.Available {
				state = "missing"
				if s.Optional {
					state = "missing (optional)"
				}
			}
			location := s.Path
			if location == "" {
				location = s.Detail
			}
			rows = append(rows, []string{s.Name, state, location, s.Description})
		}
		a.println(renderTable([]string{"PROGRAM", "STATUS", "LOCATION", "USED BY"}, rows, nil))
	}

	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return model.NewCLIError(model.ExitMediaToolFailed,
			"required programs not found: "+strings.Join(missing, ", "))
	}
	return nil
}
