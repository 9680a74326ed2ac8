// Package cli — list.go implements the "ved list" command.
//
// The list command prints every video below a path. With --long each
// video is probed with ffprobe, concurrently, and its duration and frame
// rate are printed in fixed-width columns.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/model"
	"github.com/shinji-kodama/ved/internal/video"
)

type listFlags struct {
	long bool
}

// NewListCommand creates the "list" command.
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list [flags] VIDEO_PATH",
		Short: "Show video file(s) in selected path along with optional information",
		Long: `Print every video found at VIDEO_PATH. A directory is searched
recursively.

With --long each line is prefixed with the duration in seconds and the
frame rate.

Examples:
  ved list videos/
  ved list -l videos/holiday.mp4`,
		Args: helpWithoutArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runList(cmd.Context(), a, flags, args[0])
		},
	}

	cmd.Flags().BoolVarP(&flags.long, "long", "l", false, "Print additional video file information")

	return cmd
}

// runList prints the videos at target, probing them when --long is set.
func runList(ctx context.Context, a *app, flags *listFlags, target string) error {
	paths, err := video.Resolve(target)
	if err != nil {
		return err
	}

	if !flags.long {
		if IsJSONOutput() {
			return a.printJSON(map[string]any{"videos": nonNil(paths)})
		}
		for _, p := range paths {
			a.println(p)
		}
		return nil
	}

	infos, err := video.ProbeAll(ctx, newProber(a.cfg), paths, a.cfg.Video.ProbeConcurrency)
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		return a.printJSON(map[string]any{"videos": nonNil(infos)})
	}
	for _, info := range infos {
		a.printf("%s %s\n", formatVideoInfo(info), info.Path)
	}
	return nil
}

// formatVideoInfo renders duration and frame rate in fixed-width columns.
func formatVideoInfo(info model.VideoInfo) string {
	return fmt.Sprintf("%10.2fs %6.2ffps", info.Duration, info.FPS)
}

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
