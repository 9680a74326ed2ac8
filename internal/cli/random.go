// Package cli — random.go implements the "ved random" command.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/fileutil"
	"github.com/shinji-kodama/ved/internal/model"
	"github.com/shinji-kodama/ved/internal/video"
)

type randomFlags struct {
	seed      int64
	maxItems  int
	outputDir string
}

// NewRandomCommand creates the "random" command.
func NewRandomCommand() *cobra.Command {
	flags := &randomFlags{}

	cmd := &cobra.Command{
		Use:   "random [flags] VIDEO_PATH",
		Short: "Select video file(s) at random from video directory",
		Long: `Pick videos at random below VIDEO_PATH, print them and copy them to
the output directory.

Without --max-items a random number of videos (possibly none) is picked.
A --seed makes the selection reproducible.

Examples:
  ved random -k 10 -s 42 videos/`,
		Args: helpWithoutArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-items") {
				flags.maxItems = -1
			} else if flags.maxItems < 0 {
				return model.UsageError("invalid value for --max-items: %d must be >= 0", flags.maxItems)
			}
			if cmd.Flags().Changed("seed") && flags.seed <= 0 {
				return model.UsageError("invalid value for --seed: %d must be > 0", flags.seed)
			}
			return runRandom(cmd.Context(), a, flags, args[0])
		},
	}

	cmd.Flags().Int64VarP(&flags.seed, "seed", "s", 0, "Integer value used to seed the random number generator")
	cmd.Flags().IntVarP(&flags.maxItems, "max-items", "k", 0, "Maximum number of video paths to return")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "d", "random", "Directory path to copy randomly selected files to")

	return cmd
}

// runRandom samples videos and copies the picks into the output
// directory.
func runRandom(ctx context.Context, a *app, flags *randomFlags, target string) error {
	var picked []string
	if isDir(target) {
		paths, err := video.FindVideos(target)
		if err != nil {
			return err
		}
		picked = video.Sample(paths, video.SampleOptions{Seed: uint64(flags.seed), Max: flags.maxItems})
	} else {
		if err := videoFileArg(target); err != nil {
			return err
		}
		picked = []string{target}
	}

	for _, src := range picked {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.println(src)
		if dryRun {
			continue
		}
		if _, err := fileutil.CopyInto(src, flags.outputDir); err != nil {
			return err
		}
	}
	return nil
}
