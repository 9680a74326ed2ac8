// Package cli — split.go implements the "ved split" command.
//
// The split command cuts each video into parts of at most LENGTH. The
// part boundaries are planned by video.PlanSplit; with --dry-run they are
// printed instead of written.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/logging"
	"github.com/shinji-kodama/ved/internal/model"
	"github.com/shinji-kodama/ved/internal/video"
)

type splitFlags struct {
	suffix   string
	splitDir string
}

// NewSplitCommand creates the "split" command.
func NewSplitCommand() *cobra.Command {
	flags := &splitFlags{}

	cmd := &cobra.Command{
		Use:   "split [flags] LENGTH VIDEO_PATH",
		Short: "Split video file(s) into parts of maximum length",
		Long: `Split every video at VIDEO_PATH into parts of at most LENGTH
(HOUR:MINUTE:SECOND). Parts are named <stem>_<suffix><n>_of_<total><ext>.

A remainder shorter than one second is folded away; a longer remainder
becomes a final part that runs to the end of the file.

With --dry-run the planned parts are listed as START STOP PATH.

Examples:
  ved split 0:5:0 lecture.mp4
  ved -n split -s _chunk_ 0:0:30 videos/`,
		Args: helpWithoutArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runSplit(cmd.Context(), a, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&flags.suffix, "suffix", "s", video.DefaultSplitSuffix, "Set suffix for parts")
	cmd.Flags().StringVarP(&flags.splitDir, "split-dir", "d", "split", "Directory path to write split files to")

	return cmd
}

// runSplit plans the parts of each video and writes them with ffmpeg.
func runSplit(ctx context.Context, a *app, flags *splitFlags, lengthArg, target string) error {
	length, err := parseTimestampArg("LENGTH", lengthArg)
	if err != nil {
		return err
	}
	if length.Seconds() <= 0 {
		return model.UsageError("LENGTH must be greater than zero")
	}
	paths, err := video.Resolve(target)
	if err != nil {
		return err
	}

	if !dryRun {
		if err := os.MkdirAll(flags.splitDir, 0o755); err != nil {
			return fmt.Errorf("create split directory: %w", err)
		}
	}

	prober := newProber(a.cfg)
	ffmpeg := newTranscoder(a.cfg)
	for i, src := range paths {
		a.printf("Splitting file #%d/%d\n", i+1, len(paths))

		info, err := prober.Probe(ctx, src)
		if err != nil {
			return err
		}
		parts, err := video.PlanSplit(src, info.Duration, length.Seconds(), flags.suffix)
		if err != nil {
			return err
		}
		if len(parts) == 0 {
			a.logger.Warn("video has no duration, skipped", logging.FieldPath, src)
		}

		for _, part := range parts {
			dst := filepath.Join(flags.splitDir, part.Name)
			if dryRun {
				a.printf("%10s %10s %s\n", part.Start, part.StopString(), dst)
				continue
			}
			a.logger.Debug("writing part", logging.FieldPath, dst, "start", part.Start, "stop", part.StopString())
			if err := ffmpeg.Clip(ctx, src, dst, part.Start, part.Stop); err != nil {
				return err
			}
		}

		a.println()
	}
	return nil
}
