// Package cli — clip.go implements the "ved clip" command.
//
// The clip command copies the part of a video between two time stamps
// into the clip directory through ffmpeg.
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

type clipFlags struct {
	clipDir string
}

// NewClipCommand creates the "clip" command.
func NewClipCommand() *cobra.Command {
	flags := &clipFlags{}

	cmd := &cobra.Command{
		Use:   "clip [flags] START STOP VIDEO_FILE",
		Short: "Extract clip from video file using start/stop time points",
		Long: `Extract the part of VIDEO_FILE between START and STOP into the clip
directory. Time points use the HOUR:MINUTE:SECOND format, SECOND may be
fractional.

The clip is named <stem>_clip_<START>_<STOP><ext> with colons removed.

Examples:
  ved clip 0:0:10 0:1:30.5 talk.mp4
  ved clip -d out 1:0:0 1:5:0 lecture.webm`,
		Args: helpWithoutArgs(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runClip(cmd.Context(), a, flags, args[0], args[1], args[2])
		},
	}

	cmd.Flags().StringVarP(&flags.clipDir, "clip-dir", "d", "clip", "Directory path to write video clip to")

	return cmd
}

// runClip validates the time stamps and the input file, then writes one
// clip. In dry-run mode only the clip path is printed.
func runClip(ctx context.Context, a *app, flags *clipFlags, startArg, stopArg, src string) error {
	start, err := parseTimestampArg("START", startArg)
	if err != nil {
		return err
	}
	stop, err := parseTimestampArg("STOP", stopArg)
	if err != nil {
		return err
	}
	if stop.Seconds() <= start.Seconds() {
		return model.UsageError("STOP (%s) must be after START (%s)", stop, start)
	}
	if err := videoFileArg(src); err != nil {
		return err
	}

	dst := filepath.Join(flags.clipDir, video.ClipName(src, start, stop))
	if dryRun {
		a.println(dst)
		return nil
	}

	if err := os.MkdirAll(flags.clipDir, 0o755); err != nil {
		return fmt.Errorf("create clip directory: %w", err)
	}
	end := video.FormatSeconds(stop.Seconds())
	a.logger.Debug("clipping", logging.FieldPath, src, "start", start.String(), "stop", stop.String())
	return newTranscoder(a.cfg).Clip(ctx, src, dst, video.FormatSeconds(start.Seconds()), &end)
}
