// Package cli — convert.go implements the "ved convert" command.
//
// The convert command re-encodes videos into another container format.
// When a directory is given, videos that already have the target
// extension are skipped unless --all-extensions is set.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/video"
)

type convertFlags struct {
	convertDir    string
	allExtensions bool
	audioCodec    string
}

// NewConvertCommand creates the "convert" command.
func NewConvertCommand() *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [flags] EXTENSION VIDEO_PATH",
		Short: "Convert video file(s) from one format to another",
		Long: fmt.Sprintf(`Convert every video at VIDEO_PATH to the EXTENSION container format.
Known extensions: %s.

When VIDEO_PATH is a directory, videos that already have EXTENSION are
skipped unless --all-extensions is given.

Examples:
  ved convert webm talk.mp4
  ved convert -a libvorbis -d out ogv videos/`, strings.Join(video.Extensions(), ", ")),
		Args: helpWithoutArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runConvert(cmd.Context(), a, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&flags.convertDir, "convert-dir", "d", "converted", "Directory path to write converted files to")
	cmd.Flags().BoolVar(&flags.allExtensions, "all-extensions", false, "Include all video file extensions")
	cmd.Flags().StringVarP(&flags.audioCodec, "audio-codec", "a", "",
		"Audio encoding to use ("+strings.Join(video.AudioCodecs, ", ")+")")

	return cmd
}

// runConvert resolves the input videos and converts each one, printing
// the destination as it goes.
func runConvert(ctx context.Context, a *app, flags *convertFlags, extArg, target string) error {
	ext, err := choiceArg("EXTENSION", extArg, video.Extensions())
	if err != nil {
		return err
	}
	codec := ""
	if flags.audioCodec != "" {
		if codec, err = choiceArg("--audio-codec", flags.audioCodec, video.AudioCodecs); err != nil {
			return err
		}
	}

	var paths []string
	if isDir(target) && !flags.allExtensions {
		paths, err = video.FindVideosExcept(target, ext)
	} else {
		paths, err = video.Resolve(target)
	}
	if err != nil {
		return err
	}

	if !dryRun {
		if err := os.MkdirAll(flags.convertDir, 0o755); err != nil {
			return fmt.Errorf("create convert directory: %w", err)
		}
	}

	a.printf("Converted files will be written to: %s\n", flags.convertDir)
	ffmpeg := newTranscoder(a.cfg)
	for _, src := range paths {
		dst := filepath.Join(flags.convertDir, video.ConvertedName(src, ext))
		a.printf("Converting file %s to %s\n", src, dst)
		if dryRun {
			continue
		}
		if err := ffmpeg.Convert(ctx, src, dst, codec); err != nil {
			return err
		}
	}
	return nil
}
