// Package cli — copy.go implements the "ved copy" command.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/fileutil"
	"github.com/shinji-kodama/ved/internal/video"
)

// NewCopyCommand creates the "copy" command.
func NewCopyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy VIDEO_PATH OUTPUT_PATH",
		Short: "Copy video file(s) from one directory to another",
		Long: `Copy every video at VIDEO_PATH into the OUTPUT_PATH directory, which
is created when missing. Files keep their base name, so videos with the
same name in different sub-directories overwrite each other.

Examples:
  ved copy raw/ dataset/`,
		Args: helpWithoutArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runCopy(cmd.Context(), a, args[0], args[1])
		},
	}
	return cmd
}

// runCopy copies every video at target into outDir.
func runCopy(ctx context.Context, a *app, target, outDir string) error {
	paths, err := video.Resolve(target)
	if err != nil {
		return err
	}
	for _, src := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.printf("Copying file: %s -> %s\n", src, outDir)
		if dryRun {
			continue
		}
		if _, err := fileutil.CopyInto(src, outDir); err != nil {
			return err
		}
	}
	return nil
}
