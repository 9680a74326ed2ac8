// Package cli — rename.go implements the "ved rename" command.
//
// Videos are renamed in place, either to random hexadecimal names or to
// names stripped of characters that some platform rejects.
package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/fileutil"
	"github.com/shinji-kodama/ved/internal/logging"
	"github.com/shinji-kodama/ved/internal/model"
	"github.com/shinji-kodama/ved/internal/naming"
	"github.com/shinji-kodama/ved/internal/video"
)

type renameFlags struct {
	append    string
	separator string
	length    int
}

// NewRenameCommand creates the "rename" command.
func NewRenameCommand() *cobra.Command {
	flags := &renameFlags{}

	cmd := &cobra.Command{
		Use:   "rename [flags] VIDEO_PATH random|sanitize",
		Short: "Rename video file(s) using various patterns",
		Long: `Rename every video at VIDEO_PATH in place.

  random    replace the name with random hexadecimal characters, or add
            them before (--append prefix) or after (--append suffix) the
            current name
  sanitize  drop characters that are invalid in file names on Linux,
            macOS or Windows

Examples:
  ved -n rename videos/ random
  ved rename -a suffix -p - -l 8 clip.mp4 random`,
		Args: helpWithoutArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runRename(cmd.Context(), a, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&flags.append, "append", "a", "", "Append random name to existing name (prefix or suffix)")
	cmd.Flags().StringVarP(&flags.separator, "separator", "p", naming.DefaultSeparator, "Character used to separate new filename parts")
	cmd.Flags().IntVarP(&flags.length, "length", "l", naming.DefaultLength, "Number of characters desired in random filename")

	return cmd
}

// runRename computes the new name of every video and moves it there.
func runRename(ctx context.Context, a *app, flags *renameFlags, target, patternArg string) error {
	pattern, err := choiceArg("PATTERN", patternArg, []string{"random", "sanitize"})
	if err != nil {
		return err
	}
	mode, err := naming.ParseMode(flags.append)
	if err != nil {
		return model.UsageError("invalid value for --append: %v", err)
	}
	if flags.length <= 0 {
		return model.UsageError("invalid value for --length: %d must be > 0", flags.length)
	}

	paths, err := video.Resolve(target)
	if err != nil {
		return err
	}

	opts := naming.RandomOptions{Mode: mode, Separator: flags.separator, Length: flags.length}
	for _, src := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		var dst string
		if strings.EqualFold(pattern, "random") {
			if dst, err = naming.RandomName(src, opts); err != nil {
				return err
			}
		} else {
			dst = naming.SanitizedPath(src)
		}

		if dryRun {
			a.printf("Renaming: %s -> %s\n", src, dst)
			continue
		}
		if dst == src {
			continue
		}
		if err := fileutil.MoveFile(src, dst); err != nil {
			return err
		}
		a.logger.Debug("renamed", logging.FieldPath, src, "to", dst)
	}
	return nil
}
