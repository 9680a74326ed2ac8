// Package cli — entropy.go implements the "ved entropy" command.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/video"
)

// NewEntropyCommand creates the "entropy" command.
func NewEntropyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entropy VIDEO_PATH",
		Short: "Average frame entropy of video file(s)",
		Long: `Decode every frame of each video at VIDEO_PATH and print the mean
Shannon entropy, in bits, of the frames' combined RGB histograms.
Static or blank footage scores low.

Examples:
  ved entropy videos/`,
		Args: helpWithoutArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runEntropy(cmd.Context(), a, args[0])
		},
	}
	return cmd
}

type entropyResult struct {
	Path    string  `json:"path"`
	Entropy float64 `json:"entropy"`
}

// runEntropy probes each video for its frame size and prints the mean
// frame entropy.
func runEntropy(ctx context.Context, a *app, target string) error {
	paths, err := video.Resolve(target)
	if err != nil {
		return err
	}
	prober := newProber(a.cfg)
	ffmpeg := newTranscoder(a.cfg)

	results := make([]entropyResult, 0, len(paths))
	for _, src := range paths {
		info, err := prober.Probe(ctx, src)
		if err != nil {
			return err
		}
		h, err := ffmpeg.Entropy(ctx, info)
		if err != nil {
			return err
		}
		if IsJSONOutput() {
			results = append(results, entropyResult{Path: src, Entropy: h})
			continue
		}
		a.printf("%8.4f %s\n", h, src)
	}
	if IsJSONOutput() {
		return a.printJSON(map[string]any{"videos": results})
	}
	return nil
}
