// Package cli implements the cobra-based CLI commands for ved.
//
// Video commands (clip, list, split, copy, convert, random, rename,
// entropy) live in one file each. The scrape and env command groups keep
// their subcommands together in scrape.go and env*.go. This file defines
// the root command, its global flags and the exit code mapping.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/model"
)

// Global flag variables shared across all subcommands. They are bound to
// persistent flags on the root command.
var (
	// jsonOutput switches command output and log records to JSON.
	jsonOutput bool

	// dryRun makes commands report what they would do without touching
	// files, containers or the network.
	dryRun bool

	// debug lowers the log level to debug.
	debug bool

	// configPath overrides configuration file discovery.
	configPath string
)

// Version, Commit and Date are injected from the main package.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates the root command with every subcommand
// registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ved",
		Short: "Video dataset tooling and development container manager",
		Long: `ved prepares video datasets and manages the project's Jupyter
development container.

Video commands work on a single file or on every video below a directory.
Scrape commands collect media links and download them through yt-dlp.
The env commands start, inspect and stop the notebook container.`,

		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},

		// Errors are rendered by Execute, in text or JSON.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Simulate commands without changing anything")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "e", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a configuration file (toml, yaml or jsonc)")

	// Subcommands inherit this; flag parse failures are usage errors.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return model.UsageError("%v", err)
	})

	rootCmd.AddCommand(NewClipCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewSplitCommand())
	rootCmd.AddCommand(NewCopyCommand())
	rootCmd.AddCommand(NewConvertCommand())
	rootCmd.AddCommand(NewRandomCommand())
	rootCmd.AddCommand(NewRenameCommand())
	rootCmd.AddCommand(NewEntropyCommand())
	rootCmd.AddCommand(NewScrapeCommand())
	rootCmd.AddCommand(NewEnvCommand())
	rootCmd.AddCommand(NewDepsCommand())

	return rootCmd
}

// Execute runs the root command and exits with the code carried by the
// returned error.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(int(handleError(rootCmd.ErrOrStderr(), err)))
	}
}

// handleError prints err and returns the exit code for it. CLIError
// values carry their own code; anything else exits with 1.
func handleError(w io.Writer, err error) model.ExitCode {
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(w, cliErr.Message, cliErr.Err)
		return cliErr.Code
	}
	printError(w, err.Error(), nil)
	return model.ExitGeneralError
}

// printError writes an error message in text or JSON on w.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]any{"message": message}
		if underlying != nil {
			errObj["detail"] = underlying.Error()
		}
		data, _ := json.MarshalIndent(map[string]any{"error": errObj}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}
	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// usageArgs turns positional argument validation failures into usage
// errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return model.UsageError("%v", err)
		}
		return nil
	}
}

// helpWithoutArgs is usageArgs for commands that print their help when
// called without arguments. RunE must handle the empty case.
func helpWithoutArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	check := usageArgs(validate)
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return nil
		}
		return check(cmd, args)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
