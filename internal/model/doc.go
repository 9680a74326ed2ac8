// Package model defines the domain types and value objects for the ved CLI.
//
// This package contains pure data structures with no external dependencies:
// container records reconstructed from Docker labels, time stamps used by
// the video commands, probed video metadata and split-part plans.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
