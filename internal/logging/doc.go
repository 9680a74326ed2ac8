// Package logging builds the slog loggers used across ved.
//
// Diagnostic output always goes to stderr so that command results written
// to stdout stay machine readable. Two formats are supported: "console"
// (slog text handler) and "json". The --debug flag lowers the level to
// debug and adds source locations.
package logging
