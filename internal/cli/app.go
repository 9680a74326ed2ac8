// Package cli — app.go holds the per-command state shared by every
// subcommand: the loaded configuration, the slog logger and the output
// writers.
//
// The constructors for ffmpeg, ffprobe, yt-dlp and the Docker runtime are
// package variables so tests can replace them with in-memory fakes.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/config"
	"github.com/shinji-kodama/ved/internal/devenv"
	"github.com/shinji-kodama/ved/internal/docker"
	"github.com/shinji-kodama/ved/internal/logging"
	"github.com/shinji-kodama/ved/internal/model"
	"github.com/shinji-kodama/ved/internal/scrape"
	"github.com/shinji-kodama/ved/internal/video"
)

// transcoder is the ffmpeg surface the video commands use.
type transcoder interface {
	Clip(ctx context.Context, src, dst, start string, stop *string) error
	Convert(ctx context.Context, src, dst, audioCodec string) error
	Entropy(ctx context.Context, info model.VideoInfo) (float64, error)
}

// Constructors for external tools. Tests replace them with fakes.
var (
	newTranscoder = func(cfg *config.Config) transcoder {
		return video.FFmpeg{Binary: cfg.Video.FFmpegBinary}
	}
	newProber = func(cfg *config.Config) video.Prober {
		return video.FFprobe{Binary: cfg.Video.FFprobeBinary}
	}
	newDownloader = func(cfg *config.Config) scrape.Downloader {
		return scrape.YtDlp{
			Binary:           cfg.Scrape.YtDlpBinary,
			SleepInterval:    cfg.Scrape.SleepInterval,
			MaxSleepInterval: cfg.Scrape.MaxSleepInterval,
		}
	}
	newRuntime = func(ctx context.Context) (devenv.Runtime, func(), error) {
		engine, err := docker.NewEngine(ctx)
		if err != nil {
			return nil, nil, err
		}
		return engine, func() { _ = engine.Close() }, nil
	}
)

// app carries what every command needs after flag parsing.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

// newApp loads the configuration and builds the logger for cmd.
func newApp(cmd *cobra.Command) (*app, error) {
	level := "info"
	if debug {
		level = "debug"
	}
	format := "text"
	if jsonOutput {
		format = "json"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: format, Writer: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}

	cfg, path, exists, err := config.Load(configPath)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}
	logger.Debug("configuration loaded", logging.FieldPath, path, "exists", exists, "namespace", cfg.Environment.Namespace)

	return &app{
		cfg:    cfg,
		logger: logger,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}, nil
}

func (a *app) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// requestTimeout is the HTTP timeout configured for scrapers.
func (a *app) requestTimeout() time.Duration {
	return time.Duration(a.cfg.Scrape.RequestTimeoutSeconds) * time.Second
}
