package scrape

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// OutputTemplate names downloaded files after their title.
const OutputTemplate = "%(title)s.%(ext)s"

// Downloader fetches the media behind url into dir.
type Downloader interface {
	Download(ctx context.Context, dir, url string) error
}

// YtDlp downloads through the yt-dlp binary.
type YtDlp struct {
	Binary           string
	SleepInterval    float64
	MaxSleepInterval float64
}

// command builds the yt-dlp invocation for one destination directory.
func (d YtDlp) command(dir string) *ytdlp.Command {
	cmd := ytdlp.New().
		Output(filepath.Join(dir, OutputTemplate)).
		RestrictFilenames().
		NoOverwrites().
		IgnoreErrors().
		Quiet().
		NoWarnings()
	if bin := strings.TrimSpace(d.Binary); bin != "" {
		cmd = cmd.SetExecutable(bin)
	}
	if d.SleepInterval > 0 {
		cmd = cmd.SleepInterval(d.SleepInterval)
	}
	if d.MaxSleepInterval > 0 {
		cmd = cmd.MaxSleepInterval(d.MaxSleepInterval)
	}
	return cmd
}

// Download runs yt-dlp for a single URL.
func (d YtDlp) Download(ctx context.Context, dir, url string) error {
	if _, err := d.command(dir).Run(ctx, url); err != nil {
		return fmt.Errorf("yt-dlp %s: %w", url, err)
	}
	return nil
}
