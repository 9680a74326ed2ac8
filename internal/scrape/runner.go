package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/shinji-kodama/ved/internal/logging"
)

// Result counts the outcome of a batch of downloads.
type Result struct {
	Downloaded int
	Failed     int
}

func (r *Result) add(o Result) {
	r.Downloaded += o.Downloaded
	r.Failed += o.Failed
}

// Runner drives a Downloader over the URLs a scraper found. Individual
// download failures are logged and counted; only cancellation aborts a
// batch.
type Runner struct {
	Downloader Downloader
	Logger     *slog.Logger
	// Progress receives a progress bar. Nil disables it.
	Progress io.Writer
	// DryRun prints the URLs to Out instead of downloading them.
	DryRun bool
	Out    io.Writer
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

func (r *Runner) newBar(n int, description string) *progressbar.ProgressBar {
	if r.Progress == nil {
		return progressbar.DefaultSilent(int64(n), description)
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(r.Progress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// DownloadAll downloads every URL into dir.
func (r *Runner) DownloadAll(ctx context.Context, dir string, urls []string, description string) (Result, error) {
	var res Result
	if r.DryRun {
		out := r.Out
		if out == nil {
			out = os.Stdout
		}
		for _, u := range urls {
			fmt.Fprintf(out, "%s -> %s\n", u, dir)
		}
		return res, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, fmt.Errorf("create download directory: %w", err)
	}

	bar := r.newBar(len(urls), description)
	defer bar.Finish()
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.Downloader.Download(ctx, dir, u); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed++
			r.logger().Warn("download failed", logging.FieldURL, u, "error", err)
		} else {
			res.Downloaded++
		}
		_ = bar.Add(1)
	}
	return res, nil
}

// ScrapeLinks downloads every link s finds on pageURL into dir.
func (r *Runner) ScrapeLinks(ctx context.Context, s *LinkScraper, pageURL, dir string) (Result, error) {
	links, err := s.Links(ctx, pageURL)
	if err != nil {
		return Result{}, err
	}
	r.logger().Debug("links collected", logging.FieldURL, pageURL, "count", len(links))
	return r.DownloadAll(ctx, dir, links, "Downloading files")
}

// BoardQuery selects threads of one board.
type BoardQuery struct {
	Board   string
	Include []string
	Exclude []string
	// Root receives one directory per thread.
	Root string
}

// ScrapeBoard downloads the attachments of every matching thread into a
// directory named after the thread slug.
func (r *Runner) ScrapeBoard(ctx context.Context, s *BoardScraper, q BoardQuery) (Result, error) {
	if err := s.CheckBoard(ctx, q.Board); err != nil {
		return Result{}, err
	}
	threads, err := s.Threads(ctx, q.Board)
	if err != nil {
		return Result{}, err
	}
	matched := FilterThreads(threads, q.Include, q.Exclude)
	r.logger().Debug("threads matched", "board", q.Board, "total", len(threads), "matched", len(matched))

	var total Result
	for _, t := range matched {
		files, err := s.ThreadFiles(ctx, q.Board, t.No)
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			r.logger().Warn("thread skipped", "thread", t.No, "error", err)
			continue
		}
		res, err := r.DownloadAll(ctx, ThreadDir(q.Root, t), files, t.Slug)
		total.add(res)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
