// Package cli — scrape.go implements the "ved scrape" command group.
//
// Two scrapers share one download runner:
//   - links: anchors of a web page filtered by a regular expression
//   - board: attachments of imageboard threads selected by keywords
//
// Downloads go through yt-dlp. A progress bar is drawn on stderr only
// when it is a terminal and --json is off.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ved/internal/logging"
	"github.com/shinji-kodama/ved/internal/model"
	"github.com/shinji-kodama/ved/internal/scrape"
)

// NewScrapeCommand creates the "scrape" command group.
func NewScrapeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Download media linked from web pages or imageboard threads",
		Long: `Collect media URLs and download them with yt-dlp.

Downloads are named after the media title, never overwrite existing
files and pause between requests. A failed download is logged and the
remaining URLs are still processed.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newScrapeLinksCommand())
	cmd.AddCommand(newScrapeBoardCommand())
	return cmd
}

type scrapeLinksFlags struct {
	site    string
	pattern string
	dir     string
}

func newScrapeLinksCommand() *cobra.Command {
	flags := &scrapeLinksFlags{}

	cmd := &cobra.Command{
		Use:   "links [flags] URL",
		Short: "Download every link on a page that matches a pattern",
		Long: `Fetch URL, keep the anchors whose href matches a regular expression
(matched from the start of the href), resolve them against the page's
scheme and host and download each one.

The pattern comes from a configured site (--site) or directly from
--pattern. A site also pins the domain URL must belong to and the
download directory.

Examples:
  ved scrape links --site archive https://archive.example.org/list?page=2
  ved scrape links --pattern '^/watch/' -d clips https://media.example.net/`,
		Args: helpWithoutArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runScrapeLinks(cmd.Context(), a, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.site, "site", "", "Configured site to scrape")
	cmd.Flags().StringVar(&flags.pattern, "pattern", "", "Regular expression links must match")
	cmd.Flags().StringVarP(&flags.dir, "download-dir", "d", "", "Directory to download files to")

	return cmd
}

// runScrapeLinks resolves the pattern and download directory from the
// flags or the configured site, then downloads every matching link.
func runScrapeLinks(ctx context.Context, a *app, flags *scrapeLinksFlags, pageURL string) error {
	if (flags.site == "") == (flags.pattern == "") {
		return model.UsageError("exactly one of --site or --pattern is required")
	}
	domain, expr, dir := "", flags.pattern, flags.dir
	if flags.site != "" {
		site, ok := a.cfg.FindSite(flags.site)
		if !ok {
			return model.UsageError("unknown site %q", flags.site)
		}
		domain, expr = site.Domain, site.Pattern
		if dir == "" {
			dir = a.cfg.ResolvePath(site.DownloadDir)
		}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return model.UsageError("invalid value for --pattern: %v", err)
	}
	u, err := scrape.ValidateURL(pageURL, domain)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = filepath.Join(a.cfg.ResolvePath(a.cfg.Scrape.DownloadRoot), u.Hostname())
	}

	a.printf("Downloading files from: %s ...\n", pageURL)
	s := &scrape.LinkScraper{
		Client:  scrape.NewClient(a.requestTimeout(), a.cfg.Scrape.UserAgent),
		Pattern: re,
	}
	res, err := a.scrapeRunner().ScrapeLinks(ctx, s, pageURL, dir)
	if err != nil {
		return err
	}
	return a.printScrapeResult(res)
}

type scrapeBoardFlags struct {
	include []string
	exclude []string
	dir     string
}

func newScrapeBoardCommand() *cobra.Command {
	flags := &scrapeBoardFlags{}

	cmd := &cobra.Command{
		Use:   "board [flags] URL",
		Short: "Download attachments of imageboard threads that match keywords",
		Long: `Read the catalog of the board named by the last path element of URL
and download the attachments of every thread whose title slug contains
an --include word and no --exclude word. Matching is case-insensitive.
Without --include every thread that is not excluded is downloaded.

Each thread is stored in its own directory named after the slug.

Examples:
  ved scrape board --include timelapse --exclude request https://boards.4chan.org/wsg/`,
		Args: helpWithoutArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runScrapeBoard(cmd.Context(), a, flags, args[0])
		},
	}

	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "Keyword a thread slug must contain (repeatable)")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "Keyword that rejects a thread (repeatable)")
	cmd.Flags().StringVarP(&flags.dir, "download-dir", "d", "", "Directory to create thread directories in")

	return cmd
}

// runScrapeBoard checks the URL against the board domain and downloads
// the attachments of the matching threads.
func runScrapeBoard(ctx context.Context, a *app, flags *scrapeBoardFlags, boardURL string) error {
	sc := a.cfg.Scrape
	if _, err := scrape.ValidateURL(boardURL, sc.BoardDomain); err != nil {
		return err
	}
	board, err := scrape.BoardName(boardURL)
	if err != nil {
		return err
	}
	root := flags.dir
	if root == "" {
		root = filepath.Join(a.cfg.ResolvePath(sc.DownloadRoot), board)
	}

	a.printf("Downloading threads from: %s/%s ...\n", sc.BoardDomain, board)
	s := &scrape.BoardScraper{
		Client:   scrape.NewClient(a.requestTimeout(), sc.UserAgent),
		APIBase:  sc.BoardAPIBase,
		FileBase: sc.BoardFileBase,
	}
	res, err := a.scrapeRunner().ScrapeBoard(ctx, s, scrape.BoardQuery{
		Board:   board,
		Include: flags.include,
		Exclude: flags.exclude,
		Root:    root,
	})
	if err != nil {
		return err
	}
	return a.printScrapeResult(res)
}

func (a *app) scrapeRunner() *scrape.Runner {
	var progress io.Writer
	if !jsonOutput && isTerminal(a.errOut) {
		progress = a.errOut
	}
	return &scrape.Runner{
		Downloader: newDownloader(a.cfg),
		Logger:     logging.WithComponent(a.logger, "scrape"),
		Progress:   progress,
		DryRun:     dryRun,
		Out:        a.out,
	}
}

func (a *app) printScrapeResult(res scrape.Result) error {
	if IsJSONOutput() {
		return a.printJSON(map[string]int{"downloaded": res.Downloaded, "failed": res.Failed})
	}
	if dryRun {
		return nil
	}
	msg := fmt.Sprintf("Downloaded %d file(s)", res.Downloaded)
	if res.Failed > 0 {
		msg += fmt.Sprintf(", %d failed", res.Failed)
	}
	a.println(msg)
	return nil
}
