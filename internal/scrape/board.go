package scrape

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shinji-kodama/ved/internal/model"
	"github.com/shinji-kodama/ved/internal/naming"
)

// Thread is a catalog entry of an imageboard.
type Thread struct {
	No      int64  `json:"no"`
	Subject string `json:"sub"`
	Slug    string `json:"semantic_url"`
	Replies int    `json:"replies"`
}

// Post is a single message of a thread. Posts without an attachment have
// a zero Tim.
type Post struct {
	No       int64  `json:"no"`
	Tim      int64  `json:"tim"`
	Ext      string `json:"ext"`
	Filename string `json:"filename"`
}

type boardList struct {
	Boards []struct {
		Board string `json:"board"`
		Title string `json:"title"`
	} `json:"boards"`
}

type catalogPage struct {
	Page    int      `json:"page"`
	Threads []Thread `json:"threads"`
}

type threadPosts struct {
	Posts []Post `json:"posts"`
}

// BoardScraper reads the read-only JSON API of a 4chan-style imageboard.
type BoardScraper struct {
	Client *Client
	// APIBase serves boards.json, <board>/catalog.json and
	// <board>/thread/<no>.json.
	APIBase string
	// FileBase serves attachments as <board>/<tim><ext>.
	FileBase string
}

// BoardName returns the last path element of a board URL such as
// https://boards.example.org/wsg/.
func BoardName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", model.UsageError("invalid board URL %q", rawURL)
	}
	name := path.Base(strings.TrimRight(u.Path, "/"))
	if name == "." || name == "/" || name == "" {
		return "", model.UsageError("board URL %q has no board name", rawURL)
	}
	return name, nil
}

func (s *BoardScraper) apiURL(elem ...string) string {
	return strings.TrimRight(s.APIBase, "/") + "/" + strings.Join(elem, "/")
}

// Boards returns the short names of every board.
func (s *BoardScraper) Boards(ctx context.Context) ([]string, error) {
	var list boardList
	if err := s.Client.getJSON(ctx, s.apiURL("boards.json"), &list); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list.Boards))
	for _, b := range list.Boards {
		names = append(names, b.Board)
	}
	return names, nil
}

// CheckBoard returns a usage error unless board is listed by the API.
func (s *BoardScraper) CheckBoard(ctx context.Context, board string) error {
	names, err := s.Boards(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == board {
			return nil
		}
	}
	return model.UsageError("%s not found in list of boards", board)
}

// Threads returns every thread of board in catalog order.
func (s *BoardScraper) Threads(ctx context.Context, board string) ([]Thread, error) {
	var pages []catalogPage
	if err := s.Client.getJSON(ctx, s.apiURL(board, "catalog.json"), &pages); err != nil {
		return nil, err
	}
	var threads []Thread
	for _, p := range pages {
		threads = append(threads, p.Threads...)
	}
	return threads, nil
}

// FilterThreads keeps threads whose lower-cased slug contains at least
// one include word and no exclude word. An empty include list keeps
// every thread that is not excluded.
func FilterThreads(threads []Thread, include, exclude []string) []Thread {
	var out []Thread
	for _, t := range threads {
		slug := strings.ToLower(t.Slug)
		if len(include) > 0 && !containsAny(slug, include) {
			continue
		}
		if containsAny(slug, exclude) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// ThreadFiles returns the attachment URLs of a thread.
func (s *BoardScraper) ThreadFiles(ctx context.Context, board string, no int64) ([]string, error) {
	var thread threadPosts
	if err := s.Client.getJSON(ctx, s.apiURL(board, "thread", strconv.FormatInt(no, 10)+".json"), &thread); err != nil {
		return nil, err
	}
	base := strings.TrimRight(s.FileBase, "/")
	var files []string
	for _, p := range thread.Posts {
		if p.Tim == 0 || p.Ext == "" {
			continue
		}
		files = append(files, fmt.Sprintf("%s/%s/%d%s", base, board, p.Tim, p.Ext))
	}
	return files, nil
}

// ThreadDir is the download directory of a thread below root. Threads
// without a usable slug fall back to their number.
func ThreadDir(root string, t Thread) string {
	name := naming.SanitizeName(t.Slug)
	if name == "" {
		name = strconv.FormatInt(t.No, 10)
	}
	return filepath.Join(root, name)
}
