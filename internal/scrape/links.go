package scrape

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkScraper collects anchors from a single page whose href matches
// Pattern.
type LinkScraper struct {
	Client  *Client
	Pattern *regexp.Regexp
}

// Links fetches pageURL and returns the matching links, de-duplicated,
// sorted and resolved against the page's scheme and host.
func (s *LinkScraper) Links(ctx context.Context, pageURL string) ([]string, error) {
	if s.Pattern == nil {
		return nil, fmt.Errorf("link scraper: no pattern configured")
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	body, err := s.Client.open(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML from %s: %w", pageURL, err)
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || !matchesFromStart(s.Pattern, href) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		link := root.ResolveReference(ref).String()
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})
	sort.Strings(links)
	return links, nil
}

// matchesFromStart reports whether re matches a prefix of s.
func matchesFromStart(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}
