// Package scrape collects media URLs from web pages and imageboard
// threads and hands them to yt-dlp for download.
//
// Each scraping step follows the same shape: validate the input, build
// the request, check the response, then decode it either with goquery
// selectors (HTML pages) or encoding/json (the board API).
package scrape
