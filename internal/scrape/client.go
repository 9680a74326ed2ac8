package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shinji-kodama/ved/internal/model"
)

// Client performs the GET requests of the scrapers.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// NewClient returns a Client whose requests time out after timeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

func (c *Client) httpClient() *http.Client {
	if c == nil || c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// open issues a GET and returns the body of a 200 response.
func (c *Client) open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	if c != nil && c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}

// getJSON decodes a JSON response body into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.open(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// ValidateURL checks that rawURL is an absolute http(s) URL containing
// domain.
func ValidateURL(rawURL, domain string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, model.UsageError("invalid URL %q: an absolute http(s) URL is required", rawURL)
	}
	if domain != "" && !strings.Contains(rawURL, domain) {
		return nil, model.UsageError("URL (%s) does not match scraping domain (%s)", rawURL, domain)
	}
	return u, nil
}
