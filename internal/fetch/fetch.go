// Package fetch resolves a page title for a URL the user pasted, so the
// add-item input can be prefilled with something better than the raw link.
package fetch

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const maxBody = 512 * 1024

var (
	reTitle = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	reSpace = regexp.MustCompile(`\s+`)
)

type Client struct {
	http *http.Client
}

func New() *Client {
	return &Client{http: &http.Client{Timeout: 8 * time.Second}}
}

// Title fetches pageURL and extracts the document title. The body read is
// size-limited; titles normally sit in the first few KB anyway.
func (c *Client) Title(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch title: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch title: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch title: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("fetch title: %w", err)
	}
	m := reTitle.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("page has no title")
	}
	title := html.UnescapeString(string(m[1]))
	title = strings.TrimSpace(reSpace.ReplaceAllString(title, " "))
	if title == "" {
		return "", fmt.Errorf("page has no title")
	}
	return title, nil
}
