// Package fetch retrieves a job description from a URL: plain HTTP with
// HTML-to-text conversion, with optional headless-browser rendering for
// JavaScript-heavy pages.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// defaultUserAgent identifies the service to remote sites.
const defaultUserAgent = "Mozilla/5.0 (compatible; ResumeMatcher/1.0)"

// Error wraps a fetch failure with the URL it happened on.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// JobDescription fetches a URL and returns its visible text. When
// useBrowser is set, or the plain fetch yields suspiciously little
// content, the page is re-rendered in a headless browser before the
// text is extracted.
func JobDescription(ctx context.Context, urlStr string, useBrowser bool) (string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	html, err := fetchHTML(ctx, urlStr)
	if err != nil && !useBrowser {
		return "", err
	}

	text := htmlToText(html)
	if useBrowser || shouldRender(text) {
		rendered, berr := renderWithBrowser(ctx, urlStr, DefaultTimeout)
		if berr == nil {
			if renderedText := htmlToText(rendered); len(renderedText) > len(text) {
				text = renderedText
			}
		} else if err != nil {
			// Both paths failed.
			return "", &Error{URL: urlStr, Message: "browser rendering failed after HTTP fetch failed", Cause: berr}
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: urlStr, Message: "no text content"}
	}
	return text, nil
}

func fetchHTML(ctx context.Context, urlStr string) (string, error) {
	client := &http.Client{Timeout: DefaultTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: urlStr, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to read body", Cause: err}
	}
	return string(body), nil
}

func htmlToText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, nav, footer").Remove()
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}
