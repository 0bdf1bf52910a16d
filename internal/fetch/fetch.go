// Package fetch retrieves hadith pages over HTTP, with an optional headless
// browser fallback and a database-backed page cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent mimics a desktop Chrome; the hadith sites reject obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
	FromCache   bool
	ViaBrowser  bool
}

// Error represents an error during URL fetching. Cause always wraps
// types.ErrNotFound (HTTP 404) or types.ErrTransient (anything else).
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Blocked reports whether the server refused the request in a way a real
// browser might get past (403, 429, 503).
func (e *Error) Blocked() bool {
	switch e.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// IsBlocked reports whether err is a fetch Error for a blocked request.
func IsBlocked(err error) bool {
	var fetchErr *Error
	return errors.As(err, &fetchErr) && fetchErr.Blocked()
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// BrowserHeaders returns the request headers a desktop browser sends for a
// top-level navigation.
func BrowserHeaders() map[string]string {
	return map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Cache-Control":             "no-cache",
		"Pragma":                    "no-cache",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "cross-site",
		"Sec-Fetch-User":            "?1",
		"Upgrade-Insecure-Requests": "1",
	}
}

// DefaultOptions returns browser-like defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Headers:   BrowserHeaders(),
	}
}

// URL retrieves HTML content from a URL.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// Validate URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		if err == nil {
			err = errors.New("missing scheme or host")
		}
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   fmt.Errorf("%w: %w", types.ErrValidation, err),
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   fmt.Errorf("%w: %w", types.ErrTransient, err),
		}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	// Timeouts and network failures are transient for this source
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   fmt.Errorf("%w: %w", types.ErrTransient, err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   fmt.Errorf("%w: %w", types.ErrTransient, err),
		}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return result, nil
	case resp.StatusCode == http.StatusNotFound:
		return result, &Error{
			URL:        urlStr,
			Message:    "HTTP status 404",
			StatusCode: resp.StatusCode,
			Cause:      types.ErrNotFound,
		}
	default:
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Cause:      types.ErrTransient,
		}
	}
}

// Parse parses HTML into a goquery document.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Text returns the selection's text with whitespace runs collapsed.
func Text(sel *goquery.Selection) string {
	return CollapseWhitespace(sel.Text())
}

// CollapseWhitespace turns every whitespace run into one space and trims.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
