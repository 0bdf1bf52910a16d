package fetch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/db"
	"github.com/jonathan/daily-ayat-hadith/internal/throttle"
)

// DefaultCacheTTL is how long a fetched page is served from the cache.
const DefaultCacheTTL = 7 * 24 * time.Hour

// PageCache stores fetched pages. *db.DB satisfies it.
type PageCache interface {
	GetCachedPage(ctx context.Context, url string, ttl time.Duration) (*db.CachedPage, error)
	PutCachedPage(ctx context.Context, url, body string, status int) error
}

// Fetcher retrieves one page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Result, error)
}

// BrowserFunc renders a page in a real browser.
type BrowserFunc func(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (string, error)

// CachedFetcher wraps URL fetching with throttling, page caching and a
// browser fallback for blocked requests.
type CachedFetcher struct {
	cache    PageCache
	throttle *throttle.Throttle
	options  *Options
	cacheTTL time.Duration
	browser  BrowserFunc // nil disables the fallback
	logger   *zap.Logger
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	Cache       PageCache     // nil disables caching
	MinInterval time.Duration // spacing between network requests
	CacheTTL    time.Duration
	UseBrowser  bool
	Options     *Options
	Logger      *zap.Logger
}

// NewCachedFetcher creates a new cached fetcher.
func NewCachedFetcher(config CachedFetcherConfig) *CachedFetcher {
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	f := &CachedFetcher{
		cache:    config.Cache,
		throttle: throttle.New(config.MinInterval),
		options:  config.Options,
		cacheTTL: config.CacheTTL,
		logger:   config.Logger,
	}
	if config.UseBrowser {
		f.browser = WithBrowser
	}
	return f
}

// Fetch retrieves a URL, using the cache if available and fresh.
// Network requests are spaced by the throttle; the cache is not.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	// Step 1: fresh cached page
	if f.cache != nil {
		cached, err := f.cache.GetCachedPage(ctx, urlStr, f.cacheTTL)
		if err != nil {
			f.logger.Warn("page cache read failed", zap.String("url", urlStr), zap.Error(err))
		} else if cached != nil {
			f.logger.Debug("page cache hit", zap.String("url", urlStr))
			return &Result{
				URL:        cached.URL,
				HTML:       cached.Body,
				StatusCode: cached.Status,
				FromCache:  true,
			}, nil
		}
	}

	// Step 2: network
	if err := f.throttle.Wait(ctx); err != nil {
		return nil, &Error{URL: urlStr, Message: "throttle wait cancelled", Cause: err}
	}
	f.logger.Info("fetching page", zap.String("url", urlStr))

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		if f.browser == nil || !IsBlocked(err) {
			return nil, err
		}
		// Step 3: blocked, retry once through a real browser
		f.logger.Warn("request blocked, retrying with headless browser", zap.String("url", urlStr), zap.Error(err))
		html, browserErr := f.browser(ctx, urlStr, f.options.Timeout, f.logger)
		if browserErr != nil {
			return nil, errors.Join(err, browserErr)
		}
		result = &Result{URL: urlStr, HTML: html, StatusCode: 200, ViaBrowser: true}
	}

	// Step 4: store, best effort
	if f.cache != nil {
		if err := f.cache.PutCachedPage(ctx, urlStr, result.HTML, result.StatusCode); err != nil {
			f.logger.Warn("page cache write failed", zap.String("url", urlStr), zap.Error(err))
		}
	}

	return result, nil
}
