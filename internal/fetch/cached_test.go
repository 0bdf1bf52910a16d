package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/db"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

type memoryCache struct {
	mu      sync.Mutex
	pages   map[string]*db.CachedPage
	readErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{pages: map[string]*db.CachedPage{}}
}

func (c *memoryCache) GetCachedPage(_ context.Context, url string, _ time.Duration) (*db.CachedPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return nil, c.readErr
	}
	return c.pages[url], nil
}

func (c *memoryCache) PutCachedPage(_ context.Context, url, body string, status int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[url] = &db.CachedPage{URL: url, Body: body, Status: status, FetchedAt: time.Now()}
	return nil
}

func countingServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestCachedFetcher_CachesPages(t *testing.T) {
	server, hits := countingServer(t, http.StatusOK, "<html>hadith</html>")
	cache := newMemoryCache()
	f := NewCachedFetcher(CachedFetcherConfig{Cache: cache, Logger: zap.NewNop()})

	first, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "<html>hadith</html>", second.HTML)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestCachedFetcher_DoesNotCacheFailures(t *testing.T) {
	server, hits := countingServer(t, http.StatusNotFound, "")
	cache := newMemoryCache()
	f := NewCachedFetcher(CachedFetcherConfig{Cache: cache})

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), server.URL)
		assert.ErrorIs(t, err, types.ErrNotFound)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
	assert.Empty(t, cache.pages)
}

func TestCachedFetcher_CacheReadErrorFallsThrough(t *testing.T) {
	server, hits := countingServer(t, http.StatusOK, "ok")
	cache := newMemoryCache()
	cache.readErr = errors.New("database is locked")
	f := NewCachedFetcher(CachedFetcherConfig{Cache: cache})

	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.HTML)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestCachedFetcher_BrowserFallback(t *testing.T) {
	server, _ := countingServer(t, http.StatusForbidden, "challenge")
	f := NewCachedFetcher(CachedFetcherConfig{})

	var called string
	f.browser = func(_ context.Context, url string, _ time.Duration, _ *zap.Logger) (string, error) {
		called = url
		return "<html>rendered</html>", nil
	}

	result, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, called)
	assert.True(t, result.ViaBrowser)
	assert.Equal(t, "<html>rendered</html>", result.HTML)
}

func TestCachedFetcher_BrowserNotUsedForNotFound(t *testing.T) {
	server, _ := countingServer(t, http.StatusNotFound, "")
	f := NewCachedFetcher(CachedFetcherConfig{})
	f.browser = func(context.Context, string, time.Duration, *zap.Logger) (string, error) {
		t.Fatal("browser must not be used for a 404")
		return "", nil
	}

	_, err := f.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCachedFetcher_BrowserFailureIsTransient(t *testing.T) {
	server, _ := countingServer(t, http.StatusServiceUnavailable, "")
	f := NewCachedFetcher(CachedFetcherConfig{})
	f.browser = func(context.Context, string, time.Duration, *zap.Logger) (string, error) {
		return "", errors.New("chrome not installed")
	}

	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTransient)
	assert.Contains(t, err.Error(), "chrome not installed")
}

func TestCachedFetcher_Throttled(t *testing.T) {
	server, _ := countingServer(t, http.StatusOK, "ok")
	interval := 40 * time.Millisecond
	f := NewCachedFetcher(CachedFetcherConfig{MinInterval: interval})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}
