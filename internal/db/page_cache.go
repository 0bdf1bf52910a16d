package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CachedPage is a previously fetched page body.
type CachedPage struct {
	URL       string
	Body      string
	Status    int
	FetchedAt time.Time
}

// GetCachedPage returns the cached page for url if it is younger than ttl.
// It returns nil (no error) on a miss or a stale entry.
func (db *DB) GetCachedPage(ctx context.Context, url string, ttl time.Duration) (*CachedPage, error) {
	var page CachedPage
	var fetchedAt int64
	err := db.queryRow(ctx,
		`SELECT url, body, status, fetched_at FROM page_cache WHERE url = ?`, url,
	).Scan(&page.URL, &page.Body, &page.Status, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read page cache: %w", err)
	}

	page.FetchedAt = time.Unix(fetchedAt, 0)
	if ttl > 0 && time.Since(page.FetchedAt) > ttl {
		return nil, nil
	}
	return &page, nil
}

// PutCachedPage stores or replaces the cached body for url.
func (db *DB) PutCachedPage(ctx context.Context, url, body string, status int) error {
	_, err := db.exec(ctx,
		`INSERT INTO page_cache (url, body, status, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (url) DO UPDATE SET body = excluded.body, status = excluded.status, fetched_at = excluded.fetched_at`,
		url, body, status, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write page cache: %w", err)
	}
	return nil
}
