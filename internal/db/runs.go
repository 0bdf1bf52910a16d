package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run represents a published generation
type Run struct {
	ID            uuid.UUID `json:"id"`
	Date          string    `json:"date"`
	AyahReference string    `json:"ayah_reference"`
	AyahEnd       string    `json:"ayah_end"`
	HadithNumber  int       `json:"hadith_number"`
	HadithSource  string    `json:"hadith_source,omitempty"`
	Files         int       `json:"files"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecordRun stores a completed run. A zero CreatedAt is set to now.
func (db *DB) RecordRun(ctx context.Context, run *Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := db.exec(ctx,
		`INSERT INTO runs (id, run_date, ayah_reference, ayah_end, hadith_number, hadith_source, files, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Date, run.AyahReference, run.AyahEnd, run.HadithNumber, run.HadithSource, run.Files,
		run.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// ListRuns retrieves recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.query(ctx,
		`SELECT id, run_date, ayah_reference, ayah_end, hadith_number, hadith_source, files, created_at
		 FROM runs ORDER BY run_date DESC, created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		var id string
		var createdAt int64
		if err := rows.Scan(&id, &run.Date, &run.AyahReference, &run.AyahEnd, &run.HadithNumber, &run.HadithSource, &run.Files, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		run.CreatedAt = time.Unix(createdAt, 0).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
