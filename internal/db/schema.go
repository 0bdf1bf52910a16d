package db

import (
	"context"
	"fmt"
)

// EnsureSchema creates the corpus tables, the run history and the page cache
// if they do not exist.
// The translations table gets the configured Urdu and English columns.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS surah (
			SurahNumber INTEGER PRIMARY KEY,
			NameEnglish TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ayah (
			SurahNumber INTEGER NOT NULL,
			AyahNumber INTEGER NOT NULL,
			AyahTextIndoPakForIOS TEXT,
			AyahTextMuhammadi TEXT,
			AyahTextPdms TEXT,
			AyahTextQalam TEXT,
			PRIMARY KEY (SurahNumber, AyahNumber)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS translations (
			SurahNumber INTEGER NOT NULL,
			AyahNumber INTEGER NOT NULL,
			%s TEXT,
			%s TEXT,
			PRIMARY KEY (SurahNumber, AyahNumber)
		)`, db.urduColumn, db.englishColumn),
		`CREATE TABLE IF NOT EXISTS mishkaat (
			HadithNumber INTEGER PRIMARY KEY,
			Arabic TEXT,
			Urdu TEXT,
			English TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			run_date TEXT NOT NULL,
			ayah_reference TEXT NOT NULL,
			ayah_end TEXT NOT NULL,
			hadith_number INTEGER NOT NULL,
			hadith_source TEXT NOT NULL DEFAULT '',
			files INTEGER NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS page_cache (
			url TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			status INTEGER NOT NULL,
			fetched_at BIGINT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	db.hadithEnglish = db.hasColumn(ctx, "mishkaat", "English")
	return nil
}
