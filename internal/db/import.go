package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/daily-ayat-hadith/internal/schemas"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// CorpusFile is the JSON layout accepted by ImportCorpus.
type CorpusFile struct {
	Surahs  []SurahEntry         `json:"surahs"`
	Verses  []types.Verse        `json:"verses"`
	Hadiths []types.HadithRecord `json:"hadiths"`
}

// SurahEntry names one surah.
type SurahEntry struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// LoadCorpusFile reads a CorpusFile from disk and checks it against the
// embedded corpus schema.
func LoadCorpusFile(path string) (*CorpusFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.Corpus, data); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrValidation, err)
	}
	var corpus CorpusFile
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}
	return &corpus, nil
}

// ImportCorpus upserts surahs, verses and hadiths in one transaction. Verse
// Arabic text goes into the column of the configured font.
func (db *DB) ImportCorpus(ctx context.Context, corpus *CorpusFile) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range corpus.Surahs {
		if _, err := tx.ExecContext(ctx, db.rebind(
			`INSERT INTO surah (SurahNumber, NameEnglish) VALUES (?, ?)
			 ON CONFLICT (SurahNumber) DO UPDATE SET NameEnglish = excluded.NameEnglish`),
			s.Number, s.Name); err != nil {
			return fmt.Errorf("failed to import surah %d: %w", s.Number, err)
		}
	}

	for _, v := range corpus.Verses {
		if v.Position.Surah < 1 || v.Position.Ayah < 1 {
			return fmt.Errorf("%w: invalid verse position %s", types.ErrValidation, v.Position)
		}
		if _, err := tx.ExecContext(ctx, db.rebind(fmt.Sprintf(
			`INSERT INTO ayah (SurahNumber, AyahNumber, %[1]s) VALUES (?, ?, ?)
			 ON CONFLICT (SurahNumber, AyahNumber) DO UPDATE SET %[1]s = excluded.%[1]s`, db.arabicColumn)),
			v.Position.Surah, v.Position.Ayah, v.Arabic); err != nil {
			return fmt.Errorf("failed to import ayah %s: %w", v.Position, err)
		}
		if _, err := tx.ExecContext(ctx, db.rebind(fmt.Sprintf(
			`INSERT INTO translations (SurahNumber, AyahNumber, %[1]s, %[2]s) VALUES (?, ?, ?, ?)
			 ON CONFLICT (SurahNumber, AyahNumber) DO UPDATE SET %[1]s = excluded.%[1]s, %[2]s = excluded.%[2]s`,
			db.urduColumn, db.englishColumn)),
			v.Position.Surah, v.Position.Ayah, v.Urdu, v.English); err != nil {
			return fmt.Errorf("failed to import translations %s: %w", v.Position, err)
		}
	}

	for _, h := range corpus.Hadiths {
		if h.Number < 1 {
			return fmt.Errorf("%w: invalid hadith number %d", types.ErrValidation, h.Number)
		}
		if _, err := tx.ExecContext(ctx, db.rebind(
			`INSERT INTO mishkaat (HadithNumber, Arabic, Urdu, English) VALUES (?, ?, ?, ?)
			 ON CONFLICT (HadithNumber) DO UPDATE SET Arabic = excluded.Arabic, Urdu = excluded.Urdu, English = excluded.English`),
			h.Number, h.Arabic, h.Urdu, h.English); err != nil {
			return fmt.Errorf("failed to import hadith %d: %w", h.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}
