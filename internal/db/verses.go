package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// GetVerse returns the ayah at pos with its translations.
func (db *DB) GetVerse(ctx context.Context, pos types.VersePosition) (*types.Verse, error) {
	var v types.Verse
	var arabic, surahName sql.NullString
	err := db.queryRow(ctx, fmt.Sprintf(
		`SELECT a.SurahNumber, a.AyahNumber, a.%s, s.NameEnglish
		 FROM ayah a
		 JOIN surah s ON a.SurahNumber = s.SurahNumber
		 WHERE a.SurahNumber = ? AND a.AyahNumber = ?`, db.arabicColumn),
		pos.Surah, pos.Ayah,
	).Scan(&v.Position.Surah, &v.Position.Ayah, &arabic, &surahName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: ayah %s", types.ErrNotFound, pos)
		}
		return nil, fmt.Errorf("failed to get ayah %s: %w", pos, err)
	}

	var urdu, english sql.NullString
	err = db.queryRow(ctx, fmt.Sprintf(
		`SELECT %s, %s FROM translations WHERE SurahNumber = ? AND AyahNumber = ?`,
		db.urduColumn, db.englishColumn),
		pos.Surah, pos.Ayah,
	).Scan(&urdu, &english)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: translations for ayah %s", types.ErrNotFound, pos)
		}
		return nil, fmt.Errorf("failed to get translations for ayah %s: %w", pos, err)
	}

	v.Arabic = CleanText(arabic.String)
	v.SurahName = CleanText(surahName.String)
	v.Urdu = CleanText(urdu.String)
	v.English = CleanText(english.String)
	return &v, nil
}

// GetVerseRun returns up to limit ayahs of start's surah beginning at start, in order.
// Ayahs without a translation row are not returned.
func (db *DB) GetVerseRun(ctx context.Context, start types.VersePosition, limit int) ([]types.Verse, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := db.query(ctx, fmt.Sprintf(
		`SELECT a.SurahNumber, a.AyahNumber, a.%s, s.NameEnglish, t.%s, t.%s
		 FROM ayah a
		 JOIN surah s ON a.SurahNumber = s.SurahNumber
		 JOIN translations t ON a.SurahNumber = t.SurahNumber AND a.AyahNumber = t.AyahNumber
		 WHERE a.SurahNumber = ? AND a.AyahNumber >= ?
		 ORDER BY a.AyahNumber
		 LIMIT ?`, db.arabicColumn, db.urduColumn, db.englishColumn),
		start.Surah, start.Ayah, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ayahs from %s: %w", start, err)
	}
	defer func() { _ = rows.Close() }()

	var verses []types.Verse
	for rows.Next() {
		var v types.Verse
		var arabic, surahName, urdu, english sql.NullString
		if err := rows.Scan(&v.Position.Surah, &v.Position.Ayah, &arabic, &surahName, &urdu, &english); err != nil {
			return nil, fmt.Errorf("failed to scan ayah: %w", err)
		}
		v.Arabic = CleanText(arabic.String)
		v.SurahName = CleanText(surahName.String)
		v.Urdu = CleanText(urdu.String)
		v.English = CleanText(english.String)
		verses = append(verses, v)
	}
	return verses, rows.Err()
}

// NextPosition returns the ayah after pos: the next ayah of the same surah,
// else the first ayah of the next surah, else the first ayah of the corpus.
// The wrap is silent, so the sequence never ends.
func (db *DB) NextPosition(ctx context.Context, pos types.VersePosition) (types.VersePosition, error) {
	var next types.VersePosition

	err := db.queryRow(ctx,
		`SELECT SurahNumber, AyahNumber FROM ayah
		 WHERE SurahNumber = ? AND AyahNumber > ?
		 ORDER BY AyahNumber
		 LIMIT 1`,
		pos.Surah, pos.Ayah,
	).Scan(&next.Surah, &next.Ayah)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return next, fmt.Errorf("failed to find ayah after %s: %w", pos, err)
	}

	err = db.queryRow(ctx,
		`SELECT SurahNumber, MIN(AyahNumber) FROM ayah
		 WHERE SurahNumber > ?
		 GROUP BY SurahNumber
		 ORDER BY SurahNumber
		 LIMIT 1`,
		pos.Surah,
	).Scan(&next.Surah, &next.Ayah)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return next, fmt.Errorf("failed to find surah after %d: %w", pos.Surah, err)
	}

	return db.FirstPosition(ctx)
}

// FirstPosition returns the first ayah of the corpus.
func (db *DB) FirstPosition(ctx context.Context) (types.VersePosition, error) {
	var first types.VersePosition
	err := db.queryRow(ctx,
		`SELECT SurahNumber, MIN(AyahNumber) FROM ayah
		 GROUP BY SurahNumber
		 ORDER BY SurahNumber
		 LIMIT 1`,
	).Scan(&first.Surah, &first.Ayah)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return first, fmt.Errorf("%w: ayah table is empty", types.ErrNotFound)
		}
		return first, fmt.Errorf("failed to find first ayah: %w", err)
	}
	return first, nil
}

// TotalVerses returns the number of ayahs in the corpus.
func (db *DB) TotalVerses(ctx context.Context) (int, error) {
	var count int
	if err := db.queryRow(ctx, `SELECT COUNT(*) FROM ayah`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ayahs: %w", err)
	}
	return count, nil
}
