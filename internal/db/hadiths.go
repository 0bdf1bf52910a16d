package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// manualEnglish holds hand-written translations for hadiths the corpus has no English for.
var manualEnglish = map[int]string{
	4629: `Abdullah ibn Amr narrated that a man asked Allah's Messenger ﷺ, "Which characteristic of Islam is best?" He said, "You should feed food and should greet not only those you know but also those whom you do not know."`,
	4631: `Abu Hurayrah narrated that Allah's Messenger ﷺ said, "You shall not enter paradise until you believe, and you shall not be perfect in belief unless you love each other. Shall I not guide you to that, which if you practice, you shall love each other? Spread salaam among yourselves (offering salaam to acquaintances and strangers alike)."`,
}

// GetHadith returns the local hadith n. English comes from the table when it
// has an English column, else from the manual translations, else stays empty.
func (db *DB) GetHadith(ctx context.Context, n int) (*types.HadithRecord, error) {
	cols := "HadithNumber, Arabic, Urdu"
	if db.hadithEnglish {
		cols += ", English"
	}

	h := types.HadithRecord{Source: types.SourceLocal}
	var arabic, urdu, english sql.NullString
	dest := []any{&h.Number, &arabic, &urdu}
	if db.hadithEnglish {
		dest = append(dest, &english)
	}

	err := db.queryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM mishkaat WHERE HadithNumber = ?`, cols), n,
	).Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: hadith %d", types.ErrNotFound, n)
		}
		return nil, fmt.Errorf("failed to get hadith %d: %w", n, err)
	}

	h.Arabic = CleanText(arabic.String)
	h.Urdu = CleanText(urdu.String)
	h.English = CleanText(english.String)
	if h.English == "" {
		h.English = manualEnglish[h.Number]
	}
	return &h, nil
}

// NextHadithNumber returns the number after n, wrapping to the smallest number.
func (db *DB) NextHadithNumber(ctx context.Context, n int) (int, error) {
	var next int
	err := db.queryRow(ctx,
		`SELECT HadithNumber FROM mishkaat WHERE HadithNumber > ? ORDER BY HadithNumber LIMIT 1`, n,
	).Scan(&next)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to find hadith after %d: %w", n, err)
	}

	var first sql.NullInt64
	if err := db.queryRow(ctx, `SELECT MIN(HadithNumber) FROM mishkaat`).Scan(&first); err != nil {
		return 0, fmt.Errorf("failed to find first hadith: %w", err)
	}
	if !first.Valid {
		return 0, fmt.Errorf("%w: mishkaat table is empty", types.ErrNotFound)
	}
	return int(first.Int64), nil
}

// TotalHadiths returns the number of hadiths in the corpus.
func (db *DB) TotalHadiths(ctx context.Context) (int, error) {
	var count int
	if err := db.queryRow(ctx, `SELECT COUNT(*) FROM mishkaat`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count hadiths: %w", err)
	}
	return count, nil
}
