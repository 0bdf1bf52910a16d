package ayah

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/db"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

type fakeSource struct {
	verses []types.Verse
	err    error
	limits []int
}

func (f *fakeSource) GetVerseRun(_ context.Context, start types.VersePosition, limit int) ([]types.Verse, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	var out []types.Verse
	for _, v := range f.verses {
		if v.Position.Surah == start.Surah && v.Position.Ayah >= start.Ayah && len(out) < limit {
			out = append(out, v)
		}
	}
	return out, nil
}

// verse builds an ayah whose three fields add up to length runes.
func verse(surah, ayah, length int) types.Verse {
	third := length / 3
	return types.Verse{
		Position:  types.VersePosition{Surah: surah, Ayah: ayah},
		Arabic:    strings.Repeat("ب", third),
		Urdu:      strings.Repeat("ا", third),
		English:   strings.Repeat("e", length-2*third),
		SurahName: "Al-Baqarah",
	}
}

func TestSelect(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name      string
		run       []types.Verse
		wantCount int
	}{
		{
			name:      "three short ayahs all combine",
			run:       []types.Verse{verse(2, 1, 100), verse(2, 2, 100), verse(2, 3, 100)},
			wantCount: 3,
		},
		{
			name:      "stops once min length is reached",
			run:       []types.Verse{verse(2, 1, 400), verse(2, 2, 10), verse(2, 3, 10)},
			wantCount: 1,
		},
		{
			name:      "min length reached after two",
			run:       []types.Verse{verse(2, 1, 200), verse(2, 2, 200), verse(2, 3, 10)},
			wantCount: 2,
		},
		{
			name:      "max length blocks the candidate",
			run:       []types.Verse{verse(2, 1, 300), verse(2, 2, 1800)},
			wantCount: 1,
		},
		{
			name:      "gap stops combining",
			run:       []types.Verse{verse(2, 1, 100), verse(2, 3, 100)},
			wantCount: 1,
		},
		{
			name:      "surah change stops combining",
			run:       []types.Verse{verse(1, 7, 100), verse(2, 8, 100)},
			wantCount: 1,
		},
		{
			name:      "oversized first ayah still forms a unit",
			run:       []types.Verse{verse(2, 282, 2500), verse(2, 283, 10)},
			wantCount: 1,
		},
		{
			name:      "max count caps the run",
			run:       []types.Verse{verse(2, 1, 10), verse(2, 2, 10), verse(2, 3, 10), verse(2, 4, 10)},
			wantCount: 3,
		},
		{
			name:      "empty run",
			run:       nil,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.run, policy)
			assert.Len(t, got, tt.wantCount)
		})
	}
}

func TestSelect_Bounds(t *testing.T) {
	policy := Policy{MinLen: 50, MaxLen: 120, MaxCount: 4}
	lengths := []int{3, 30, 45, 60, 90, 119, 130}

	for _, a := range lengths {
		for _, b := range lengths {
			for _, c := range lengths {
				run := []types.Verse{verse(3, 1, a), verse(3, 2, b), verse(3, 3, c), verse(3, 4, 3)}
				got := Select(run, policy)

				require.GreaterOrEqual(t, len(got), 1)
				require.LessOrEqual(t, len(got), policy.MaxCount)

				total := 0
				for i, v := range got {
					total += v.Length()
					assert.Equal(t, i+1, v.Position.Ayah, "consecutive from the start")
				}
				if len(got) > 1 {
					assert.LessOrEqual(t, total, policy.MaxLen)
					// The unit was still short before its last ayah was added
					assert.Less(t, total-got[len(got)-1].Length(), policy.MinLen)
				}
			}
		}
	}
}

func TestBuild_Single(t *testing.T) {
	v := types.Verse{
		Position:  types.VersePosition{Surah: 1, Ayah: 1},
		Arabic:    "بِسۡمِ اللّٰهِ",
		Urdu:      "اللہ کے نام سے",
		English:   "In the name of Allah",
		SurahName: "Al-Fatiha",
	}

	unit := Build([]types.Verse{v})
	require.NotNil(t, unit)
	assert.Equal(t, v.Arabic, unit.Arabic)
	assert.Equal(t, v.Urdu, unit.Urdu)
	assert.Equal(t, v.English, unit.English)
	assert.Equal(t, 1, unit.Count)
	assert.Equal(t, "Al-Fatiha 1", unit.Reference())
}

func TestBuild_Multiple(t *testing.T) {
	verses := []types.Verse{
		{Position: types.VersePosition{Surah: 2, Ayah: 1}, Arabic: "الم", Urdu: "الف لام میم", English: "Alif Lam Mim", SurahName: "Al-Baqarah"},
		{Position: types.VersePosition{Surah: 2, Ayah: 2}, Arabic: "ذلك الكتاب", Urdu: "یہ کتاب", English: "This is the Book", SurahName: "Al-Baqarah"},
	}

	unit := Build(verses)
	require.NotNil(t, unit)
	assert.Equal(t, "الم ۞ ذلك الكتاب", unit.Arabic)
	assert.Equal(t, "الف لام میم (1) یہ کتاب (2)", unit.Urdu)
	assert.Equal(t, "Alif Lam Mim (1) This is the Book (2)", unit.English)
	assert.Equal(t, types.VersePosition{Surah: 2, Ayah: 1}, unit.Start)
	assert.Equal(t, types.VersePosition{Surah: 2, Ayah: 2}, unit.End)
	assert.Equal(t, 2, unit.Count)
	assert.Equal(t, "Al-Baqarah 1-2", unit.Reference())
}

func TestCombiner_Combine(t *testing.T) {
	source := &fakeSource{verses: []types.Verse{verse(2, 1, 100), verse(2, 2, 100), verse(2, 3, 100), verse(2, 4, 100)}}
	c := NewCombiner(source, Policy{}, zap.NewNop())

	unit, err := c.Combine(context.Background(), types.VersePosition{Surah: 2, Ayah: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, unit.Count)
	assert.Equal(t, types.VersePosition{Surah: 2, Ayah: 4}, unit.End)
	assert.Equal(t, []int{3}, source.limits, "fetches at most MaxCount ayahs")
	assert.Equal(t, DefaultPolicy(), c.Policy())
}

func TestCombiner_NoVerses(t *testing.T) {
	c := NewCombiner(&fakeSource{}, DefaultPolicy(), nil)

	_, err := c.Combine(context.Background(), types.VersePosition{Surah: 200, Ayah: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.ErrorIs(t, err, types.ErrNotFound)

	var ayahErr *Error
	assert.True(t, errors.As(err, &ayahErr))
	assert.Contains(t, err.Error(), "no verses at position 200:1")
}

func TestCombiner_MissingStartPosition(t *testing.T) {
	// 2:2 is absent; the run read from 2:2 begins at 2:3
	source := &fakeSource{verses: []types.Verse{verse(2, 1, 100), verse(2, 3, 100), verse(2, 4, 100)}}
	c := NewCombiner(source, DefaultPolicy(), nil)

	tests := []struct {
		name  string
		start types.VersePosition
	}{
		{name: "gap at start", start: types.VersePosition{Surah: 2, Ayah: 2}},
		{name: "ayah zero", start: types.VersePosition{Surah: 2, Ayah: 0}},
		{name: "negative ayah", start: types.VersePosition{Surah: 2, Ayah: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := c.Combine(context.Background(), tt.start)
			require.Error(t, err)
			assert.Nil(t, unit)
			assert.ErrorIs(t, err, types.ErrValidation)
			assert.ErrorIs(t, err, types.ErrNotFound)
			assert.Contains(t, err.Error(), "no verses at position "+tt.start.String())
		})
	}
}

func newCorpusStore(t *testing.T) (*db.DB, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	store, err := db.New(ctx, conn, db.DialectSQLite, nil)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.ImportCorpus(ctx, &db.CorpusFile{
		Surahs: []db.SurahEntry{{Number: 1, Name: "Al-Fatiha"}},
		Verses: []types.Verse{
			{Position: types.VersePosition{Surah: 1, Ayah: 1}, Arabic: "بسم", Urdu: "نام", English: "In the name"},
			{Position: types.VersePosition{Surah: 1, Ayah: 2}, Arabic: "الحمد", Urdu: "تعریف", English: "All praise"},
			{Position: types.VersePosition{Surah: 1, Ayah: 3}, Arabic: "الرحمن", Urdu: "رحمان", English: "The Merciful"},
		},
	}))
	return store, conn
}

func TestCombiner_StoreBacked(t *testing.T) {
	ctx := context.Background()

	t.Run("starts at the requested ayah", func(t *testing.T) {
		store, _ := newCorpusStore(t)
		unit, err := NewCombiner(store, DefaultPolicy(), nil).Combine(ctx, types.VersePosition{Surah: 1, Ayah: 2})
		require.NoError(t, err)
		assert.Equal(t, types.VersePosition{Surah: 1, Ayah: 2}, unit.Start)
		assert.Equal(t, "Al-Fatiha 2-3", unit.Reference())
	})

	t.Run("position before the first ayah", func(t *testing.T) {
		store, _ := newCorpusStore(t)
		_, err := NewCombiner(store, DefaultPolicy(), nil).Combine(ctx, types.VersePosition{Surah: 1, Ayah: 0})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("ayah without translation row", func(t *testing.T) {
		store, conn := newCorpusStore(t)
		_, err := conn.ExecContext(ctx, `DELETE FROM translations WHERE SurahNumber = 1 AND AyahNumber = 2`)
		require.NoError(t, err)

		next, err := store.NextPosition(ctx, types.VersePosition{Surah: 1, Ayah: 1})
		require.NoError(t, err)
		require.Equal(t, types.VersePosition{Surah: 1, Ayah: 2}, next)

		_, err = NewCombiner(store, DefaultPolicy(), nil).Combine(ctx, next)
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestCombiner_SourceError(t *testing.T) {
	boom := errors.New("disk on fire")
	c := NewCombiner(&fakeSource{err: boom}, DefaultPolicy(), nil)

	_, err := c.Combine(context.Background(), types.VersePosition{Surah: 1, Ayah: 1})
	assert.ErrorIs(t, err, boom)
}
