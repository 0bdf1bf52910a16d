package progress

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

func openTemp(t *testing.T) *Tracker {
	t.Helper()
	tr, err := Open(filepath.Join(t.TempDir(), "state", "progress.json"), zap.NewNop())
	require.NoError(t, err)
	return tr
}

func readState(t *testing.T, path string) types.ProgressState {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var state types.ProgressState
	require.NoError(t, json.Unmarshal(data, &state))
	return state
}

func TestOpen_MissingFileWritesInitialState(t *testing.T) {
	tr := openTemp(t)

	assert.Equal(t, types.InitialProgressState(), tr.State())
	assert.Equal(t, types.InitialProgressState(), readState(t, tr.Path()))

	ok, err := tr.ShouldGenerate("2024-01-01")
	require.NoError(t, err)
	assert.True(t, ok, "a fresh tracker is always pending")
}

func TestOpen_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"last_date": "2024-03-10",
		"content_type": "both",
		"last_surah": 2,
		"last_ayah": 7,
		"last_hadith": 41
	}`), 0644))

	tr, err := Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, types.ProgressState{
		LastDate:    "2024-03-10",
		ContentType: types.ContentBoth,
		LastSurah:   2,
		LastAyah:    7,
		LastHadith:  41,
	}, tr.State())
}

func TestOpen_CorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{"last_date": `},
		{"missing cursor", `{"last_date": "2024-03-10"}`},
		{"bad date", `{"last_date": "2024-02-30", "last_surah": 1, "last_ayah": 0, "last_hadith": 0}`},
		{"negative ayah", `{"last_date": "2024-03-10", "last_surah": 1, "last_ayah": -3, "last_hadith": 0}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "progress.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Open(path, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrValidation)
			var corrupt *CorruptStateError
			require.ErrorAs(t, err, &corrupt)
			assert.Equal(t, path, corrupt.Path)

			data, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, tt.content, string(data), "a corrupt file is left for the operator")
		})
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("", nil)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestShouldGenerate(t *testing.T) {
	tr := openTemp(t)
	require.NoError(t, tr.Advance("2024-03-10", types.ContentBoth, types.VersePosition{Surah: 1, Ayah: 3}, 2))

	tests := []struct {
		date string
		want bool
	}{
		{"2024-03-09", false},
		{"2024-03-10", false},
		{"2024-03-11", true},
		{"2025-01-01", true},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := tr.ShouldGenerate(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := tr.ShouldGenerate("10/03/2024")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestAdvance_PersistsWholeRecord(t *testing.T) {
	tr := openTemp(t)

	pos := types.VersePosition{Surah: 2, Ayah: 5}
	require.NoError(t, tr.Advance("2024-03-10", types.ContentBoth, pos, 17))

	want := types.ProgressState{LastDate: "2024-03-10", ContentType: types.ContentBoth, LastSurah: 2, LastAyah: 5, LastHadith: 17}
	assert.Equal(t, want, tr.State())
	assert.Equal(t, want, readState(t, tr.Path()))

	reopened, err := Open(tr.Path(), nil)
	require.NoError(t, err)
	assert.Equal(t, want, reopened.State())

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(tr.Path()), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files are cleaned up")
}

func TestAdvance_DateIsMonotonic(t *testing.T) {
	tr := openTemp(t)
	require.NoError(t, tr.Advance("2024-03-10", types.ContentBoth, types.VersePosition{Surah: 1, Ayah: 1}, 1))
	require.NoError(t, tr.Advance("2024-03-05", types.ContentAyat, types.VersePosition{Surah: 1, Ayah: 2}, 1))

	state := tr.State()
	assert.Equal(t, "2024-03-10", state.LastDate, "an earlier date never lowers the floor")
	assert.Equal(t, 2, state.LastAyah)
	assert.Equal(t, types.ContentAyat, state.ContentType)
}

func TestAdvance_Idempotent(t *testing.T) {
	tr := openTemp(t)
	pos := types.VersePosition{Surah: 1, Ayah: 2}
	require.NoError(t, tr.Advance("2024-03-10", types.ContentBoth, pos, 4))
	first := tr.State()
	require.NoError(t, tr.Advance("2024-03-10", types.ContentBoth, pos, 4))
	assert.Equal(t, first, tr.State())
}

func TestAdvance_Invalid(t *testing.T) {
	tr := openTemp(t)
	tests := []struct {
		name        string
		date        string
		contentType string
		pos         types.VersePosition
		hadith      int
	}{
		{"bad date", "2024-13-01", types.ContentBoth, types.VersePosition{Surah: 1, Ayah: 1}, 1},
		{"bad content type", "2024-03-01", "video", types.VersePosition{Surah: 1, Ayah: 1}, 1},
		{"zero surah", "2024-03-01", types.ContentBoth, types.VersePosition{Surah: 0, Ayah: 1}, 1},
		{"negative hadith", "2024-03-01", types.ContentBoth, types.VersePosition{Surah: 1, Ayah: 1}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tr.Advance(tt.date, tt.contentType, tt.pos, tt.hadith)
			assert.ErrorIs(t, err, types.ErrValidation)
			assert.Equal(t, types.InitialProgressState(), tr.State())
		})
	}
}

func TestAdvance_WriteFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "progress.json")
	tr, err := Open(path, nil)
	require.NoError(t, err)

	// Replacing the file with a directory makes the rename fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), nil, 0644))

	err = tr.Advance("2024-03-10", types.ContentBoth, types.VersePosition{Surah: 1, Ayah: 1}, 1)
	require.Error(t, err)
	assert.Equal(t, types.InitialProgressState(), tr.State())
}

func TestReset(t *testing.T) {
	tr := openTemp(t)
	require.NoError(t, tr.Advance("2024-03-10", types.ContentBoth, types.VersePosition{Surah: 3, Ayah: 9}, 12))

	require.NoError(t, tr.Reset())
	assert.Equal(t, types.InitialProgressState(), tr.State())
	assert.Equal(t, types.InitialProgressState(), readState(t, tr.Path()))

	ok, err := tr.ShouldGenerate("2024-03-10")
	require.NoError(t, err)
	assert.True(t, ok, "reset allows a completed date to run again")
}

func TestCreate_ReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"last_date": `), 0644))

	tr, err := Create(path, nil)
	require.NoError(t, err)
	assert.Equal(t, types.InitialProgressState(), tr.State())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, types.InitialProgressState(), reopened.State())

	_, err = Create("", nil)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2024-02-29"))
	assert.ErrorIs(t, ValidateDate("2023-02-29"), types.ErrValidation)
	assert.ErrorIs(t, ValidateDate(""), types.ErrValidation)
	assert.ErrorIs(t, ValidateDate("2024-3-1"), types.ErrValidation)
}
