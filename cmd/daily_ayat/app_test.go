package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/config"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// testSettings points every file at a fresh temp directory and seeds the corpus.
func testSettings(t *testing.T) *settings {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Config{
		DatabasePath: filepath.Join(dir, "content.sqlite3"),
		StateFile:    filepath.Join(dir, "state.json"),
		OutputDir:    filepath.Join(dir, "output"),
		ReviewFile:   filepath.Join(dir, "review.yaml"),
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	require.NoError(t, cfg.Validate())
	s := &settings{cfg: cfg, baseDir: dir}

	var out bytes.Buffer
	require.NoError(t, runInitDB(context.Background(), s, filepath.Join("testdata", "corpus.json"), &out, zap.NewNop()))
	assert.Contains(t, out.String(), "Imported 2 surahs, 3 verses and 2 hadiths")
	return s
}

func TestParseDate(t *testing.T) {
	now := time.Date(2024, time.March, 11, 9, 30, 0, 0, time.UTC)

	got, err := parseDate("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = parseDate("2024-02-29", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"2023-02-29", "11/03/2024", "2024-3-1"} {
		_, err := parseDate(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestLoadSettings_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"database_path": "quran.db",
		"hijri_offset_days": -1,
		"hadith_source": {"mode": "online", "online": {"enabled": true}}
	}`), 0644))

	configPath = path
	t.Cleanup(func() { configPath = "" })

	s, err := loadSettings(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, dir, s.baseDir)
	assert.Equal(t, "quran.db", s.cfg.DatabasePath)
	assert.Equal(t, -1, s.cfg.HijriOffsetDays)
	assert.True(t, s.cfg.RemoteEnabled())
	assert.Equal(t, "state.json", s.cfg.StateFile, "defaults fill the rest")
	assert.Equal(t, "quran.db", s.cfg.HadithSource.Local.DatabasePath)
}

func TestLoadSettings_DatabaseURL(t *testing.T) {
	for _, key := range hermeticEnv {
		require.Empty(t, os.Getenv(key), "%s leaks into tests", key)
	}

	dir := t.TempDir()
	bare := filepath.Join(dir, "bare.json")
	require.NoError(t, os.WriteFile(bare, []byte(`{}`), 0644))
	pinned := filepath.Join(dir, "pinned.json")
	require.NoError(t, os.WriteFile(pinned, []byte(`{"database_path": "quran.db"}`), 0644))
	t.Cleanup(func() { configPath = "" })

	configPath = bare
	s, err := loadSettings(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().DatabasePath, s.cfg.DatabasePath)

	t.Setenv("DATABASE_URL", "postgres://quran@localhost/corpus")
	s, err = loadSettings(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, "postgres://quran@localhost/corpus", s.cfg.DatabasePath)

	configPath = pinned
	s, err = loadSettings(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, "quran.db", s.cfg.DatabasePath, "config file wins over the environment")
}

func TestLoadSettings_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"hadith_source": {"mode": "carrier-pigeon"}}`), 0644))

	configPath = path
	t.Cleanup(func() { configPath = "" })

	_, err := loadSettings(&cobra.Command{})
	assert.Error(t, err)
}

func TestGenerate_EndToEnd(t *testing.T) {
	s := testSettings(t)
	ctx := context.Background()
	date := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.Local)

	var out bytes.Buffer
	result, err := runGenerate(ctx, s, generateOptions{Date: date, AutoApprove: true}, strings.NewReader(""), &out, zap.NewNop())
	require.NoError(t, err)
	require.False(t, result.Skipped)

	dir := filepath.Join(s.cfg.OutputDir, "2024-03-11")
	assert.FileExists(t, filepath.Join(dir, "ayat_Al_Fatiha_1.png"))
	assert.FileExists(t, filepath.Join(dir, "hadith_mishkaat_1.png"))
	assert.FileExists(t, filepath.Join(dir, "manifest.json"))
	assert.Contains(t, out.String(), "Generated 2 images")

	out.Reset()
	result, err = runGenerate(ctx, s, generateOptions{Date: date, AutoApprove: true}, strings.NewReader(""), &out, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Contains(t, out.String(), "ALREADY GENERATED FOR 2024-03-11")

	out.Reset()
	require.NoError(t, runStatus(ctx, s, &out, zap.NewNop()))
	assert.Contains(t, out.String(), "Last date:    2024-03-11")
	assert.Contains(t, out.String(), "Last ayah:    1:2")
	assert.Contains(t, out.String(), "Corpus: 3 ayahs, 2 hadiths")

	out.Reset()
	require.NoError(t, runHistory(ctx, s, 5, &out, zap.NewNop()))
	assert.Contains(t, out.String(), "2024-03-11  Al Fatiha 1-2 · hadith 1 (local)")
}

func TestGenerate_ReviewDeclined(t *testing.T) {
	s := testSettings(t)
	date := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.Local)

	var out bytes.Buffer
	result, err := runGenerate(context.Background(), s, generateOptions{Date: date}, strings.NewReader("n\n"), &out, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.FileExists(t, s.cfg.ReviewFile)
	assert.NoDirExists(t, filepath.Join(s.cfg.OutputDir, "2024-03-11"))
	assert.Contains(t, out.String(), "nothing was written")
}

func TestPreview(t *testing.T) {
	s := testSettings(t)
	ctx := context.Background()

	tests := []struct {
		name string
		kind previewKind
		want []string
	}{
		{"both", previewBoth, []string{"Al Fatiha 1-2", "Number:  1"}},
		{"ayah", previewAyah, []string{"Al Fatiha 1-2"}},
		{"hadith", previewHadith, []string{"Number:  1", "Source:  local"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runPreview(ctx, s, tt.kind, &out, zap.NewNop()))
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}

	var out bytes.Buffer
	require.NoError(t, runStatus(ctx, s, &out, zap.NewNop()))
	assert.Contains(t, out.String(), "(never run)", "preview does not advance")
}

func TestReset_RecoversCorruptState(t *testing.T) {
	s := testSettings(t)
	require.NoError(t, os.WriteFile(s.cfg.StateFile, []byte("{"), 0644))

	var out bytes.Buffer
	err := runStatus(context.Background(), s, &out, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrValidation)

	out.Reset()
	require.NoError(t, runReset(s.cfg.StateFile, &out, zap.NewNop()))
	assert.Contains(t, out.String(), types.NeverRunDate)

	require.NoError(t, runStatus(context.Background(), s, &out, zap.NewNop()))
}

func TestInitDB_RejectsInvalidSeed(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(seed, []byte(`{"verses": [{"position": {"surah": 0, "ayah": 1}, "arabic": "x"}]}`), 0644))

	cfg := config.Config{DatabasePath: filepath.Join(dir, "content.sqlite3")}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	err := runInitDB(context.Background(), &settings{cfg: cfg, baseDir: dir}, seed, &bytes.Buffer{}, zap.NewNop())
	assert.ErrorIs(t, err, types.ErrValidation)
}
