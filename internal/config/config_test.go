package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Same shape as the config.json shipped with the tool
	content := `{
		"database_path": "content.sqlite3",
		"hijri_offset_days": -1,
		"fonts": {"arabic": "indopak", "urdu": "jameelnoorinastaleeq"},
		"translations": {"urdu": "Jalandhry", "english": "SahihEn"},
		"hadith_source": {
			"mode": "online",
			"online": {"enabled": true, "collection": "mishkat", "timeout": 15, "fallback_to_local": false},
			"ai_translation": {"enabled": true, "model": "gemini-2.5-flash"}
		},
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "content.sqlite3", cfg.DatabasePath)
	assert.Equal(t, -1, cfg.HijriOffsetDays)
	assert.Equal(t, "indopak", cfg.Fonts.Arabic)
	assert.Equal(t, "Jalandhry", cfg.Translations.Urdu)
	assert.True(t, cfg.RemoteEnabled())
	assert.False(t, cfg.FallbackToLocal())
	assert.Equal(t, 15*time.Second, cfg.SourceTimeout())
	assert.True(t, cfg.HadithSource.AITranslation.Enabled)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty config is valid", Config{}, ""},
		{"defaults are valid", Defaults(), ""},
		{"unknown arabic font", Config{Fonts: FontsConfig{Arabic: "comic"}}, "Arabic"},
		{"unknown mode", Config{HadithSource: HadithSourceConfig{Mode: "cloud"}}, "Mode"},
		{"negative max count", Config{Combine: CombineConfig{MaxCount: -1}}, "MaxCount"},
		{"min above max", Config{Combine: CombineConfig{MinLength: 500, MaxLength: 100}}, "min_length"},
		{"missing english font", Config{Fonts: FontsConfig{EnglishFontPath: "/nonexistent/font.ttf"}}, "english font not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{
		DatabasePath: "/data/quran.sqlite3",
		Combine:      CombineConfig{MaxCount: 5},
	}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "/data/quran.sqlite3", merged.DatabasePath)
	assert.Equal(t, "state.json", merged.StateFile)
	assert.Equal(t, 5, merged.Combine.MaxCount)
	assert.Equal(t, 350, merged.Combine.MinLength)
	assert.Equal(t, 2000, merged.Combine.MaxLength)
	assert.Equal(t, "Maududi", merged.Translations.Urdu)
	assert.Equal(t, "MaududiEn", merged.Translations.English)
	assert.Equal(t, ModeLocal, merged.HadithSource.Mode)
	assert.Equal(t, "/data/quran.sqlite3", merged.HadithSource.Local.DatabasePath, "local hadith db follows the corpus db")
	assert.Equal(t, 10, merged.HadithSource.MaxAttempts)
	assert.True(t, merged.FallbackToLocal())
	assert.Equal(t, time.Second, merged.MinRequestInterval())
	assert.Equal(t, 7*24*time.Hour, merged.CacheTTL())
}

func TestRemoteEnabled_OnlineButDisabled(t *testing.T) {
	cfg := Config{HadithSource: HadithSourceConfig{Mode: ModeOnline}}
	assert.False(t, cfg.RemoteEnabled())
}

func TestResolveFontPath(t *testing.T) {
	available := map[string]string{
		"pdms": "fonts/pdms.ttf",
		"abs":  "/usr/share/fonts/amiri.ttf",
	}

	assert.Equal(t, filepath.Join("/app", "fonts/pdms.ttf"), ResolveFontPath("/app", available, "pdms"))
	assert.Equal(t, "/usr/share/fonts/amiri.ttf", ResolveFontPath("/app", available, "abs"))
	assert.Empty(t, ResolveFontPath("/app", available, "missing"))
}
