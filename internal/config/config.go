// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Hadith source modes
const (
	ModeLocal  = "local"
	ModeOnline = "online"
)

// Config represents the CLI configuration loaded from config.json.
// All fields are optional; missing values are filled by MergeWithDefaults.
type Config struct {
	DatabasePath    string `json:"database_path,omitempty"`     // SQLite file or postgres:// URL of the corpus
	StateFile       string `json:"state_file,omitempty"`        // Progress cursor file
	OutputDir       string `json:"output_dir,omitempty"`        // Root directory for rendered images
	ReviewFile      string `json:"review_file,omitempty"`       // Draft file used by the review gate
	HijriOffsetDays int    `json:"hijri_offset_days,omitempty"` // Local moon-sighting adjustment

	Fonts        FontsConfig        `json:"fonts"`
	Translations TranslationsConfig `json:"translations"`
	Combine      CombineConfig      `json:"combine"`
	HadithSource HadithSourceConfig `json:"hadith_source"`

	Verbose bool `json:"verbose,omitempty"`
}

// FontsConfig selects the Arabic script variant and the font files used for rendering.
type FontsConfig struct {
	Arabic               string            `json:"arabic,omitempty" validate:"omitempty,oneof=indopak muhammadi pdms qalam"`
	Urdu                 string            `json:"urdu,omitempty"`
	EnglishFontPath      string            `json:"english_font_path,omitempty"`
	AvailableArabicFonts map[string]string `json:"available_arabic_fonts,omitempty"`
	AvailableUrduFonts   map[string]string `json:"available_urdu_fonts,omitempty"`
}

// TranslationsConfig names the translation columns used for ayahs.
type TranslationsConfig struct {
	Urdu    string `json:"urdu,omitempty"`
	English string `json:"english,omitempty"`
}

// CombineConfig overrides the ayah combination policy.
type CombineConfig struct {
	MinLength int `json:"min_length,omitempty" validate:"gte=0"`
	MaxLength int `json:"max_length,omitempty" validate:"gte=0"`
	MaxCount  int `json:"max_count,omitempty" validate:"gte=0"`
}

// HadithSourceConfig configures where hadiths come from.
type HadithSourceConfig struct {
	Mode          string              `json:"mode,omitempty" validate:"omitempty,oneof=local online"`
	Local         LocalSourceConfig   `json:"local"`
	Online        OnlineSourceConfig  `json:"online"`
	AITranslation AITranslationConfig `json:"ai_translation"`
	MaxAttempts   int                 `json:"max_attempts,omitempty" validate:"gte=0"`
}

// LocalSourceConfig points at the local hadith database.
type LocalSourceConfig struct {
	DatabasePath string `json:"database_path,omitempty"`
}

// OnlineSourceConfig configures the remote scrapers.
type OnlineSourceConfig struct {
	Enabled              bool   `json:"enabled,omitempty"`
	Collection           string `json:"collection,omitempty"`
	TimeoutSeconds       int    `json:"timeout,omitempty" validate:"gte=0"`
	FallbackToLocal      *bool  `json:"fallback_to_local,omitempty"`
	MinRequestIntervalMS int    `json:"min_request_interval_ms,omitempty" validate:"gte=0"`
	UseBrowser           bool   `json:"use_browser,omitempty"`
	CacheTTLHours        int    `json:"cache_ttl_hours,omitempty" validate:"gte=0"`
}

// AITranslationConfig toggles AI gap-filling of English translations.
type AITranslationConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Model   string `json:"model,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Combine.MaxLength > 0 && c.Combine.MinLength > c.Combine.MaxLength {
		return fmt.Errorf("config error: 'combine.min_length' must not exceed 'combine.max_length'")
	}

	if c.Fonts.EnglishFontPath != "" {
		if _, err := os.Stat(c.Fonts.EnglishFontPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: english font not found: %s", c.Fonts.EnglishFontPath)
		}
	}

	return nil
}

// Defaults returns the built-in configuration. Values mirror the original
// config.json shipped with the tool.
func Defaults() Config {
	fallback := true
	return Config{
		DatabasePath: "content.sqlite3",
		StateFile:    "state.json",
		OutputDir:    "output",
		ReviewFile:   "review.yaml",
		Fonts: FontsConfig{
			Arabic: "pdms",
			Urdu:   "jameelnoorinastaleeq",
			AvailableArabicFonts: map[string]string{
				"pdms": "fonts/pdms.ttf",
			},
			AvailableUrduFonts: map[string]string{
				"jameelnoorinastaleeq": "fonts/jameelnoorinastaleeq.ttf",
			},
		},
		Translations: TranslationsConfig{
			Urdu:    "Maududi",
			English: "MaududiEn",
		},
		Combine: CombineConfig{
			MinLength: 350,
			MaxLength: 2000,
			MaxCount:  3,
		},
		HadithSource: HadithSourceConfig{
			Mode: ModeLocal,
			Online: OnlineSourceConfig{
				Collection:           "mishkat",
				TimeoutSeconds:       10,
				FallbackToLocal:      &fallback,
				MinRequestIntervalMS: 1000,
				CacheTTLHours:        24 * 7,
			},
			AITranslation: AITranslationConfig{
				Model: "gemini-1.5-flash",
			},
			MaxAttempts: 10,
		},
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabasePath == "" {
		result.DatabasePath = defaults.DatabasePath
	}
	if result.StateFile == "" {
		result.StateFile = defaults.StateFile
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.ReviewFile == "" {
		result.ReviewFile = defaults.ReviewFile
	}
	if result.Fonts.Arabic == "" {
		result.Fonts.Arabic = defaults.Fonts.Arabic
	}
	if result.Fonts.Urdu == "" {
		result.Fonts.Urdu = defaults.Fonts.Urdu
	}
	if result.Fonts.EnglishFontPath == "" {
		result.Fonts.EnglishFontPath = defaults.Fonts.EnglishFontPath
	}
	if len(result.Fonts.AvailableArabicFonts) == 0 {
		result.Fonts.AvailableArabicFonts = defaults.Fonts.AvailableArabicFonts
	}
	if len(result.Fonts.AvailableUrduFonts) == 0 {
		result.Fonts.AvailableUrduFonts = defaults.Fonts.AvailableUrduFonts
	}
	if result.Translations.Urdu == "" {
		result.Translations.Urdu = defaults.Translations.Urdu
	}
	if result.Translations.English == "" {
		result.Translations.English = defaults.Translations.English
	}

	// Int fields: use default if zero
	if result.Combine.MinLength == 0 {
		result.Combine.MinLength = defaults.Combine.MinLength
	}
	if result.Combine.MaxLength == 0 {
		result.Combine.MaxLength = defaults.Combine.MaxLength
	}
	if result.Combine.MaxCount == 0 {
		result.Combine.MaxCount = defaults.Combine.MaxCount
	}

	hs := &result.HadithSource
	if hs.Mode == "" {
		hs.Mode = defaults.HadithSource.Mode
	}
	if hs.Local.DatabasePath == "" {
		hs.Local.DatabasePath = result.DatabasePath
	}
	if hs.Online.Collection == "" {
		hs.Online.Collection = defaults.HadithSource.Online.Collection
	}
	if hs.Online.TimeoutSeconds == 0 {
		hs.Online.TimeoutSeconds = defaults.HadithSource.Online.TimeoutSeconds
	}
	if hs.Online.FallbackToLocal == nil {
		hs.Online.FallbackToLocal = defaults.HadithSource.Online.FallbackToLocal
	}
	if hs.Online.MinRequestIntervalMS == 0 {
		hs.Online.MinRequestIntervalMS = defaults.HadithSource.Online.MinRequestIntervalMS
	}
	if hs.Online.CacheTTLHours == 0 {
		hs.Online.CacheTTLHours = defaults.HadithSource.Online.CacheTTLHours
	}
	if hs.AITranslation.Model == "" {
		hs.AITranslation.Model = defaults.HadithSource.AITranslation.Model
	}
	if hs.MaxAttempts == 0 {
		hs.MaxAttempts = defaults.HadithSource.MaxAttempts
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// RemoteEnabled reports whether the remote scrapers should be used. Online
// mode without online.enabled degrades to local mode.
func (c *Config) RemoteEnabled() bool {
	return c.HadithSource.Mode == ModeOnline && c.HadithSource.Online.Enabled
}

// FallbackToLocal reports whether the local store backs up failing remotes.
func (c *Config) FallbackToLocal() bool {
	f := c.HadithSource.Online.FallbackToLocal
	return f == nil || *f
}

// SourceTimeout is the per-request timeout for remote sources.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.HadithSource.Online.TimeoutSeconds) * time.Second
}

// MinRequestInterval is the client-side spacing between requests to one source.
func (c *Config) MinRequestInterval() time.Duration {
	return time.Duration(c.HadithSource.Online.MinRequestIntervalMS) * time.Millisecond
}

// CacheTTL is how long scraped pages stay fresh in the page cache.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.HadithSource.Online.CacheTTLHours) * time.Hour
}

// ResolveFontPath returns the configured file for a font key, relative to baseDir.
func ResolveFontPath(baseDir string, available map[string]string, key string) string {
	rel, ok := available[key]
	if !ok || rel == "" {
		return ""
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(baseDir, rel)
}
