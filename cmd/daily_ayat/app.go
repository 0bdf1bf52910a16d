package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/ayah"
	"github.com/jonathan/daily-ayat-hadith/internal/config"
	"github.com/jonathan/daily-ayat-hadith/internal/db"
	"github.com/jonathan/daily-ayat-hadith/internal/fetch"
	"github.com/jonathan/daily-ayat-hadith/internal/hadith"
	"github.com/jonathan/daily-ayat-hadith/internal/llm"
	"github.com/jonathan/daily-ayat-hadith/internal/logging"
	"github.com/jonathan/daily-ayat-hadith/internal/observability"
	"github.com/jonathan/daily-ayat-hadith/internal/progress"
	"github.com/jonathan/daily-ayat-hadith/internal/render"
	"github.com/jonathan/daily-ayat-hadith/internal/sources"
	"github.com/jonathan/daily-ayat-hadith/internal/translate"
)

const (
	defaultConfigFile = "config.json"
	// collectionName is the display name used in hadith references and file names
	collectionName = "Mishkaat"
)

// settings is the merged configuration plus the directory relative font
// paths are resolved against.
type settings struct {
	cfg     config.Config
	baseDir string
}

// loadSettings reads the config file, applies environment and flag overrides,
// fills defaults and validates the result.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	var cfg config.Config
	baseDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if abs, err := filepath.Abs(path); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = os.Getenv("DATABASE_URL")
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &settings{cfg: cfg, baseDir: baseDir}, nil
}

// app holds the components shared by the commands.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *db.DB
	hadiths  *db.DB
	tracker  *progress.Tracker
	combiner *ayah.Combiner
	resolver *hadith.Resolver
	printer  *observability.Printer
	closers  []func() error
}

// openApp connects the corpus, opens the progress file and assembles the
// hadith resolution chain.
func openApp(ctx context.Context, s *settings, logger *zap.Logger, out io.Writer) (*app, error) {
	cfg := s.cfg
	logger = logging.OrNop(logger)
	a := &app{cfg: cfg, logger: logger, printer: observability.NewPrinter(out)}

	dbOpts := &db.Options{
		ArabicFont:    cfg.Fonts.Arabic,
		UrduColumn:    cfg.Translations.Urdu,
		EnglishColumn: cfg.Translations.English,
	}
	store, err := db.Connect(ctx, cfg.DatabasePath, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	a.store = store
	a.hadiths = store
	a.closers = append(a.closers, store.Close)

	if local := cfg.HadithSource.Local.DatabasePath; local != "" && local != cfg.DatabasePath {
		hadiths, err := db.Connect(ctx, local, dbOpts)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open hadith database: %w", err)
		}
		a.hadiths = hadiths
		a.closers = append(a.closers, hadiths.Close)
	}

	a.tracker, err = progress.Open(cfg.StateFile, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.combiner = ayah.NewCombiner(store, ayah.Policy{
		MinLen:   cfg.Combine.MinLength,
		MaxLen:   cfg.Combine.MaxLength,
		MaxCount: cfg.Combine.MaxCount,
	}, logger)

	a.resolver, err = a.buildResolver(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) buildResolver(ctx context.Context) (*hadith.Resolver, error) {
	cfg := a.cfg
	if cfg.HadithSource.Mode == config.ModeOnline && !cfg.HadithSource.Online.Enabled {
		a.logger.Warn("online hadith mode selected but not enabled, using local mode")
	}

	var primary, secondary hadith.RemoteSource
	if cfg.RemoteEnabled() {
		collection := cfg.HadithSource.Online.Collection
		primary = sources.NewSunnah(a.newFetcher(), collection, a.logger)
		secondary = sources.NewAlHadees(a.newFetcher(), collection, a.logger)
	}

	var translator hadith.Translator
	if cfg.RemoteEnabled() && cfg.HadithSource.AITranslation.Enabled {
		t, err := a.newTranslator(ctx)
		if err != nil {
			a.logger.Warn("AI translation disabled", zap.Error(err))
		} else {
			translator = t
		}
	}

	return hadith.NewResolver(hadith.Options{
		RemoteEnabled:   cfg.RemoteEnabled(),
		FallbackToLocal: cfg.FallbackToLocal(),
		Collection:      cfg.HadithSource.Online.Collection,
		Mode:            cfg.HadithSource.Mode,
	}, primary, secondary, a.hadiths, translator, a.logger)
}

// newFetcher returns a fetcher with its own throttle, so every source is
// spaced independently.
func (a *app) newFetcher() *fetch.CachedFetcher {
	opts := fetch.DefaultOptions()
	if timeout := a.cfg.SourceTimeout(); timeout > 0 {
		opts.Timeout = timeout
	}
	return fetch.NewCachedFetcher(fetch.CachedFetcherConfig{
		Cache:       a.store,
		MinInterval: a.cfg.MinRequestInterval(),
		CacheTTL:    a.cfg.CacheTTL(),
		UseBrowser:  a.cfg.HadithSource.Online.UseBrowser,
		Options:     opts,
		Logger:      a.logger,
	})
}

func (a *app) newTranslator(_ context.Context) (*translate.Translator, error) {
	keys := llm.APIKeysFromEnv()
	if len(keys) == 0 {
		return nil, fmt.Errorf("%s is not set", llm.APIKeyEnv)
	}
	model := a.cfg.HadithSource.AITranslation.Model
	client, err := llm.NewRotatingClient(keys, model, llm.GeminiFactory(llm.DefaultConfig().WithModel(model)), a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return translate.New(client, a.logger), nil
}

// newRenderer loads the configured fonts.
func (a *app) newRenderer(baseDir string) (*render.Renderer, error) {
	fonts := a.cfg.Fonts
	return render.New(render.Options{
		ArabicFontPath:  config.ResolveFontPath(baseDir, fonts.AvailableArabicFonts, fonts.Arabic),
		UrduFontPath:    config.ResolveFontPath(baseDir, fonts.AvailableUrduFonts, fonts.Urdu),
		EnglishFontPath: fonts.EnglishFontPath,
		HijriOffsetDays: a.cfg.HijriOffsetDays,
	}, a.logger)
}

// Close releases every connection the app opened.
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("failed to close resources", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// newLogger builds the command logger.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// parseDate reads a YYYY-MM-DD flag value in local time. Empty means today.
func parseDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}
	if err := progress.ValidateDate(value); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(progress.DateLayout, value, now.Location())
}
