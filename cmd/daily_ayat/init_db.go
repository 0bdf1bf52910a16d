package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/db"
)

var initDBCommand = &cobra.Command{
	Use:   "init-db",
	Short: "Create the corpus tables and optionally import a corpus file",
	Long: `Creates the surah, ayah, translations, mishkaat and page cache tables when missing.

With --seed, a corpus JSON file (surahs, verses, hadiths) is validated and upserted.`,
	RunE: runInitDBCmd,
}

var (
	initDBSeed string
	initDBPath string
)

func init() {
	initDBCommand.Flags().StringVar(&initDBSeed, "seed", "", "Corpus JSON file to import")
	initDBCommand.Flags().StringVar(&initDBPath, "db", "", "Corpus database path or postgres URL (overrides database_path)")
	rootCmd.AddCommand(initDBCommand)
}

func runInitDBCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		s.cfg.DatabasePath = initDBPath
	}
	logger, err := newLogger(s.cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return runInitDB(ctx, s, initDBSeed, cmd.OutOrStdout(), logger)
}

// runInitDB prepares the corpus database and imports seed when given.
func runInitDB(ctx context.Context, s *settings, seed string, out io.Writer, logger *zap.Logger) error {
	store, err := db.Connect(ctx, s.cfg.DatabasePath, &db.Options{
		ArabicFont:    s.cfg.Fonts.Arabic,
		UrduColumn:    s.cfg.Translations.Urdu,
		EnglishColumn: s.cfg.Translations.English,
	})
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if seed == "" {
		_, _ = fmt.Fprintf(out, "Schema ready in %s\n", s.cfg.DatabasePath)
		return nil
	}

	corpus, err := db.LoadCorpusFile(seed)
	if err != nil {
		return err
	}
	if err := store.ImportCorpus(ctx, corpus); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("imported corpus",
			zap.String("seed", seed),
			zap.Int("surahs", len(corpus.Surahs)),
			zap.Int("verses", len(corpus.Verses)),
			zap.Int("hadiths", len(corpus.Hadiths)),
		)
	}
	_, _ = fmt.Fprintf(out, "Imported %d surahs, %d verses and %d hadiths into %s\n",
		len(corpus.Surahs), len(corpus.Verses), len(corpus.Hadiths), s.cfg.DatabasePath)
	return nil
}
