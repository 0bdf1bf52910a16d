package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/db"
	"github.com/jonathan/daily-ayat-hadith/internal/observability"
)

var historyCommand = &cobra.Command{
	Use:   "history",
	Short: "List recently published runs",
	RunE:  runHistoryCmd,
}

var historyLimit int

func init() {
	historyCommand.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
	rootCmd.AddCommand(historyCommand)
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(s.cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return runHistory(ctx, s, historyLimit, cmd.OutOrStdout(), logger)
}

// runHistory prints the run history. It does not need the progress file.
func runHistory(ctx context.Context, s *settings, limit int, out io.Writer, logger *zap.Logger) error {
	store, err := db.Connect(ctx, s.cfg.DatabasePath, &db.Options{
		ArabicFont:    s.cfg.Fonts.Arabic,
		UrduColumn:    s.cfg.Translations.Urdu,
		EnglishColumn: s.cfg.Translations.English,
	})
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if limit <= 0 {
		limit = 10
	}
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	logger.Debug("listed runs", zap.Int("count", len(runs)))
	observability.NewPrinter(out).PrintRuns(runs)
	return nil
}
