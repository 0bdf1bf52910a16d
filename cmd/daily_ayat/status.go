package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show the progress cursor, corpus size and hadith source configuration",
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCommand)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
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
	return runStatus(ctx, s, cmd.OutOrStdout(), logger)
}

func runStatus(ctx context.Context, s *settings, out io.Writer, logger *zap.Logger) error {
	a, err := openApp(ctx, s, logger, out)
	if err != nil {
		return err
	}
	defer a.Close()

	a.printer.PrintProgress(a.tracker.State(), a.tracker.Path())
	a.printer.PrintSourceInfo(a.resolver.SourceInfo())

	verses, err := a.store.TotalVerses(ctx)
	if err != nil {
		return err
	}
	hadiths, err := a.hadiths.TotalHadiths(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Corpus: %d ayahs, %d hadiths (%s)\n", verses, hadiths, a.store.Dialect())
	return nil
}
