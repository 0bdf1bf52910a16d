package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/pipeline"
)

var (
	previewCommand = &cobra.Command{
		Use:   "preview",
		Short: "Show the ayah and hadith the next run would publish",
		Long:  "Selects the next verse unit and hadith without reviewing, rendering or advancing the progress file.",
		RunE:  runPreviewCmd(previewBoth),
	}
	previewAyahCommand = &cobra.Command{
		Use:   "preview-ayah",
		Short: "Show the verse unit the next run would publish",
		RunE:  runPreviewCmd(previewAyah),
	}
	previewHadithCommand = &cobra.Command{
		Use:   "preview-hadith",
		Short: "Show the hadith the next run would publish",
		RunE:  runPreviewCmd(previewHadith),
	}
)

type previewKind int

const (
	previewBoth previewKind = iota
	previewAyah
	previewHadith
)

func init() {
	rootCmd.AddCommand(previewCommand, previewAyahCommand, previewHadithCommand)
}

func runPreviewCmd(kind previewKind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
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
		return runPreview(ctx, s, kind, cmd.OutOrStdout(), logger)
	}
}

// runPreview prints the next content. Nothing is written.
func runPreview(ctx context.Context, s *settings, kind previewKind, out io.Writer, logger *zap.Logger) error {
	a, err := openApp(ctx, s, logger, out)
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.tracker.State()
	switch kind {
	case previewAyah:
		start, err := a.store.NextPosition(ctx, state.LastPosition())
		if err != nil {
			return err
		}
		unit, err := a.combiner.Combine(ctx, start)
		if err != nil {
			return err
		}
		a.printer.PrintVerseUnit(unit)
	case previewHadith:
		h, err := a.resolver.GetNext(ctx, state.LastHadith, s.cfg.HadithSource.MaxAttempts)
		if err != nil {
			return err
		}
		a.printer.PrintHadith(h)
	default:
		result, err := pipeline.Preview(ctx, pipeline.Dependencies{
			Tracker:   a.tracker,
			Positions: a.store,
			Combiner:  a.combiner,
			Hadiths:   a.resolver,
			Logger:    a.logger,
		}, pipeline.RunOptions{
			Collection:  collectionName,
			MaxAttempts: s.cfg.HadithSource.MaxAttempts,
		})
		if err != nil {
			return err
		}
		a.printer.PrintVerseUnit(result.Ayah)
		a.printer.PrintHadith(result.Hadith)
	}
	return nil
}
