package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/pipeline"
	"github.com/jonathan/daily-ayat-hadith/internal/review"
)

var generateCommand = &cobra.Command{
	Use:   "generate",
	Short: "Generate the ayah and hadith images for a date",
	Long: `Selects the next verse unit and the next acceptable hadith, waits for review, renders
both images and advances the progress file.

A date that was already generated is skipped. Cancelling at review writes nothing.`,
	RunE: runGenerateCmd,
}

var (
	generateDate   string
	generateYes    bool
	generateOutput string
	generateState  string
	generateDB     string
	generateMode   string
)

func init() {
	generateCommand.Flags().StringVarP(&generateDate, "date", "d", "", "Date to generate for (YYYY-MM-DD, defaults to today)")
	generateCommand.Flags().BoolVarP(&generateYes, "yes", "y", false, "Skip the review prompt")
	generateCommand.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory (overrides output_dir)")
	generateCommand.Flags().StringVar(&generateState, "state", "", "Progress file (overrides state_file)")
	generateCommand.Flags().StringVar(&generateDB, "db", "", "Corpus database path or postgres URL (overrides database_path)")
	generateCommand.Flags().StringVar(&generateMode, "mode", "", "Hadith source mode: local or online (overrides hadith_source.mode)")

	rootCmd.AddCommand(generateCommand)
}

// generateOptions are the per-run inputs of the generate command.
type generateOptions struct {
	Date        time.Time
	AutoApprove bool
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("output") {
		s.cfg.OutputDir = generateOutput
	}
	if cmd.Flags().Changed("state") {
		s.cfg.StateFile = generateState
	}
	if cmd.Flags().Changed("db") {
		s.cfg.DatabasePath = generateDB
	}
	if cmd.Flags().Changed("mode") {
		s.cfg.HadithSource.Mode = generateMode
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	date, err := parseDate(generateDate, time.Now())
	if err != nil {
		return err
	}

	logger, err := newLogger(s.cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = runGenerate(ctx, s, generateOptions{Date: date, AutoApprove: generateYes}, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	return err
}

// runGenerate wires the components and runs the pipeline once.
func runGenerate(ctx context.Context, s *settings, opts generateOptions, in io.Reader, out io.Writer, logger *zap.Logger) (*pipeline.Result, error) {
	a, err := openApp(ctx, s, logger, out)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	renderer, err := a.newRenderer(s.baseDir)
	if err != nil {
		return nil, err
	}

	var gate review.Gate = review.AutoApprove{}
	if !opts.AutoApprove {
		gate = review.NewFileGate(s.cfg.ReviewFile, in, out, a.logger)
	}

	if s.cfg.Verbose {
		a.printer.PrintSourceInfo(a.resolver.SourceInfo())
	}

	deps := pipeline.Dependencies{
		Tracker:   a.tracker,
		Positions: a.store,
		Combiner:  a.combiner,
		Hadiths:   a.resolver,
		Gate:      gate,
		Renderer:  renderer,
		History:   a.store,
		Logger:    a.logger,
		Printer:   a.printer,
	}
	runOpts := pipeline.RunOptions{
		Date:        opts.Date,
		OutputDir:   s.cfg.OutputDir,
		Collection:  collectionName,
		MaxAttempts: s.cfg.HadithSource.MaxAttempts,
		Verbose:     s.cfg.Verbose,
		OnProgress: func(event pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(out, "[%s] %s\n", event.Stage, event.Message)
		},
	}

	result, err := pipeline.Run(ctx, deps, runOpts)
	if err != nil {
		return nil, err
	}

	switch {
	case result.Skipped:
		a.printer.PrintAlreadyGenerated(result.Date, a.tracker.State())
	case result.Cancelled:
		_, _ = fmt.Fprintln(out, "Cancelled at review; nothing was written.")
	default:
		_, _ = fmt.Fprintf(out, "Generated %d images in %s\n", len(result.Files), filepath.Dir(result.Manifest))
	}
	return result, nil
}
