package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/observability"
	"github.com/jonathan/daily-ayat-hadith/internal/progress"
)

var resetCommand = &cobra.Command{
	Use:   "reset",
	Short: "Reset the progress file to the initial cursor",
	Long: `Overwrites the progress file with the initial cursor: never run, before the first
ayah and the first hadith. Use it to recover from a corrupt progress file.`,
	RunE: runResetCmd,
}

var resetState string

func init() {
	resetCommand.Flags().StringVar(&resetState, "state", "", "Progress file (overrides state_file)")
	rootCmd.AddCommand(resetCommand)
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("state") {
		s.cfg.StateFile = resetState
	}
	logger, err := newLogger(s.cfg)
	if err != nil {
		return err
	}
	return runReset(s.cfg.StateFile, cmd.OutOrStdout(), logger)
}

// runReset rewrites the progress file without reading it, so a corrupt file
// can be replaced.
func runReset(path string, out io.Writer, logger *zap.Logger) error {
	tracker, err := progress.Create(path, logger)
	if err != nil {
		return err
	}
	observability.NewPrinter(out).PrintProgress(tracker.State(), tracker.Path())
	return nil
}
