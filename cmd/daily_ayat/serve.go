package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/daily-ayat-hadith/internal/pipeline"
	"github.com/jonathan/daily-ayat-hadith/internal/server"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves progress status, previews, on-demand generation (without the review prompt)
and the published images over HTTP.`,
	RunE: runServeCmd,
}

var serveAddr string

func init() {
	serveCommand.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCommand)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(s.cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, s, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	renderer, err := a.newRenderer(s.baseDir)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr: serveAddr,
		Deps: pipeline.Dependencies{
			Tracker:   a.tracker,
			Positions: a.store,
			Combiner:  a.combiner,
			Hadiths:   a.resolver,
			Renderer:  renderer,
			History:   a.store,
			Logger:    a.logger,
		},
		Options: pipeline.RunOptions{
			OutputDir:   s.cfg.OutputDir,
			Collection:  collectionName,
			MaxAttempts: s.cfg.HadithSource.MaxAttempts,
		},
		Sources: a.resolver.SourceInfo(),
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
