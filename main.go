package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"jukebox/cmd"
	"jukebox/config"
	"jukebox/services"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("Jukebox stopped")
	}
}

func run(args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setupLogging(cfg.Verbose)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := services.NewCatalogBuilder(cfg.Extensions, cfg.ProbeWorkers, services.NewMetadataResolver())
	builder.Progress = os.Stderr

	catalog, err := builder.Build(ctx, cfg.SourcePath)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}

	return cmd.StartWebServer(ctx, cfg, catalog)
}

func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
