package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/pdegbridge/internal/bridge"
	"github.com/danmuck/pdegbridge/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig(os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdegbridge: %v\n", err)
		return 1
	}

	opts := logging.DefaultOptions(logging.ProfileRuntime)
	opts.Level = cfg.Log.Level
	opts.Format = cfg.Log.Format
	opts.File = cfg.Log.File
	closer, err := logging.Configure(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdegbridge: %v\n", err)
		return 1
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bridge.NewService(cfg).Run(ctx); err != nil {
		if errors.Is(err, bridge.ErrFatal) {
			log.Error().Err(err).Msg("fatal error; exiting for supervisor restart")
		} else {
			log.Error().Err(err).Msg("bridge stopped")
		}
		return 1
	}
	log.Info().Msg("bridge stopped")
	return 0
}
