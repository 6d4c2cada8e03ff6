package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/weegigs/pearls-treats/support"
)

func run() error {
	cfg, err := support.LoadConfig()
	if err != nil {
		return err
	}
	support.ConfigureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := support.Tracing(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	server, cleanup, err := live(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.ListenAddress).Str("store", string(cfg.Store)).Msg("listening")
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdown)
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("order form server failed")
	}
}
