package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/pearls-treats/support"
)

func main() {
	cfg, err := support.LoadConfig()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	support.ConfigureLogging(cfg)

	shutdownTracing, err := support.Tracing(context.Background(), cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to configure tracing")
		os.Exit(1)
	}
	defer shutdownTracing()

	handler, cleanup, err := live(context.Background(), cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to configure handler")
		os.Exit(1)
	}
	defer cleanup()

	lambda.Start(handler)
}
