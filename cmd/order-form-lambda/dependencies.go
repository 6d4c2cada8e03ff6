package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog/log"

	treats "github.com/weegigs/pearls-treats"
	"github.com/weegigs/pearls-treats/connectors/treatslambda"
	"github.com/weegigs/pearls-treats/stores/dynamo"
	"github.com/weegigs/pearls-treats/stores/redis"
	"github.com/weegigs/pearls-treats/support"
)

func CounterStore(ctx context.Context, cfg support.Config) (treats.CounterStore, func(), error) {
	if cfg.Store == support.DynamoStore {
		return dynamo.LiveStore(ctx, cfg)
	}

	return redis.LiveStore(cfg)
}

func Renderer(store treats.CounterStore, cfg support.Config) *treats.Renderer {
	mode := treats.InitCheckThenSet
	if cfg.AtomicInit {
		mode = treats.InitSetIfAbsent
	}

	logger := log.With().Str("server", cfg.ServerName).Logger()
	return treats.NewRenderer(
		treats.NewVisitCounter(store, cfg.CounterKey, mode),
		treats.ServerName(cfg.ServerName),
		treats.Logger(&logger),
	)
}

var Live = wire.NewSet(CounterStore, Renderer, treatslambda.NewHandler)
