package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	treats "github.com/weegigs/pearls-treats"
	"github.com/weegigs/pearls-treats/connectors/treatshttp"
	"github.com/weegigs/pearls-treats/stores/dynamo"
	"github.com/weegigs/pearls-treats/stores/redis"
	"github.com/weegigs/pearls-treats/support"
)

func CounterStore(ctx context.Context, cfg support.Config) (treats.CounterStore, func(), error) {
	switch cfg.Store {
	case support.RedisStore:
		return redis.LiveStore(cfg)
	case support.DynamoStore:
		return dynamo.LiveStore(ctx, cfg)
	default:
		return nil, nil, fmt.Errorf("unsupported counter store %q", cfg.Store)
	}
}

func VisitCounter(store treats.CounterStore, cfg support.Config) *treats.VisitCounter {
	mode := treats.InitCheckThenSet
	if cfg.AtomicInit {
		mode = treats.InitSetIfAbsent
	}

	return treats.NewVisitCounter(store, cfg.CounterKey, mode)
}

func Renderer(counter *treats.VisitCounter, cfg support.Config) *treats.Renderer {
	logger := log.With().Str("server", cfg.ServerName).Logger()
	return treats.NewRenderer(counter, treats.ServerName(cfg.ServerName), treats.Logger(&logger))
}

func Registry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

func Handler(renderer *treats.Renderer, store treats.CounterStore, registry *prometheus.Registry, cfg support.Config) http.Handler {
	return treatshttp.WithLogging(treatshttp.NewHandler(
		renderer,
		store,
		treatshttp.Registry(registry),
		treatshttp.HealthTimeout(cfg.StoreTimeout),
	))
}

func NewServer(cfg support.Config, handler http.Handler) *http.Server {
	return &http.Server{Addr: cfg.ListenAddress, Handler: handler}
}

var Live = wire.NewSet(
	CounterStore,
	VisitCounter,
	Renderer,
	Registry,
	Handler,
	NewServer,
)
