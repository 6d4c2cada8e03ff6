//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/weegigs/pearls-treats/connectors/treatslambda"
	"github.com/weegigs/pearls-treats/support"
)

func live(ctx context.Context, cfg support.Config) (treatslambda.GatewayHandler, func(), error) {
	panic(wire.Build(Live))
}
