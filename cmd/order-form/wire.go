//go:build wireinject
// +build wireinject

package main

import (
	"context"
	"net/http"

	"github.com/google/wire"

	"github.com/weegigs/pearls-treats/support"
)

func live(ctx context.Context, cfg support.Config) (*http.Server, func(), error) {
	panic(wire.Build(Live))
}
