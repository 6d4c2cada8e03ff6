package redis

import (
	"github.com/rs/zerolog/log"

	"github.com/weegigs/pearls-treats/support"
)

func LiveOptions(cfg support.Config) Options {
	return Options{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Timeout:  cfg.StoreTimeout,
	}
}

// LiveStore connects lazily; the first command dials the server.
func LiveStore(cfg support.Config) (*RedisCounterStore, func(), error) {
	options := LiveOptions(cfg)
	store := NewCounterStore(Client(options))

	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Str("address", options.Address).Msg("failed to close redis client")
		}
	}, nil
}
