package redis

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	treats "github.com/weegigs/pearls-treats"
	"github.com/weegigs/pearls-treats/support"
)

func miniredisStore(t *testing.T) (*miniredis.Miniredis, *RedisCounterStore) {
	server := miniredis.RunT(t)
	store := NewCounterStore(Client(Options{Address: server.Addr(), Timeout: time.Second}))
	t.Cleanup(func() { _ = store.Close() })

	return server, store
}

func TestRedisCounterStore(t *testing.T) {
	ctx := context.Background()
	_, store := miniredisStore(t)

	t.Run("redis counter store validation", func(t *testing.T) {
		suite := treats.NewCounterStoreValidationSuite(ctx, store)
		suite.Run(t)
	})

	t.Run("stores counters as redis strings", func(t *testing.T) {
		server, store := miniredisStore(t)

		require.Nil(t, store.Set(ctx, "counter", 0))
		_, err := store.Increment(ctx, "counter")
		require.Nil(t, err)

		value, err := server.Get("counter")
		require.Nil(t, err)
		assert.Equal(t, "1", value)
	})

	t.Run("get reports a missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "never-set")
		assert.NotNil(t, err)
	})

	t.Run("renders against redis", func(t *testing.T) {
		server, store := miniredisStore(t)
		require.Nil(t, server.Set("counter", "5"))

		renderer := treats.NewRenderer(treats.NewVisitCounter(store, treats.DefaultCounterKey, treats.InitCheckThenSet))
		headers := http.Header{}
		headers.Set(treats.ForwardedForHeader, "203.0.113.9")

		document, err := renderer.Render(ctx, headers)
		require.Nil(t, err)
		assert.Contains(t, string(document.Body), "You are visitor 6!")

		value, err := server.Get("counter")
		require.Nil(t, err)
		assert.Equal(t, "6", value)
	})
}

func TestRedisUnavailable(t *testing.T) {
	ctx := context.Background()
	server, store := miniredisStore(t)
	server.Close()

	_, err := treats.NewVisitCounter(store, treats.DefaultCounterKey, treats.InitCheckThenSet).Visit(ctx)
	assert.True(t, errors.Is(err, treats.ErrStoreUnavailable))
	assert.NotNil(t, store.Ping(ctx))

	renderer := treats.NewRenderer(treats.NewVisitCounter(store, treats.DefaultCounterKey, treats.InitCheckThenSet))
	document, err := renderer.Render(ctx, http.Header{})
	require.Nil(t, err)
	assert.Contains(t, string(document.Body), "We will be taking orders once we have Micro Services!")
	assert.NotContains(t, string(document.Body), "<form>")
}

func TestLiveStore(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := support.DefaultConfig()
	cfg.RedisAddress = server.Addr()

	store, cleanup, err := LiveStore(cfg)
	require.Nil(t, err)
	defer cleanup()

	assert.Nil(t, store.Ping(context.Background()))
}

func TestRedisContainerStore(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	store, tearDown, err := RedisTestStore(ctx)
	if err != nil {
		t.Logf("failed to create test store. %+v", err)
		t.FailNow()
	}

	defer tearDown()

	suite := treats.NewCounterStoreValidationSuite(ctx, store)
	suite.Run(t)
}
