package treats

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	multiServerBanner  = "powered by a load balancer!"
	singleServerBanner = "Sorry, our website is only powered by a single server."
	unavailableNotice  = "We will be taking orders once we have Micro Services!"
)

// memoryStore is a CounterStore backed by miniredis' in-process state so
// tests can seed and inspect values directly.
type memoryStore struct {
	server *miniredis.Miniredis
}

func (m *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	return m.server.Exists(key), nil
}

func (m *memoryStore) Set(_ context.Context, key string, value int64) error {
	return m.server.Set(key, strconv.FormatInt(value, 10))
}

func (m *memoryStore) SetIfAbsent(_ context.Context, key string, value int64) (bool, error) {
	if m.server.Exists(key) {
		return false, nil
	}
	return true, m.server.Set(key, strconv.FormatInt(value, 10))
}

func (m *memoryStore) Increment(_ context.Context, key string) (int64, error) {
	value, err := m.server.Incr(key, 1)
	return int64(value), err
}

func (m *memoryStore) Get(_ context.Context, key string) (int64, error) {
	value, err := m.server.Get(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}

func (m *memoryStore) Ping(context.Context) error { return nil }

func (m *memoryStore) Close() error { return nil }

type failingStore struct {
	err error
}

func (f failingStore) Exists(context.Context, string) (bool, error) { return false, f.err }
func (f failingStore) Set(context.Context, string, int64) error { return f.err }
func (f failingStore) SetIfAbsent(context.Context, string, int64) (bool, error) { return false, f.err }
func (f failingStore) Increment(context.Context, string) (int64, error) { return 0, f.err }
func (f failingStore) Get(context.Context, string) (int64, error) { return 0, f.err }
func (f failingStore) Ping(context.Context) error { return f.err }
func (f failingStore) Close() error { return nil }

var connectionRefused = errors.New("dial tcp 192.168.33.35:6379: connect: connection refused")

func newMemoryStore(t *testing.T) *memoryStore {
	return &memoryStore{server: miniredis.RunT(t)}
}

func forwarded() http.Header {
	headers := http.Header{}
	headers.Set(ForwardedForHeader, "10.0.0.1")
	return headers
}

func TestClassifyTopology(t *testing.T) {
	assert.Equal(t, SingleServer, ClassifyTopology(http.Header{}))
	assert.Equal(t, SingleServer, ClassifyTopology(nil))
	assert.Equal(t, MultiServer, ClassifyTopology(forwarded()))

	empty := http.Header{}
	empty["X-Forwarded-For"] = []string{""}
	assert.Equal(t, MultiServer, ClassifyTopology(empty))

	other := http.Header{}
	other.Set("X-Forwarded-Host", "example.com")
	assert.Equal(t, SingleServer, ClassifyTopology(other))
}

func TestRenderer(t *testing.T) {
	ctx := context.Background()

	t.Run("single server without a counter", func(t *testing.T) {
		store := newMemoryStore(t)
		renderer := NewRenderer(NewVisitCounter(store, DefaultCounterKey, InitCheckThenSet))

		document, err := renderer.Render(ctx, http.Header{})
		require.Nil(t, err)

		body := string(document.Body)
		assert.Equal(t, SingleServer, document.Topology)
		assert.Contains(t, body, `<div class="alert alert-danger" role="alert">`)
		assert.Contains(t, body, singleServerBanner)
		assert.NotContains(t, body, multiServerBanner)
		assert.Contains(t, body, "You are visitor 1! Please place your order.")

		value, err := store.Get(ctx, DefaultCounterKey)
		require.Nil(t, err)
		assert.Equal(t, int64(1), value)
	})

	t.Run("multi server with an existing counter", func(t *testing.T) {
		store := newMemoryStore(t)
		require.Nil(t, store.Set(ctx, DefaultCounterKey, 5))
		renderer := NewRenderer(NewVisitCounter(store, DefaultCounterKey, InitCheckThenSet), ServerName("web-2"))

		document, err := renderer.Render(ctx, forwarded())
		require.Nil(t, err)

		body := string(document.Body)
		assert.Equal(t, MultiServer, document.Topology)
		assert.Equal(t, 2, strings.Count(body, `<div class="alert alert-info" role="alert">`))
		assert.Contains(t, body, multiServerBanner)
		assert.Contains(t, body, "<strong>web-2</strong> frontend server.")
		assert.NotContains(t, body, singleServerBanner)
		assert.Contains(t, body, "You are visitor 6!")

		value, err := store.Get(ctx, DefaultCounterKey)
		require.Nil(t, err)
		assert.Equal(t, int64(6), value)
	})

	t.Run("store unavailable", func(t *testing.T) {
		renderer := NewRenderer(NewVisitCounter(failingStore{err: connectionRefused}, DefaultCounterKey, InitCheckThenSet))

		for _, headers := range []http.Header{{}, forwarded()} {
			document, err := renderer.Render(ctx, headers)
			require.Nil(t, err)

			body := string(document.Body)
			assert.False(t, document.Counter.Available)
			assert.Contains(t, body, unavailableNotice)
			assert.NotContains(t, body, "<form>")
			assert.NotContains(t, body, "form-control")
			assert.NotContains(t, body, "You are visitor")
		}
	})

	t.Run("counts serialized renders", func(t *testing.T) {
		store := newMemoryStore(t)
		renderer := NewRenderer(NewVisitCounter(store, "visits", InitCheckThenSet))

		for i := 0; i < 12; i++ {
			_, err := renderer.Render(ctx, http.Header{})
			require.Nil(t, err)
		}

		value, err := store.Get(ctx, "visits")
		require.Nil(t, err)
		assert.Equal(t, int64(12), value)
	})

	t.Run("renders the order form", func(t *testing.T) {
		renderer := NewRenderer(NewVisitCounter(newMemoryStore(t), DefaultCounterKey, InitSetIfAbsent))

		document, err := renderer.Render(ctx, http.Header{})
		require.Nil(t, err)

		body := string(document.Body)
		assert.Contains(t, body, "Pet's Name")
		assert.Contains(t, body, "Pet's Address")
		assert.Contains(t, body, "Fish Bites")
		assert.Contains(t, body, "Vegan Selection")
		assert.Contains(t, body, "Chocolate Dessert")
		assert.Contains(t, body, `<button type="submit" class="btn btn-primary">Order</button>`)
		assert.NotContains(t, body, unavailableNotice)
	})

	t.Run("banner markup is stable", func(t *testing.T) {
		store := newMemoryStore(t)
		renderer := NewRenderer(NewVisitCounter(store, DefaultCounterKey, InitCheckThenSet), ServerName("web-1"))

		for _, topology := range []Topology{SingleServer, MultiServer} {
			var first, second bytes.Buffer
			require.Nil(t, renderer.RenderBanner(&first, topology))
			require.Nil(t, renderer.RenderBanner(&second, topology))
			assert.Equal(t, first.String(), second.String())

			headers := http.Header{}
			if topology == MultiServer {
				headers = forwarded()
			}
			document, err := renderer.Render(ctx, headers)
			require.Nil(t, err)
			assert.Contains(t, string(document.Body), first.String())
		}
	})
}

func TestVisitCounter(t *testing.T) {
	ctx := context.Background()

	t.Run("classifies failures as store unavailable", func(t *testing.T) {
		counter := NewVisitCounter(failingStore{err: connectionRefused}, "", InitCheckThenSet)

		_, err := counter.Visit(ctx)
		assert.True(t, errors.Is(err, ErrStoreUnavailable))
		assert.True(t, errors.Is(err, connectionRefused))

		var unavailable *StoreUnavailable
		if assert.True(t, errors.As(err, &unavailable)) {
			assert.Equal(t, "exists", unavailable.Operation)
			assert.Equal(t, DefaultCounterKey, unavailable.Key)
		}
	})

	t.Run("atomic initialization keeps an existing value", func(t *testing.T) {
		store := newMemoryStore(t)
		require.Nil(t, store.Set(ctx, DefaultCounterKey, 41))

		value, err := NewVisitCounter(store, DefaultCounterKey, InitSetIfAbsent).Visit(ctx)
		require.Nil(t, err)
		assert.Equal(t, int64(42), value)
	})
}

func TestMemoryStoreValidation(t *testing.T) {
	suite := NewCounterStoreValidationSuite(context.Background(), newMemoryStore(t))
	suite.Run(t)
}
