package treats

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultCounterKey is the key the visit counter lives under.
const DefaultCounterKey = "counter"

// CounterStore is the slice of a key-value store the visit counter needs.
type CounterStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, value int64) error
	// SetIfAbsent stores value only when key is missing and reports whether it
	// did.
	SetIfAbsent(ctx context.Context, key string, value int64) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

type InitMode int

const (
	// InitCheckThenSet probes for the key and sets it when absent. Concurrent
	// first visits can both observe the key missing.
	InitCheckThenSet InitMode = iota
	// InitSetIfAbsent initialises with a single conditional set.
	InitSetIfAbsent
)

type VisitCounter struct {
	Store CounterStore
	Key   string
	Mode  InitMode
}

func NewVisitCounter(store CounterStore, key string, mode InitMode) *VisitCounter {
	if key == "" {
		key = DefaultCounterKey
	}

	return &VisitCounter{Store: store, Key: key, Mode: mode}
}

// Visit records one visit and returns the stored count read back afterwards.
// Any store failure is returned as a StoreUnavailable.
func (c *VisitCounter) Visit(ctx context.Context) (int64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "record visit")
	defer span.End()
	span.SetAttributes(attribute.String("counter.key", c.Key))

	if err := c.initialize(ctx); err != nil {
		span.RecordError(err)
		return 0, err
	}

	if _, err := c.Store.Increment(ctx, c.Key); err != nil {
		span.RecordError(err)
		return 0, unavailable("increment", c.Key, err)
	}

	value, err := c.Store.Get(ctx, c.Key)
	if err != nil {
		span.RecordError(err)
		return 0, unavailable("get", c.Key, err)
	}

	span.SetAttributes(attribute.Int64("counter.value", value))
	return value, nil
}

func (c *VisitCounter) initialize(ctx context.Context) error {
	if c.Mode == InitSetIfAbsent {
		if _, err := c.Store.SetIfAbsent(ctx, c.Key, 0); err != nil {
			return unavailable("set-if-absent", c.Key, err)
		}
		return nil
	}

	exists, err := c.Store.Exists(ctx, c.Key)
	if err != nil {
		return unavailable("exists", c.Key, err)
	}

	if !exists {
		if err := c.Store.Set(ctx, c.Key, 0); err != nil {
			return unavailable("set", c.Key, err)
		}
	}

	return nil
}
