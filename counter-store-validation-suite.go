package treats

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
)

var entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

func NewCounterStoreValidationSuite(ctx context.Context, store CounterStore) *CounterStoreValidationSuite {
	faker := faker.New()
	return &CounterStoreValidationSuite{
		store: store,
		ctx:   ctx,
		faker: faker,
	}
}

// CounterStoreValidationSuite checks the behaviour every CounterStore backend
// must share.
type CounterStoreValidationSuite struct {
	store CounterStore
	ctx   context.Context
	faker faker.Faker
}

func (s *CounterStoreValidationSuite) Run(t *testing.T) {
	t.Run("pings the store", s.Pings)
	t.Run("reports a missing key as absent", s.MissingKeyIsAbsent)
	t.Run("sets and reads a value", s.SetsAndGets)
	t.Run("increments a value", s.Increments)
	t.Run("only sets an absent key once", s.SetIfAbsent)
	t.Run("counts serialized visits", s.CountsVisits)
	t.Run("counts visits with atomic initialization", s.CountsVisitsAtomically)
}

func (s *CounterStoreValidationSuite) MakeTestKey() string {
	return strings.Join([]string{"go-test:", ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()}, "")
}

func (s *CounterStoreValidationSuite) Pings(t *testing.T) {
	assert.Nil(t, s.store.Ping(s.ctx))
}

func (s *CounterStoreValidationSuite) MissingKeyIsAbsent(t *testing.T) {
	exists, err := s.store.Exists(s.ctx, s.MakeTestKey())
	if !assert.Nil(t, err) {
		return
	}

	assert.False(t, exists)
}

func (s *CounterStoreValidationSuite) SetsAndGets(t *testing.T) {
	key := s.MakeTestKey()
	value := int64(s.faker.IntBetween(0, 100000))

	if !assert.Nil(t, s.store.Set(s.ctx, key, value)) {
		return
	}

	exists, err := s.store.Exists(s.ctx, key)
	if !assert.Nil(t, err) {
		return
	}
	assert.True(t, exists)

	stored, err := s.store.Get(s.ctx, key)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, value, stored)
}

func (s *CounterStoreValidationSuite) Increments(t *testing.T) {
	key := s.MakeTestKey()
	value := int64(s.faker.IntBetween(0, 100000))

	if !assert.Nil(t, s.store.Set(s.ctx, key, value)) {
		return
	}

	incremented, err := s.store.Increment(s.ctx, key)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, value+1, incremented)

	stored, err := s.store.Get(s.ctx, key)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, value+1, stored)
}

func (s *CounterStoreValidationSuite) SetIfAbsent(t *testing.T) {
	key := s.MakeTestKey()

	set, err := s.store.SetIfAbsent(s.ctx, key, 3)
	if !assert.Nil(t, err) {
		return
	}
	assert.True(t, set)

	set, err = s.store.SetIfAbsent(s.ctx, key, 9)
	if !assert.Nil(t, err) {
		return
	}
	assert.False(t, set)

	stored, err := s.store.Get(s.ctx, key)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, int64(3), stored)
}

func (s *CounterStoreValidationSuite) CountsVisits(t *testing.T) {
	s.countVisits(t, InitCheckThenSet)
}

func (s *CounterStoreValidationSuite) CountsVisitsAtomically(t *testing.T) {
	s.countVisits(t, InitSetIfAbsent)
}

func (s *CounterStoreValidationSuite) countVisits(t *testing.T, mode InitMode) {
	counter := NewVisitCounter(s.store, s.MakeTestKey(), mode)
	visits := s.faker.IntBetween(1, 25)

	var last int64
	for i := 0; i < visits; i++ {
		value, err := counter.Visit(s.ctx)
		if !assert.Nil(t, err) {
			return
		}
		last = value
	}

	assert.Equal(t, int64(visits), last)
}
