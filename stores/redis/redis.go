package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

type Options struct {
	Address  string
	Password string
	DB       int
	Timeout  time.Duration
}

func Client(options Options) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         options.Address,
		Password:     options.Password,
		DB:           options.DB,
		DialTimeout:  options.Timeout,
		ReadTimeout:  options.Timeout,
		WriteTimeout: options.Timeout,
		MaxRetries:   -1,
	})
}

// RedisCounterStore keeps counters as plain redis string values so INCR
// applies to them directly.
type RedisCounterStore struct {
	client *goredis.Client
}

func NewCounterStore(client *goredis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (rs *RedisCounterStore) Exists(ctx context.Context, key string) (bool, error) {
	count, err := rs.client.Exists(ctx, key).Result()
	if err != nil {
		return false, errors.Wrapf(err, "redis exists %s", key)
	}

	return count > 0, nil
}

func (rs *RedisCounterStore) Set(ctx context.Context, key string, value int64) error {
	if err := rs.client.Set(ctx, key, strconv.FormatInt(value, 10), 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}

	return nil
}

func (rs *RedisCounterStore) SetIfAbsent(ctx context.Context, key string, value int64) (bool, error) {
	set, err := rs.client.SetNX(ctx, key, strconv.FormatInt(value, 10), 0).Result()
	if err != nil {
		return false, errors.Wrapf(err, "redis setnx %s", key)
	}

	return set, nil
}

func (rs *RedisCounterStore) Increment(ctx context.Context, key string) (int64, error) {
	value, err := rs.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "redis incr %s", key)
	}

	return value, nil
}

func (rs *RedisCounterStore) Get(ctx context.Context, key string) (int64, error) {
	value, err := rs.client.Get(ctx, key).Int64()
	if err == goredis.Nil {
		return 0, errors.Errorf("redis get %s: key not found", key)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "redis get %s", key)
	}

	return value, nil
}

func (rs *RedisCounterStore) Ping(ctx context.Context) error {
	return errors.Wrap(rs.client.Ping(ctx).Err(), "redis ping")
}

func (rs *RedisCounterStore) Close() error {
	return rs.client.Close()
}
