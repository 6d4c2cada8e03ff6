package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func RedisTestStore(ctx context.Context) (*RedisCounterStore, func(), error) {
	db, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForListeningPort("6379/tcp"),
			},
			Started: true,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	terminate := func() {
		if err := db.Terminate(ctx); err != nil {
			panic(err)
		}
	}

	host, err := db.Host(ctx)
	if err != nil {
		terminate()
		return nil, nil, err
	}

	port, err := db.MappedPort(ctx, "6379")
	if err != nil {
		terminate()
		return nil, nil, err
	}

	store := NewCounterStore(Client(Options{
		Address: fmt.Sprintf("%s:%s", host, port.Port()),
		Timeout: time.Second,
	}))

	err = retry.Do(
		func() error {
			return store.Ping(ctx)
		},
		retry.Attempts(10),
		retry.Delay(250*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		terminate()
		return nil, nil, err
	}

	return store, func() {
		_ = store.Close()
		terminate()
	}, nil
}
