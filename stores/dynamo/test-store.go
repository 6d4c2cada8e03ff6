package dynamo

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/weegigs/pearls-treats/support"
)

func DynamoTestStore(ctx context.Context) (*DynamoCounterStore, func(), error) {

	db, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "amazon/dynamodb-local",
				ExposedPorts: []string{"8000/tcp"},
				WaitingFor:   wait.ForListeningPort("8000/tcp"),
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

	port, err := db.MappedPort(ctx, "8000")
	if err != nil {
		terminate()
		return nil, nil, err
	}

	cfg, err := support.LocalAWSConfig(ctx, fmt.Sprintf("http://%s:%s", host, port.Port()))
	if err != nil {
		terminate()
		return nil, nil, err
	}

	client := Client(cfg)
	table := CountersTableName("test-counters")
	if err := EnsureTable(ctx, client, table); err != nil {
		terminate()
		return nil, nil, err
	}

	return NewCounterStore(client, table), terminate, nil
}
