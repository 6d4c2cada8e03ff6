package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/weegigs/pearls-treats/support"
)

func Client(cfg aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}

func LiveTableName(cfg support.Config) CountersTableName {
	return CountersTableName(cfg.DynamoTable)
}

// LiveStore builds a store against the configured table. Against a local
// endpoint the table is created on demand.
func LiveStore(ctx context.Context, cfg support.Config) (*DynamoCounterStore, func(), error) {
	awsConfig, err := support.AWSConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	client := Client(awsConfig)
	table := LiveTableName(cfg)

	if cfg.DynamoEndpoint != "" {
		if err := EnsureTable(ctx, client, table); err != nil {
			return nil, nil, err
		}
	}

	store := NewCounterStore(client, table)
	return store, func() {}, nil
}
