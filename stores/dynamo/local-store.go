package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

// EnsureTable creates the counters table when it is missing and waits for it
// to become active.
func EnsureTable(ctx context.Context, client *dynamodb.Client, table CountersTableName) error {
	exists, err := tableExists(ctx, client, table.String())
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return createTable(ctx, client, table.String())
}

func tableExists(ctx context.Context, client *dynamodb.Client, name string) (bool, error) {
	required := &dynamodb.DescribeTableInput{TableName: aws.String(name)}
	description, err := client.DescribeTable(ctx, required)
	if err != nil {
		var errorType *types.ResourceNotFoundException
		if errors.As(err, &errorType) {
			return false, nil
		}
		return false, err
	}

	if description.Table.TableStatus != types.TableStatusActive {
		return false, errors.New("counters table exists but is not active")
	}

	return true, nil
}

func createTable(ctx context.Context, client *dynamodb.Client, table string) error {
	log.WithField("table", table).Info("creating counters table")

	_, err := client.CreateTable(
		ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(table),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
	)

	if err != nil {
		return err
	}

	return waitForTable(ctx, client, table)
}

func waitForTable(ctx context.Context, client *dynamodb.Client, name string) error {
	required := &dynamodb.DescribeTableInput{TableName: aws.String(name)}
	return dynamodb.NewTableExistsWaiter(client).Wait(ctx, required, 2*time.Minute)
}
