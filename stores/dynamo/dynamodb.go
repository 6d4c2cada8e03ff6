package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	pkgerrors "github.com/pkg/errors"
)

type CountersTableName string

func (name CountersTableName) String() string {
	return string(name)
}

// DynamoCounterStore keeps one item per counter, keyed by pk with the count in
// a numeric value attribute.
type DynamoCounterStore struct {
	db    *dynamodb.Client
	table string
}

func NewCounterStore(db *dynamodb.Client, table CountersTableName) *DynamoCounterStore {
	return &DynamoCounterStore{db: db, table: string(table)}
}

type counterRecord struct {
	PartitionKey string `dynamodbav:"pk"`
	Value        int64  `dynamodbav:"value"`
}

func (ds *DynamoCounterStore) Exists(ctx context.Context, key string) (bool, error) {
	item, err := ds.get(ctx, key)
	if err != nil {
		return false, pkgerrors.Wrapf(err, "dynamodb exists %s", key)
	}

	return item != nil, nil
}

func (ds *DynamoCounterStore) Set(ctx context.Context, key string, value int64) error {
	record, err := attributevalue.MarshalMap(counterRecord{PartitionKey: key, Value: value})
	if err != nil {
		return err
	}

	_, err = ds.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(ds.table),
		Item:      record,
	})

	return pkgerrors.Wrapf(err, "dynamodb set %s", key)
}

func (ds *DynamoCounterStore) SetIfAbsent(ctx context.Context, key string, value int64) (bool, error) {
	record, err := attributevalue.MarshalMap(counterRecord{PartitionKey: key, Value: value})
	if err != nil {
		return false, err
	}

	condition, err := expression.NewBuilder().WithCondition(
		expression.AttributeNotExists(expression.Name("pk")),
	).Build()
	if err != nil {
		return false, err
	}

	_, err = ds.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(ds.table),
		Item:                      record,
		ConditionExpression:       condition.Condition(),
		ExpressionAttributeNames:  condition.Names(),
		ExpressionAttributeValues: condition.Values(),
	})
	if isConditionalCheckFailure(err) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.Wrapf(err, "dynamodb set-if-absent %s", key)
	}

	return true, nil
}

func (ds *DynamoCounterStore) Increment(ctx context.Context, key string) (int64, error) {
	update, err := expression.NewBuilder().WithUpdate(
		expression.Add(expression.Name("value"), expression.Value(1)),
	).Build()
	if err != nil {
		return 0, err
	}

	out, err := ds.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(ds.table),
		Key:                       keyFor(key),
		UpdateExpression:          update.Update(),
		ExpressionAttributeNames:  update.Names(),
		ExpressionAttributeValues: update.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "dynamodb increment %s", key)
	}

	var record counterRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &record); err != nil {
		return 0, err
	}

	return record.Value, nil
}

func (ds *DynamoCounterStore) Get(ctx context.Context, key string) (int64, error) {
	item, err := ds.get(ctx, key)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "dynamodb get %s", key)
	}
	if item == nil {
		return 0, pkgerrors.Errorf("dynamodb get %s: key not found", key)
	}

	return item.Value, nil
}

func (ds *DynamoCounterStore) Ping(ctx context.Context) error {
	_, err := ds.db.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(ds.table)})
	return pkgerrors.Wrapf(err, "dynamodb describe %s", ds.table)
}

func (ds *DynamoCounterStore) Close() error {
	return nil
}

// internal

func keyFor(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: key},
	}
}

func (ds *DynamoCounterStore) get(ctx context.Context, key string) (*counterRecord, error) {
	out, err := ds.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(ds.table),
		Key:            keyFor(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	if len(out.Item) == 0 {
		return nil, nil
	}

	var record counterRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

func isConditionalCheckFailure(err error) bool {
	if err == nil {
		return false
	}

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}

	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}
