package dynamo

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	treats "github.com/weegigs/pearls-treats"
)

func TestDynamoDBStore(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	store, tearDown, err := DynamoTestStore(ctx)
	if err != nil {
		t.Fatalf("failed to create test store. %+v", err)
	}

	defer tearDown()

	t.Run("dynamodb counter store validation", func(t *testing.T) {
		suite := treats.NewCounterStoreValidationSuite(ctx, store)
		suite.Run(t)
	})

	t.Run("increment creates a missing counter", func(t *testing.T) {
		key := treats.NewCounterStoreValidationSuite(ctx, store).MakeTestKey()

		value, err := store.Increment(ctx, key)
		require.Nil(t, err)
		assert.Equal(t, int64(1), value)
	})

	t.Run("renders against dynamodb", func(t *testing.T) {
		key := treats.NewCounterStoreValidationSuite(ctx, store).MakeTestKey()
		require.Nil(t, store.Set(ctx, key, 5))

		renderer := treats.NewRenderer(treats.NewVisitCounter(store, key, treats.InitCheckThenSet))
		document, err := renderer.Render(ctx, http.Header{})
		require.Nil(t, err)
		assert.Contains(t, string(document.Body), "You are visitor 6!")
	})

	t.Run("ping fails for a missing table", func(t *testing.T) {
		missing := NewCounterStore(store.db, CountersTableName("no-such-table"))
		assert.NotNil(t, missing.Ping(ctx))
	})
}

func TestIsConditionalCheckFailure(t *testing.T) {
	assert.False(t, isConditionalCheckFailure(nil))
	assert.True(t, isConditionalCheckFailure(&types.ConditionalCheckFailedException{}))
	assert.False(t, isConditionalCheckFailure(&types.ResourceNotFoundException{}))
}
