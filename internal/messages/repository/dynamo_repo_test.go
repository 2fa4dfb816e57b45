package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jazbelrose/mylg-backend/internal/messages/domain"
)

type fakeDynamo struct {
	queryOut   *dynamodb.QueryOutput
	queryErrs  []error
	queryCalls int
	lastQuery  *dynamodb.QueryInput

	deleteErr   error
	deleteCalls int
	lastDelete  *dynamodb.DeleteItemInput
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQuery = in
	f.queryCalls++
	if len(f.queryErrs) > 0 {
		err := f.queryErrs[0]
		f.queryErrs = f.queryErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if f.queryOut == nil {
		return &dynamodb.QueryOutput{}, nil
	}
	return f.queryOut, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.lastDelete = in
	f.deleteCalls++
	return &dynamodb.DeleteItemOutput{}, f.deleteErr
}

func TestMessageRepository_List(t *testing.T) {
	t.Run("queries by conversation with the given order and limit", func(t *testing.T) {
		fake := &fakeDynamo{queryOut: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{
				{
					"conversationId": &types.AttributeValueMemberS{Value: "c1"},
					"messageId":      &types.AttributeValueMemberS{Value: "m1"},
					"text":           &types.AttributeValueMemberS{Value: "hello"},
				},
			},
		}}
		repo := NewMessageRepository(fake, "direct-messages")

		msgs, err := repo.List(context.Background(), "c1", false, 25)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "hello", msgs[0].Text)

		require.NotNil(t, fake.lastQuery)
		assert.Equal(t, "direct-messages", *fake.lastQuery.TableName)
		assert.False(t, *fake.lastQuery.ScanIndexForward)
		assert.Equal(t, int32(25), *fake.lastQuery.Limit)
	})

	t.Run("retries throttled queries", func(t *testing.T) {
		fake := &fakeDynamo{queryErrs: []error{
			&types.ProvisionedThroughputExceededException{},
			&types.ProvisionedThroughputExceededException{},
			nil,
		}}
		repo := NewMessageRepository(fake, "direct-messages")

		_, err := repo.List(context.Background(), "c1", true, 50)
		require.NoError(t, err)
		assert.Equal(t, 3, fake.queryCalls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		fake := &fakeDynamo{queryErrs: []error{errors.New("boom")}}
		repo := NewMessageRepository(fake, "direct-messages")

		_, err := repo.List(context.Background(), "c1", true, 50)
		require.Error(t, err)
		assert.Equal(t, 1, fake.queryCalls)
	})

	t.Run("gives up after five throttled attempts", func(t *testing.T) {
		fake := &fakeDynamo{queryErrs: []error{
			&types.ProvisionedThroughputExceededException{},
			&types.ProvisionedThroughputExceededException{},
			&types.ProvisionedThroughputExceededException{},
			&types.ProvisionedThroughputExceededException{},
			&types.ProvisionedThroughputExceededException{},
		}}
		repo := NewMessageRepository(fake, "direct-messages")

		_, err := repo.List(context.Background(), "c1", true, 50)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrThrottled)
		assert.Equal(t, 5, fake.queryCalls)
	})
}

func TestMessageRepository_Delete(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewMessageRepository(fake, "direct-messages")

	require.NoError(t, repo.Delete(context.Background(), "c1", "m1"))
	require.NotNil(t, fake.lastDelete)

	key := fake.lastDelete.Key
	assert.Equal(t, "c1", key["conversationId"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "m1", key["messageId"].(*types.AttributeValueMemberS).Value)
}
