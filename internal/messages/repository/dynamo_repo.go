package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jazbelrose/mylg-backend/internal/messages/domain"
)

const (
	maxRetries  = 5
	baseBackoff = 200 * time.Millisecond
)

// DynamoAPI is the slice of the DynamoDB client the repository uses.
type DynamoAPI interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// MessageRepository reads and deletes direct messages in DynamoDB.
type MessageRepository struct {
	client DynamoAPI
	table  string
}

func NewMessageRepository(client DynamoAPI, table string) *MessageRepository {
	return &MessageRepository{client: client, table: table}
}

// List returns up to limit messages for a conversation in the table's
// native sort-key order (ascending when asc is true).
func (r *MessageRepository) List(ctx context.Context, conversationID string, asc bool, limit int32) ([]domain.Message, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("conversationId = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: conversationID},
		},
		ScanIndexForward: aws.Bool(asc),
		Limit:            aws.Int32(limit),
	}

	var out *dynamodb.QueryOutput
	err := r.withBackoff(ctx, func() error {
		var qErr error
		out, qErr = r.client.Query(ctx, in)
		return qErr
	})
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	messages := make([]domain.Message, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	return messages, nil
}

// Delete removes one message by its full key.
func (r *MessageRepository) Delete(ctx context.Context, conversationID, messageID string) error {
	in := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"conversationId": &types.AttributeValueMemberS{Value: conversationID},
			"messageId":      &types.AttributeValueMemberS{Value: messageID},
		},
	}

	err := r.withBackoff(ctx, func() error {
		_, dErr := r.client.DeleteItem(ctx, in)
		return dErr
	})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// withBackoff retries throttled calls up to maxRetries with exponential
// backoff starting at baseBackoff and doubling each attempt.
func (r *MessageRepository) withBackoff(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}

		var throttled *types.ProvisionedThroughputExceededException
		if !errors.As(err, &throttled) {
			return err
		}

		delay := baseBackoff << attempt
		log.Printf("[messages] throughput exceeded, retrying in %s (attempt %d/%d)", delay, attempt+1, maxRetries)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", domain.ErrThrottled, maxRetries, err)
}
