package domain

import "errors"

// Message is one direct-message item. conversationId is the partition key
// and messageId the sort key, so the table's native order is messageId.
type Message struct {
	ConversationID string `json:"conversationId" dynamodbav:"conversationId"`
	MessageID      string `json:"messageId" dynamodbav:"messageId"`
	SenderID       string `json:"senderId,omitempty" dynamodbav:"senderId"`
	Text           string `json:"text,omitempty" dynamodbav:"text"`
	Timestamp      string `json:"timestamp,omitempty" dynamodbav:"timestamp"`
	Read           bool   `json:"read" dynamodbav:"read"`
}

var ErrThrottled = errors.New("dynamodb throughput exceeded")
