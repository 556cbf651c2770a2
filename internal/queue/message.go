package queue

import (
	"context"
	"encoding/json"
)

// MessageVersion is the current enrichment job payload version.
const MessageVersion = 1

// Message is an enrichment job for one stored submission.
type Message struct {
	SubmissionID string `json:"submissionId"`
	RequestID    string `json:"requestId,omitempty"`
	EnqueuedAt   string `json:"enqueuedAt"`
	Version      int    `json:"version"`
}

// Sender publishes enrichment jobs.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
