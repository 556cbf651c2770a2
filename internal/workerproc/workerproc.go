package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"submission-backend/internal/queue"
	"submission-backend/internal/recommendations"
)

// Enricher runs enrichment for a stored submission.
type Enricher interface {
	Enrich(ctx context.Context, req recommendations.Request) (json.RawMessage, error)
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingSubmissionID indicates a message without a submission id.
type ErrMissingSubmissionID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingSubmissionID) Error() string { return "missing submission id" }

// ErrProcess indicates enrichment failed after the message was parsed.
type ErrProcess struct {
	SubmissionID string
	RequestID    string
	Err          error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process enrichment"
	}
	return "process enrichment: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.SubmissionID) == "" {
		return msg, meta, ErrMissingSubmissionID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// Process runs enrichment for an already parsed message.
func Process(ctx context.Context, enricher Enricher, msg queue.Message) error {
	if enricher == nil {
		return errors.New("enrichment service not configured")
	}
	if strings.TrimSpace(msg.SubmissionID) == "" {
		return ErrMissingSubmissionID{RequestID: msg.RequestID}
	}
	if _, err := enricher.Enrich(ctx, recommendations.Request{SubmissionID: msg.SubmissionID}); err != nil {
		return ErrProcess{SubmissionID: msg.SubmissionID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}

// HandleMessage parses, validates and processes a message payload.
func HandleMessage(ctx context.Context, enricher Enricher, body string) error {
	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	return Process(ctx, enricher, msg)
}
