package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"submission-backend/internal/queue"
	"submission-backend/internal/recommendations"
)

type fakeSQS struct {
	deleted  []string
	messages []sqstypes.Message
	cancel   context.CancelFunc
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	msgs := f.messages
	f.messages = nil
	if len(msgs) == 0 && f.cancel != nil {
		f.cancel()
		return nil, context.Canceled
	}
	return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeEnricher struct {
	err   error
	calls []string
}

func (f *fakeEnricher) Enrich(ctx context.Context, req recommendations.Request) (json.RawMessage, error) {
	f.calls = append(f.calls, req.SubmissionID)
	return json.RawMessage(`{}`), f.err
}

func jobMessage(t *testing.T, id, receipt string) sqstypes.Message {
	t.Helper()
	body, err := queue.EncodeMessage(queue.Message{SubmissionID: id, RequestID: "req-" + id, Version: queue.MessageVersion})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return sqstypes.Message{
		MessageId:     aws.String("m-" + id),
		ReceiptHandle: aws.String(receipt),
		Body:          aws.String(string(body)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeSQS{}
	enricher := &fakeEnricher{}

	handleMessage(context.Background(), client, "queue", enricher, jobMessage(t, "sub-1", "r1"))

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	if len(enricher.calls) != 1 || enricher.calls[0] != "sub-1" {
		t.Fatalf("unexpected enrich calls: %v", enricher.calls)
	}
}

func TestWorkerDeletesMessageAfterFailedAttempt(t *testing.T) {
	client := &fakeSQS{}
	enricher := &fakeEnricher{err: errors.New("boom")}

	handleMessage(context.Background(), client, "queue", enricher, jobMessage(t, "sub-2", "r2"))

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete after single attempt, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	client := &fakeSQS{}
	enricher := &fakeEnricher{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m3"),
		ReceiptHandle: aws.String("r3"),
		Body:          aws.String("{bad-json"),
	}

	handleMessage(context.Background(), client, "queue", enricher, msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	if len(enricher.calls) != 0 {
		t.Fatalf("expected no enrichment, got %v", enricher.calls)
	}
}

func TestWorkerRunProcessesBatchUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &fakeSQS{
		messages: []sqstypes.Message{jobMessage(t, "a", "ra"), jobMessage(t, "b", "rb")},
		cancel:   cancel,
	}
	enricher := &fakeEnricher{}
	w := &worker{client: client, queueURL: "queue", enricher: enricher, concurrency: 1}

	w.run(ctx, time.Second)

	if len(client.deleted) != 2 {
		t.Fatalf("expected 2 deletes, got %d", len(client.deleted))
	}
}
