package workerproc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"submission-backend/internal/recommendations"
)

type fakeEnricher struct {
	err  error
	reqs []recommendations.Request
}

func (f *fakeEnricher) Enrich(ctx context.Context, req recommendations.Request) (json.RawMessage, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{}`), nil
}

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr any
	}{
		{name: "empty", body: "  ", wantErr: ErrEmptyBody{}},
		{name: "bad json", body: "{bad", wantErr: ErrDecode{}},
		{name: "missing id", body: `{"requestId":"r1"}`, wantErr: ErrMissingSubmissionID{}},
		{name: "ok", body: `{"submissionId":"sub-1","version":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, meta, err := ParseMessage(tt.body)
			switch tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if msg.SubmissionID != "sub-1" {
					t.Fatalf("unexpected message: %+v", msg)
				}
				if meta.BodyLen != len(tt.body) || len(meta.BodySHA) != 64 {
					t.Fatalf("unexpected meta: %+v", meta)
				}
			case ErrEmptyBody:
				if _, ok := err.(ErrEmptyBody); !ok {
					t.Fatalf("expected ErrEmptyBody, got %T", err)
				}
			case ErrDecode:
				if _, ok := err.(ErrDecode); !ok {
					t.Fatalf("expected ErrDecode, got %T", err)
				}
			case ErrMissingSubmissionID:
				e, ok := err.(ErrMissingSubmissionID)
				if !ok {
					t.Fatalf("expected ErrMissingSubmissionID, got %T", err)
				}
				if e.RequestID != "r1" {
					t.Fatalf("expected request id r1, got %q", e.RequestID)
				}
			}
		})
	}
}

func TestHandleMessageRunsEnrichmentByID(t *testing.T) {
	enricher := &fakeEnricher{}

	if err := HandleMessage(context.Background(), enricher, `{"submissionId":"sub-1","requestId":"r1"}`); err != nil {
		t.Fatalf("handle message: %v", err)
	}
	if len(enricher.reqs) != 1 || enricher.reqs[0].SubmissionID != "sub-1" || enricher.reqs[0].SubmissionData != nil {
		t.Fatalf("unexpected requests: %+v", enricher.reqs)
	}
}

func TestHandleMessageWrapsEnrichmentFailure(t *testing.T) {
	enricher := &fakeEnricher{err: recommendations.ErrNotFound}

	err := HandleMessage(context.Background(), enricher, `{"submissionId":"sub-1","requestId":"r1"}`)

	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %T", err)
	}
	if procErr.SubmissionID != "sub-1" || procErr.RequestID != "r1" {
		t.Fatalf("unexpected error fields: %+v", procErr)
	}
	if !errors.Is(err, recommendations.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound")
	}
}

func TestProcessWithoutEnricher(t *testing.T) {
	if err := HandleMessage(context.Background(), nil, `{"submissionId":"sub-1"}`); err == nil {
		t.Fatalf("expected error")
	}
}
