package recommendations

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"submission-backend/internal/queue"
)

type fakeQueue struct {
	sent []queue.Message
	err  error
}

func (f *fakeQueue) Send(ctx context.Context, msg queue.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestSubmitQueuesStoredSubmission(t *testing.T) {
	svc, dir := newTestService(t, &fakeGenerator{})
	jobs := &fakeQueue{}
	svc.Jobs = jobs
	seedRecord(t, dir, "sub-1", `{}`)

	require.NoError(t, svc.Submit(context.Background(), " sub-1 ", "req-1"))

	require.Len(t, jobs.sent, 1)
	assert.Equal(t, "sub-1", jobs.sent[0].SubmissionID)
	assert.Equal(t, "req-1", jobs.sent[0].RequestID)
	assert.Equal(t, queue.MessageVersion, jobs.sent[0].Version)
	assert.NotEmpty(t, jobs.sent[0].EnqueuedAt)
}

func TestSubmitErrors(t *testing.T) {
	svc, _ := newTestService(t, &fakeGenerator{})

	assert.ErrorIs(t, svc.Submit(context.Background(), "sub-1", ""), ErrQueueDisabled)

	jobs := &fakeQueue{}
	svc.Jobs = jobs
	assert.ErrorIs(t, svc.Submit(context.Background(), "  ", ""), ErrInvalidInput)
	assert.ErrorIs(t, svc.Submit(context.Background(), "missing", ""), ErrNotFound)
	assert.Empty(t, jobs.sent)
}

func TestSubmitSendFailure(t *testing.T) {
	svc, dir := newTestService(t, &fakeGenerator{})
	svc.Jobs = &fakeQueue{err: errors.New("throttled")}
	seedRecord(t, dir, "sub-1", `{}`)

	err := svc.Submit(context.Background(), "sub-1", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestEnqueueHandler(t *testing.T) {
	tests := []struct {
		name       string
		jobs       queue.Sender
		body       string
		wantStatus int
	}{
		{name: "queued", jobs: &fakeQueue{}, body: `{"submissionId":"sub-1"}`, wantStatus: http.StatusAccepted},
		{name: "disabled", jobs: nil, body: `{"submissionId":"sub-1"}`, wantStatus: http.StatusServiceUnavailable},
		{name: "missing id", jobs: &fakeQueue{}, body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "unknown id", jobs: &fakeQueue{}, body: `{"submissionId":"nope"}`, wantStatus: http.StatusNotFound},
		{name: "send failure", jobs: &fakeQueue{err: errors.New("down")}, body: `{"submissionId":"sub-1"}`, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, dir := newTestService(t, &fakeGenerator{})
			svc.Jobs = tt.jobs
			seedRecord(t, dir, "sub-1", `{}`)
			router := newTestRouter(t, svc)

			req := newJSONRequest(t, "/api/recommend-formats/async", tt.body)
			resp := serve(router, req)
			if resp.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}
		})
	}
}
