package recommendations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"submission-backend/internal/queue"
	"submission-backend/internal/shared/metrics"
	"submission-backend/internal/shared/telemetry"
)

var ErrQueueDisabled = errors.New("asynchronous enrichment is not configured")

// Submit queues an enrichment job for a stored submission. The record must
// exist; the worker runs Enrich with the id and persists the result.
func (s *Service) Submit(ctx context.Context, submissionID, requestID string) error {
	if s.Jobs == nil {
		return ErrQueueDisabled
	}
	id := strings.TrimSpace(submissionID)
	if id == "" {
		return fmt.Errorf("%w: submissionId is required", ErrInvalidInput)
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	msg := queue.Message{
		SubmissionID: id,
		RequestID:    requestID,
		EnqueuedAt:   time.Now().UTC().Format(time.RFC3339),
		Version:      queue.MessageVersion,
	}
	if err := s.Jobs.Send(ctx, msg); err != nil {
		return fmt.Errorf("enqueue enrichment: %w", err)
	}

	metrics.EnrichmentJobs.WithLabelValues(metrics.JobQueued).Inc()
	telemetry.Info("enrichment.queued", map[string]any{
		"submission_id": id,
		"request_id":    requestID,
	})
	return nil
}
