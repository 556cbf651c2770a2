package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"submission-backend/internal/bootstrap"
	"submission-backend/internal/shared/config"
	"submission-backend/internal/shared/metrics"
	"submission-backend/internal/shared/telemetry"
	"submission-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	enricher workerproc.Enricher
)

func initApp() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	built, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	if err := built.RequireLLM(); err != nil {
		initErr = err
		return
	}
	enricher = built.RecommendationsService
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	defer telemetry.Sync()
	if initErr != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": initErr})
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return processBatch(ctx, enricher, event), nil
}

// processBatch makes one attempt per record and never reports item failures,
// so failed jobs are not redelivered.
func processBatch(ctx context.Context, enricher workerproc.Enricher, event events.SQSEvent) events.SQSEventResponse {
	for _, record := range event.Records {
		metrics.EnrichmentJobs.WithLabelValues(metrics.JobReceived).Inc()
		if err := workerproc.HandleMessage(ctx, enricher, record.Body); err != nil {
			telemetry.Error("worker.enrichment.failed", map[string]any{
				"sqs_message_id": record.MessageId,
				"error":          err,
			})
			metrics.EnrichmentJobs.WithLabelValues(metrics.JobFailed).Inc()
			continue
		}
		metrics.EnrichmentJobs.WithLabelValues(metrics.JobCompleted).Inc()
	}
	return events.SQSEventResponse{BatchItemFailures: []events.SQSBatchItemFailure{}}
}

func main() {
	lambda.Start(handler)
}
