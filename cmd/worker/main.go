package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"submission-backend/internal/bootstrap"
	"submission-backend/internal/queue"
	"submission-backend/internal/shared/config"
	"submission-backend/internal/shared/metrics"
	"submission-backend/internal/shared/telemetry"
	"submission-backend/internal/workerproc"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	defer telemetry.Sync()

	if cfg.EnrichQueueURL == "" {
		fatal("worker.config_missing", map[string]any{"setting": "ENRICH_QUEUE_URL"})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := queue.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		fatal("worker.aws_config_failed", map[string]any{"error": err})
	}
	var sqsClient sqsAPI = sqs.NewFromConfig(awsCfg)

	app, err := bootstrap.Build(cfg)
	if err != nil {
		fatal("bootstrap.failed", map[string]any{"error": err})
	}
	if err := app.RequireLLM(); err != nil {
		fatal("worker.config_missing", map[string]any{"error": err})
	}

	w := &worker{
		client:      sqsClient,
		queueURL:    cfg.EnrichQueueURL,
		enricher:    app.RecommendationsService,
		concurrency: max(1, cfg.WorkerConcurrency),
		visibility:  int32(cfg.QueueVisibilitySec),
	}
	telemetry.Info("worker.started", map[string]any{
		"queue":       cfg.EnrichQueueURL,
		"concurrency": w.concurrency,
		"visibility":  cfg.QueueVisibilitySec,
	})

	w.run(ctx, time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type worker struct {
	client      sqsAPI
	queueURL    string
	enricher    workerproc.Enricher
	concurrency int
	visibility  int32
}

func (w *worker) run(ctx context.Context, shutdownTimeout time.Duration) {
	sem := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := w.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(w.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   w.visibility,
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Error("worker.receive_failed", map[string]any{"error": err})
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			metrics.EnrichmentJobs.WithLabelValues(metrics.JobReceived).Inc()
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				handleMessage(context.WithoutCancel(ctx), w.client, w.queueURL, w.enricher, m)
			}(msg)
		}
	}

	telemetry.Info("worker.shutdown", map[string]any{"timeout": shutdownTimeout.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", nil)
	}
}

// handleMessage makes a single attempt per message. The message is deleted
// whatever the outcome; failed jobs are logged and counted, not redelivered.
func handleMessage(ctx context.Context, client sqsAPI, queueURL string, enricher workerproc.Enricher, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)

	decoded, meta, err := workerproc.ParseMessage(body)
	if err != nil {
		fields := baseFields(msg, decoded.SubmissionID, decoded.RequestID)
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		fields["error"] = err
		telemetry.Error("worker.enrichment.invalid_message", fields)
		if deleteMessage(ctx, client, queueURL, msg, decoded.SubmissionID, decoded.RequestID) {
			metrics.EnrichmentJobs.WithLabelValues(metrics.JobDiscarded).Inc()
		}
		return
	}

	telemetry.Info("worker.enrichment.received", baseFields(msg, decoded.SubmissionID, decoded.RequestID))

	outcome := metrics.JobCompleted
	if err := workerproc.Process(ctx, enricher, decoded); err != nil {
		fields := baseFields(msg, decoded.SubmissionID, decoded.RequestID)
		fields["error"] = err
		telemetry.Error("worker.enrichment.failed", fields)
		outcome = metrics.JobFailed
	}

	if deleteMessage(ctx, client, queueURL, msg, decoded.SubmissionID, decoded.RequestID) {
		metrics.EnrichmentJobs.WithLabelValues(outcome).Inc()
		if outcome == metrics.JobCompleted {
			telemetry.Info("worker.enrichment.completed", baseFields(msg, decoded.SubmissionID, decoded.RequestID))
		}
	}
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message, submissionID, requestID string) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg, submissionID, requestID)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.enrichment.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg, submissionID, requestID)
		fields["error"] = err
		telemetry.Error("worker.enrichment.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message, submissionID, requestID string) map[string]any {
	fields := map[string]any{
		"submission_id":  submissionID,
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if strings.TrimSpace(requestID) != "" {
		fields["request_id"] = requestID
	}
	return fields
}

func receiveCount(msg sqstypes.Message) int {
	if msg.Attributes == nil {
		return 0
	}
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

func fatal(msg string, fields map[string]any) {
	telemetry.Error(msg, fields)
	telemetry.Sync()
	os.Exit(1)
}
