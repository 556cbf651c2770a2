package recommendations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"submission-backend/internal/llm"
	"submission-backend/internal/queue"
	"submission-backend/internal/shared/metrics"
	"submission-backend/internal/shared/telemetry"
	"submission-backend/internal/submissions"
)

var errNoResponse = errors.New("no response from generation API")

// RecordStore loads and updates submission records.
type RecordStore interface {
	Load(ctx context.Context, id string) (submissions.Record, error)
	Save(ctx context.Context, id string, mutate func(submissions.Record) error) error
}

// Request selects the submission to enrich. A non-blank SubmissionID takes
// precedence and SubmissionData is then ignored.
type Request struct {
	SubmissionID   string
	SubmissionData json.RawMessage
}

// Service produces format recommendations for submissions.
type Service struct {
	Store RecordStore
	// LLM is nil when no API key was configured.
	LLM       llm.Generator
	WebSearch bool
	// APIKeySetting names the missing setting in configuration errors.
	APIKeySetting string
	// Jobs is nil when asynchronous enrichment is disabled.
	Jobs queue.Sender
}

// Enrich resolves the submission, asks the model for recommendations and,
// when the request named a stored submission, attaches the parsed result to
// it under formatRecommendations. A failed write is logged, not returned.
func (s *Service) Enrich(ctx context.Context, req Request) (json.RawMessage, error) {
	start := time.Now()
	metrics.EnrichmentStarted.Inc()
	defer metrics.ObserveEnrichment(start)

	result, err := s.enrich(ctx, req)
	if err != nil {
		metrics.EnrichmentFailed.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	metrics.EnrichmentCompleted.Inc()
	return result, nil
}

// BuildPrompt resolves the submission and returns the prompt that Enrich would send.
func (s *Service) BuildPrompt(ctx context.Context, req Request) (llm.Prompt, error) {
	rec, _, err := s.resolve(ctx, req)
	if err != nil {
		return llm.Prompt{}, err
	}
	return s.prompt(rec)
}

func (s *Service) enrich(ctx context.Context, req Request) (json.RawMessage, error) {
	if s.LLM == nil {
		return nil, &MissingConfigError{Setting: s.APIKeySetting}
	}

	rec, id, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	prompt, err := s.prompt(rec)
	if err != nil {
		return nil, err
	}

	resp, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	if resp == nil {
		return nil, &UpstreamError{Err: errNoResponse}
	}

	raw := llm.ResponseText(resp)
	parsed, err := ParseModelOutput(raw)
	if err != nil {
		telemetry.Warn("enrichment.parse_failed", map[string]any{
			"submission_id": id,
			"raw_length":    len(raw),
			"error":         err,
		})
		return nil, &ParseError{Raw: raw, Err: err}
	}

	s.checkSchema(id, parsed)

	if id != "" {
		s.persist(ctx, id, parsed)
	}
	return parsed, nil
}

func (s *Service) resolve(ctx context.Context, req Request) (submissions.Record, string, error) {
	id := strings.TrimSpace(req.SubmissionID)
	if id != "" {
		rec, err := s.load(ctx, id)
		return rec, id, err
	}

	if isAbsent(req.SubmissionData) {
		return nil, "", fmt.Errorf("%w: submissionId or submissionData is required", ErrInvalidInput)
	}

	dec := json.NewDecoder(bytes.NewReader(req.SubmissionData))
	dec.UseNumber()
	var rec submissions.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, "", fmt.Errorf("%w: submissionData must be a JSON object", ErrInvalidInput)
	}
	return rec, "", nil
}

func (s *Service) prompt(rec submissions.Record) (llm.Prompt, error) {
	serialized, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return llm.Prompt{}, fmt.Errorf("serialize submission: %w", err)
	}
	return llm.Prompt{
		System:    llm.FormatRecommendationsInstruction(),
		User:      llm.FormatRecommendationsUserPrompt(string(serialized)),
		WebSearch: s.WebSearch,
	}, nil
}

func (s *Service) checkSchema(id string, parsed json.RawMessage) {
	violations, err := ValidateResult(parsed)
	if err != nil {
		telemetry.Error("enrichment.schema_check_failed", map[string]any{"submission_id": id, "error": err})
		return
	}
	if len(violations) == 0 {
		return
	}
	metrics.SchemaViolations.Inc()
	telemetry.Warn("enrichment.schema_violation", map[string]any{
		"submission_id": id,
		"violations":    violations,
	})
}

func (s *Service) persist(ctx context.Context, id string, parsed json.RawMessage) {
	// The caller already has the result; finish the write even if the client went away.
	err := s.Store.Save(context.WithoutCancel(ctx), id, func(rec submissions.Record) error {
		rec[submissions.FieldFormatRecommendations] = parsed
		return nil
	})
	if err != nil {
		metrics.PersistenceFailures.Inc()
		telemetry.Error("enrichment.persist_failed", map[string]any{
			"submission_id": id,
			"error":         err,
		})
		return
	}
	telemetry.Info("enrichment.persisted", map[string]any{"submission_id": id})
}

func (s *Service) load(ctx context.Context, id string) (submissions.Record, error) {
	if s.Store == nil {
		return nil, errors.New("submission store not configured")
	}
	rec, err := s.Store.Load(ctx, id)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, submissions.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, submissions.ErrInvalidID):
		return nil, fmt.Errorf("%w: submissionId contains no valid characters", ErrInvalidInput)
	default:
		return nil, fmt.Errorf("load submission: %w", err)
	}
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func failureReason(err error) string {
	var upstream *UpstreamError
	var parse *ParseError
	switch {
	case errors.Is(err, ErrInvalidInput):
		return metrics.ReasonBadRequest
	case errors.Is(err, ErrNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, ErrMissingAPIKey):
		return metrics.ReasonConfig
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ReasonCanceled
	case errors.As(err, &upstream):
		return metrics.ReasonUpstream
	case errors.As(err, &parse):
		return metrics.ReasonParse
	case errors.Is(err, submissions.ErrCorrupt):
		return metrics.ReasonStoreRead
	default:
		return metrics.ReasonUnclassified
	}
}
