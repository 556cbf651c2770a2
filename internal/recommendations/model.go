package recommendations

import (
	"encoding/json"
	"errors"
)

// RecommendationResult is the structured output requested from the model.
type RecommendationResult struct {
	CompanyName     string           `json:"company_name"`
	AnalysisContext AnalysisContext  `json:"analysis_context"`
	Recommendations []Recommendation `json:"recommendations"`
	SystemCheck     SystemCheck      `json:"system_check"`
}

type AnalysisContext struct {
	Category     string `json:"category"`
	Objective    string `json:"objective"`
	StrategyNote string `json:"strategy_note"`
}

type Recommendation struct {
	Rank            int             `json:"rank"`
	FormatName      string          `json:"format_name"`
	Concept         string          `json:"concept"`
	CommentTrigger  string          `json:"comment_trigger"`
	ViabilityMatrix ViabilityMatrix `json:"viability_matrix"`
}

// ViabilityMatrix scores a format on the three rubric axes.
type ViabilityMatrix struct {
	OperationalScalability MatrixScore `json:"operational_scalability"`
	StrategicPositioning   MatrixScore `json:"strategic_positioning"`
	CulturalAdaptability   MatrixScore `json:"cultural_adaptability"`
}

type MatrixScore struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

type SystemCheck struct {
	WebSearchUsed   bool `json:"web_search_used"`
	SchemaCompliant bool `json:"schema_compliant"`
}

// DecodeResult decodes a parsed model output into the typed result.
func DecodeResult(raw json.RawMessage) (RecommendationResult, error) {
	var out RecommendationResult
	err := json.Unmarshal(raw, &out)
	return out, err
}

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("submission not found")
	ErrMissingAPIKey = errors.New("generation api key not configured")
)

// MissingConfigError names the setting that must be provided before
// enrichment can run. It matches ErrMissingAPIKey.
type MissingConfigError struct {
	Setting string
}

func (e *MissingConfigError) Error() string {
	if e.Setting == "" {
		return "generation API key is not configured"
	}
	return e.Setting + " is not configured"
}

func (e *MissingConfigError) Is(target error) bool {
	return target == ErrMissingAPIKey
}

// UpstreamError reports a failed or empty call to the generation API.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "generation request failed: " + e.Message()
}

// Message returns the upstream error text, or "unknown error" when none is available.
func (e *UpstreamError) Message() string {
	if e.Err == nil || e.Err.Error() == "" {
		return "unknown error"
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ParseError reports model output that is not valid JSON. Raw is the
// untrimmed text as received.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return "parse model output: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
