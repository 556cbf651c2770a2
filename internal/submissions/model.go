package submissions

import "errors"

// Record is a persisted submission document. Field names are owned by the
// intake process; this package only guarantees that unrelated fields survive
// a Save.
type Record map[string]any

// Well-known record fields.
const (
	FieldFormatRecommendations = "formatRecommendations"
	FieldGrowthReport          = "growthReport"
)

var (
	ErrNotFound  = errors.New("submission not found")
	ErrInvalidID = errors.New("invalid submission id")
	ErrCorrupt   = errors.New("submission record is corrupt")
)
