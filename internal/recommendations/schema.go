package recommendations

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const resultSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["company_name", "analysis_context", "recommendations", "system_check"],
  "properties": {
    "company_name": {"type": "string"},
    "analysis_context": {
      "type": "object",
      "required": ["category", "objective", "strategy_note"],
      "properties": {
        "category": {"type": "string"},
        "objective": {"type": "string"},
        "strategy_note": {"type": "string"}
      }
    },
    "recommendations": {
      "type": "array",
      "minItems": 3,
      "maxItems": 3,
      "items": {
        "type": "object",
        "required": ["rank", "format_name", "concept", "comment_trigger", "viability_matrix"],
        "properties": {
          "rank": {"type": "integer", "minimum": 1, "maximum": 3},
          "format_name": {"type": "string"},
          "concept": {"type": "string"},
          "comment_trigger": {"type": "string"},
          "viability_matrix": {
            "type": "object",
            "required": ["operational_scalability", "strategic_positioning", "cultural_adaptability"]
          }
        }
      }
    },
    "system_check": {
      "type": "object",
      "required": ["web_search_used", "schema_compliant"],
      "properties": {
        "web_search_used": {"type": "boolean"},
        "schema_compliant": {"type": "boolean"}
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func resultSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(resultSchemaJSON))
	})
	return schema, schemaErr
}

// ValidateResult checks raw against the recommendation result schema and
// returns one message per violation. Ranks must also be unique.
func ValidateResult(raw json.RawMessage) ([]string, error) {
	s, err := resultSchema()
	if err != nil {
		return nil, fmt.Errorf("compile result schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	var violations []string
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	if result.Valid() {
		if decoded, err := DecodeResult(raw); err == nil {
			seen := make(map[int]bool, len(decoded.Recommendations))
			for _, rec := range decoded.Recommendations {
				if seen[rec.Rank] {
					violations = append(violations, fmt.Sprintf("recommendations: duplicate rank %d", rec.Rank))
				}
				seen[rec.Rank] = true
			}
		}
	}
	return violations, nil
}
