package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/format_recommendations.txt
var formatRecommendationsInstruction string

// FormatRecommendationsInstruction returns the fixed system instruction for
// format recommendations: the viability-matrix rubric and the output schema.
func FormatRecommendationsInstruction() string {
	return strings.TrimSpace(formatRecommendationsInstruction)
}

// FormatRecommendationsUserPrompt embeds the serialized submission as the task input.
func FormatRecommendationsUserPrompt(submissionJSON string) string {
	return "Analyze the following submission data and return the JSON object described in your instructions.\n\nSUBMISSION DATA:\n" + submissionJSON
}
