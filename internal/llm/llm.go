package llm

import (
	"context"
	"strings"
)

// Prompt is a single-shot generation request.
type Prompt struct {
	System    string
	User      string
	WebSearch bool
}

// Generator abstracts text generation providers.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (Response, error)
}

// Response is the provider reply. Providers return either a TextResponse,
// when the reply exposes a primary text field, or a FragmentResponse holding
// the raw text fragments of the reply in order.
type Response interface {
	isResponse()
}

// TextResponse carries the provider's primary text output.
type TextResponse struct {
	Text string
}

// FragmentResponse carries text fragments scanned from a structured reply.
type FragmentResponse struct {
	Fragments []string
}

func (TextResponse) isResponse()     {}
func (FragmentResponse) isResponse() {}

// ResponseText normalizes resp into plain text. It returns "" when resp holds
// no text; that is not an error on its own.
func ResponseText(resp Response) string {
	switch r := resp.(type) {
	case TextResponse:
		return r.Text
	case *TextResponse:
		if r == nil {
			return ""
		}
		return r.Text
	case FragmentResponse:
		return strings.Join(r.Fragments, "")
	case *FragmentResponse:
		if r == nil {
			return ""
		}
		return strings.Join(r.Fragments, "")
	default:
		return ""
	}
}
