package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"submission-backend/internal/llm"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	config *genai.GenerateContentConfig
	input  []*genai.Content
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.input = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}}},
	}
}

func TestGenerateBuildsRequest(t *testing.T) {
	fake := &fakeModels{resp: textResponse(&genai.Part{Text: `{"a":1}`})}
	client := NewWithModels(fake, "")

	resp, err := client.Generate(context.Background(), llm.Prompt{System: "rules", User: "data", WebSearch: true})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, fake.model)
	require.Len(t, fake.input, 1)
	assert.Equal(t, "data", fake.input[0].Parts[0].Text)
	require.NotNil(t, fake.config.SystemInstruction)
	assert.Equal(t, "rules", fake.config.SystemInstruction.Parts[0].Text)
	require.Len(t, fake.config.Tools, 1)
	assert.NotNil(t, fake.config.Tools[0].GoogleSearch)

	assert.Equal(t, llm.TextResponse{Text: `{"a":1}`}, resp)
}

func TestGenerateWithoutWebSearch(t *testing.T) {
	fake := &fakeModels{resp: textResponse(&genai.Part{Text: "x"})}
	client := NewWithModels(fake, "gemini-custom")

	_, err := client.Generate(context.Background(), llm.Prompt{User: "data"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-custom", fake.model)
	assert.Empty(t, fake.config.Tools)
	assert.Nil(t, fake.config.SystemInstruction)
}

func TestGenerateWrapsErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	client := NewWithModels(&fakeModels{err: boom}, "")

	_, err := client.Generate(context.Background(), llm.Prompt{User: "data"})
	assert.ErrorIs(t, err, boom)
}

func TestGenerateNilResponse(t *testing.T) {
	client := NewWithModels(&fakeModels{}, "")

	resp, err := client.Generate(context.Background(), llm.Prompt{User: "data"})
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestToResponseFallsBackToFragments(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "thinking", Thought: true}}}},
			nil,
			{Content: nil},
		},
	}

	got := toResponse(resp)
	frag, ok := got.(llm.FragmentResponse)
	require.True(t, ok, "expected FragmentResponse, got %T", got)
	assert.Empty(t, frag.Fragments)
	assert.Equal(t, "", llm.ResponseText(got))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "  ", "", 0)
	assert.Error(t, err)
}

func TestToResponseScansLaterCandidates(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []*genai.Part{{Text: `{"a":`}, {Text: "1}"}}}},
		},
	}

	got := toResponse(resp)
	assert.Equal(t, llm.FragmentResponse{Fragments: []string{`{"a":`, "1}"}}, got)
	assert.Equal(t, `{"a":1}`, llm.ResponseText(got))
}
