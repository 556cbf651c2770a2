package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"submission-backend/internal/llm"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Models is the subset of *genai.Models used by Client.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Generator on top of the Gemini API.
type Client struct {
	models Models
	model  string
}

// NewClient constructs a Gemini client. timeout <= 0 leaves request
// lifetime to the caller's context.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: timeout}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return NewWithModels(client.Models, model), nil
}

// NewWithModels wraps an existing models service.
func NewWithModels(models Models, model string) *Client {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt to Gemini. Web search grounding is attached as a
// built-in tool when requested.
func (c *Client) Generate(ctx context.Context, prompt llm.Prompt) (llm.Response, error) {
	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(prompt.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}
	if prompt.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt.User, genai.RoleUser),
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil {
		return nil, nil
	}
	return toResponse(resp), nil
}

func toResponse(resp *genai.GenerateContentResponse) llm.Response {
	if text := resp.Text(); text != "" {
		return llm.TextResponse{Text: text}
	}

	var fragments []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			fragments = append(fragments, part.Text)
		}
	}
	return llm.FragmentResponse{Fragments: fragments}
}

var _ llm.Generator = (*Client)(nil)
