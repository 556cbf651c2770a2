package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"submission-backend/internal/llm"
	"submission-backend/internal/recommendations"
	"submission-backend/internal/shared/config"
	localstore "submission-backend/internal/shared/storage/object/local"
)

type stubGenerator struct {
	text string
}

func (s stubGenerator) Generate(ctx context.Context, prompt llm.Prompt) (llm.Response, error) {
	return llm.TextResponse{Text: s.text}, nil
}

func testConfig(dir string) config.Config {
	return config.Config{
		Env:                "dev",
		ObjectStoreType:    "local",
		LocalStoreDir:      dir,
		SubmissionsPrefix:  "submissions",
		TranslationsPrefix: "translations",
		TranslationLocale:  "es",
		LLMProvider:        "gemini",
		GenAIModel:         "gemini-2.5-flash",
	}
}

func do(t *testing.T, app *App, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	var payload map[string]any
	if strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	}
	return resp, payload
}

func TestBuildWithoutAPIKeyStartsAndReportsConfigError(t *testing.T) {
	app, err := Build(testConfig(t.TempDir()))
	require.NoError(t, err)
	assert.Nil(t, app.LLM)

	resp, payload := do(t, app, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, payload["ok"])
	assert.Equal(t, false, payload["llmConfigured"])

	resp, payload = do(t, app, http.MethodPost, "/api/recommend-formats", `{"submissionData":{"a":1}}`)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Server configuration error", payload["error"])
	assert.Equal(t, "GEMINI_API_KEY is not configured", payload["message"])
}

func TestBuildOpenAIProviderWithoutKeyNamesItsSetting(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.LLMProvider = "openai"

	app, err := Build(cfg)
	require.NoError(t, err)

	_, payload := do(t, app, http.MethodPost, "/api/recommend-formats", `{"submissionData":{}}`)
	assert.Equal(t, "OPENAI_API_KEY is not configured", payload["message"])
}

func TestRequireLLM(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.LLMProvider = "openai"

	app, err := Build(cfg)
	require.NoError(t, err)
	var missing *recommendations.MissingConfigError
	require.ErrorAs(t, app.RequireLLM(), &missing)
	assert.Equal(t, "OPENAI_API_KEY", missing.Setting)

	app, err = BuildWithOptions(context.Background(), testConfig(t.TempDir()), Options{LLM: stubGenerator{text: "{}"}})
	require.NoError(t, err)
	assert.NoError(t, app.RequireLLM())
}

func TestBuildS3RequiresBucket(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.ObjectStoreType = "s3"

	_, err := Build(cfg)
	require.Error(t, err)
}

func TestEndToEndEnrichmentAndExport(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	app, err := BuildWithOptions(context.Background(), cfg, Options{
		Store: localstore.New(dir),
		LLM:   stubGenerator{text: "```json\n{\"company_name\":\"Acme\"}\n```"},
	})
	require.NoError(t, err)

	recordPath := filepath.Join(dir, "submissions", "sub-1.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(recordPath), 0o755))
	require.NoError(t, os.WriteFile(recordPath, []byte(`{"growthReport":{"score":3}}`), 0o644))

	resp, payload := do(t, app, http.MethodPost, "/api/recommend-formats", `{"submissionId":"sub-1"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))

	resp, payload = do(t, app, http.MethodGet, "/api/submissions/sub-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	data := payload["data"].(map[string]any)
	assert.Contains(t, data, "growthReport")
	assert.Equal(t, map[string]any{"company_name": "Acme"}, data["formatRecommendations"])

	resp, payload = do(t, app, http.MethodPost, "/api/save-translations", `{"pageName":"home","translations":{"title":"Hola"}}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Translations saved to home-es.json", payload["message"])
	assert.FileExists(t, filepath.Join(dir, "translations", "home-es.json"))

	resp, _ = do(t, app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "translations_exported_total")
}
