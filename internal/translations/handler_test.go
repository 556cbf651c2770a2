package translations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSaveTranslationsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		svc         *Service
		body        string
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{name: "saved", body: `{"pageName":"home","translations":{"title":"Hola"}}`, wantStatus: http.StatusOK, wantMessage: "Translations saved to home-es.json"},
		{name: "missing page", body: `{"translations":{"title":"Hola"}}`, wantStatus: http.StatusBadRequest, wantError: "Missing pageName or translations"},
		{name: "missing translations", body: `{"pageName":"home"}`, wantStatus: http.StatusBadRequest, wantError: "Missing pageName or translations"},
		{name: "unsafe page name", body: `{"pageName":"about_us","translations":{"title":"Hola"}}`, wantStatus: http.StatusBadRequest, wantError: "Missing pageName or translations"},
		{name: "malformed body", body: `{`, wantStatus: http.StatusBadRequest, wantError: "Invalid request body"},
		{name: "write failure", svc: NewService(failingStore{}, "translations", "es"), body: `{"pageName":"home","translations":{}}`, wantStatus: http.StatusInternalServerError, wantError: "Failed to save translations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := tt.svc
			if svc == nil {
				svc, _ = newTestService(t)
			}
			router := gin.New()
			NewHandler(svc).RegisterRoutes(router.Group("/api"))

			req := httptest.NewRequest(http.MethodPost, "/api/save-translations", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}
			var payload map[string]any
			if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if tt.wantError != "" && payload["error"] != tt.wantError {
				t.Fatalf("expected error %q, got %v", tt.wantError, payload["error"])
			}
			if tt.wantMessage != "" {
				if payload["success"] != true || payload["message"] != tt.wantMessage {
					t.Fatalf("unexpected payload: %v", payload)
				}
			}
		})
	}
}
