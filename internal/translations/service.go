package translations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"submission-backend/internal/shared/metrics"
	"submission-backend/internal/shared/storage/object"
	"submission-backend/internal/shared/telemetry"
	"submission-backend/internal/shared/util"
)

const contentTypeJSON = "application/json"

var ErrInvalidInput = errors.New("invalid input")

// Service writes translation bundles for a single target locale.
// Each export replaces the page's bundle in full; concurrent exports of the
// same page race and the last write wins.
type Service struct {
	Objects object.Store
	Prefix  string
	Locale  string
}

// NewService constructs a Service.
func NewService(objects object.Store, prefix, locale string) *Service {
	return &Service{Objects: objects, Prefix: prefix, Locale: locale}
}

// FileName returns the bundle file name for pageName. Names that would
// need rewriting to be a safe path segment are rejected.
func (s *Service) FileName(pageName string) (string, error) {
	if strings.TrimSpace(pageName) == "" {
		return "", fmt.Errorf("%w: pageName is required", ErrInvalidInput)
	}
	if util.SanitizeID(pageName) != pageName {
		return "", fmt.Errorf("%w: pageName may only contain letters, digits and hyphens", ErrInvalidInput)
	}
	return pageName + "-" + s.Locale + ".json", nil
}

// Export stores payload as the bundle for pageName and returns the file name
// that was written.
func (s *Service) Export(ctx context.Context, pageName string, payload json.RawMessage) (string, error) {
	file, err := s.FileName(pageName)
	if err != nil {
		return "", err
	}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", fmt.Errorf("%w: translations are required", ErrInvalidInput)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return "", fmt.Errorf("%w: translations must be valid JSON", ErrInvalidInput)
	}

	key := path.Join(s.Prefix, file)
	if err := s.Objects.Put(ctx, key, contentTypeJSON, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write translations: %w", err)
	}

	metrics.TranslationsExported.WithLabelValues(s.Locale).Inc()
	telemetry.Info("translations.saved", map[string]any{
		"key":    key,
		"locale": s.Locale,
		"bytes":  buf.Len(),
	})
	return file, nil
}
