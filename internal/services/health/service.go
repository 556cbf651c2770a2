package health

// Service encapsulates health-related checks.
type Service struct {
	provider      string
	llmConfigured bool
}

// NewService constructs a new health service. provider names the configured
// generation backend; llmConfigured reports whether its credentials are set.
func NewService(provider string, llmConfigured bool) *Service {
	return &Service{provider: provider, llmConfigured: llmConfigured}
}

// Status returns the health payload. The process is healthy even without
// credentials; enrichment requests then fail with a configuration error.
func (s *Service) Status() map[string]any {
	return map[string]any{
		"ok":            true,
		"llmProvider":   s.provider,
		"llmConfigured": s.llmConfigured,
	}
}
