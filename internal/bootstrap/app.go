package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"submission-backend/internal/llm"
	"submission-backend/internal/llm/gemini"
	"submission-backend/internal/llm/openai"
	"submission-backend/internal/queue"
	"submission-backend/internal/recommendations"
	"submission-backend/internal/services/health"
	"submission-backend/internal/shared/config"
	"submission-backend/internal/shared/server"
	"submission-backend/internal/shared/storage/object"
	localstore "submission-backend/internal/shared/storage/object/local"
	s3store "submission-backend/internal/shared/storage/object/s3"
	"submission-backend/internal/shared/telemetry"
	"submission-backend/internal/submissions"
	"submission-backend/internal/translations"
)

// App holds shared dependencies.
type App struct {
	Config                 config.Config
	Router                 *gin.Engine
	Store                  object.Store
	LLM                    llm.Generator
	Jobs                   queue.Sender
	Submissions            *submissions.Store
	RecommendationsService *recommendations.Service
	TranslationsService    *translations.Service
	RecommendationHandler  *recommendations.Handler
	SubmissionHandler      *submissions.Handler
	TranslationHandler     *translations.Handler
	Health                 *health.Service
}

// Options overrides pieces of the dependency graph, mainly for tests.
type Options struct {
	Store object.Store
	LLM   llm.Generator
	Jobs  queue.Sender
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	return BuildWithOptions(context.Background(), cfg, Options{})
}

// BuildWithOptions is Build with injectable dependencies. A nil field in opts
// is constructed from cfg.
func BuildWithOptions(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.TranslationLocale) == "" {
		cfg.TranslationLocale = "es"
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	gen := opts.LLM
	if gen == nil {
		var err error
		gen, err = buildGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	jobs := opts.Jobs
	if jobs == nil && cfg.EnrichQueueURL != "" {
		client, err := queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.EnrichQueueURL)
		if err != nil {
			return nil, err
		}
		jobs = client
	}

	app := &App{
		Config: cfg,
		Store:  store,
		LLM:    gen,
		Jobs:   jobs,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:                app.Config,
		Health:                app.Health,
		RecommendationHandler: app.RecommendationHandler,
		SubmissionHandler:     app.SubmissionHandler,
		TranslationHandler:    app.TranslationHandler,
	})

	return app, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildGenerator returns nil without error when the provider's API key is
// missing, so the server still starts and enrichment reports the gap.
func buildGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	timeout := time.Duration(cfg.GenAITimeoutSecs) * time.Second

	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"setting": "OPENAI_API_KEY"})
			return nil, nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, timeout)
	default:
		if cfg.GeminiAPIKey == "" {
			telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"setting": "GEMINI_API_KEY"})
			return nil, nil
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GenAIModel, timeout)
	}
}

// RequireLLM reports a *recommendations.MissingConfigError when no model
// client was built. Queue consumers call it before taking any work.
func (a *App) RequireLLM() error {
	if a.LLM == nil {
		return &recommendations.MissingConfigError{Setting: apiKeySetting(a.Config.LLMProvider)}
	}
	return nil
}

func apiKeySetting(provider string) string {
	if provider == "openai" {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

func buildServices(app *App) error {
	subStore := submissions.NewStore(app.Store, app.Config.SubmissionsPrefix)

	recSvc := &recommendations.Service{
		Store:         subStore,
		LLM:           app.LLM,
		WebSearch:     app.Config.GenAIWebSearch,
		APIKeySetting: apiKeySetting(app.Config.LLMProvider),
		Jobs:          app.Jobs,
	}
	trSvc := translations.NewService(app.Store, app.Config.TranslationsPrefix, app.Config.TranslationLocale)

	provider := app.Config.LLMProvider
	if provider == "" {
		provider = "gemini"
	}

	app.Submissions = subStore
	app.RecommendationsService = recSvc
	app.TranslationsService = trSvc
	app.RecommendationHandler = recommendations.NewHandler(recSvc)
	app.SubmissionHandler = submissions.NewHandler(subStore)
	app.TranslationHandler = translations.NewHandler(trSvc)
	app.Health = health.NewService(provider, app.LLM != nil)

	if app.RecommendationHandler == nil || app.SubmissionHandler == nil || app.TranslationHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
