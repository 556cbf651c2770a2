package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	LogFormat          string
	CORSAllowOrigin    []string
	ObjectStoreType    string
	LocalStoreDir      string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
	SubmissionsPrefix  string
	TranslationsPrefix string
	TranslationLocale  string
	LLMProvider        string
	GeminiAPIKey       string
	GenAIModel         string
	GenAIWebSearch     bool
	GenAITimeoutSecs   int
	OpenAIAPIKey       string
	OpenAIModel        string
	EnrichQueueURL     string
	WorkerConcurrency  int
	QueueVisibilitySec int
	ShutdownTimeoutSec int
}

var defaults = map[string]any{
	"PORT":                           "8080",
	"ENV":                            "dev",
	"LOG_LEVEL":                      "info",
	"LOG_FORMAT":                     "json",
	"CORS_ALLOW_ORIGINS":             "http://localhost:3000",
	"OBJECT_STORE":                   "local",
	"LOCAL_STORE_DIR":                "./data",
	"AWS_REGION":                     "",
	"S3_BUCKET":                      "",
	"S3_PREFIX":                      "",
	"SSE_KMS_KEY_ID":                 "",
	"SUBMISSIONS_PREFIX":             "submissions",
	"TRANSLATIONS_PREFIX":            "translations",
	"TRANSLATION_LOCALE":             "es",
	"LLM_PROVIDER":                   "gemini",
	"GEMINI_API_KEY":                 "",
	"GENAI_MODEL":                    "gemini-2.5-flash",
	"GENAI_WEB_SEARCH":               true,
	"GENAI_TIMEOUT_SECONDS":          0,
	"OPENAI_API_KEY":                 "",
	"OPENAI_MODEL":                   "gpt-4o-mini",
	"ENRICH_QUEUE_URL":               "",
	"WORKER_CONCURRENCY":             4,
	"SQS_VISIBILITY_TIMEOUT_SECONDS": 300,
	"SHUTDOWN_TIMEOUT_SECONDS":       30,
}

// Load reads configuration from .env files, an optional config.yaml and
// environment variables, in increasing order of precedence.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig()

	return FromViper(v)
}

// FromViper builds a Config from an already-populated viper instance. Keys
// not set anywhere fall back to defaults; the environment always wins.
func FromViper(v *viper.Viper) Config {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, def := range defaults {
		v.SetDefault(key, def)
	}

	return Config{
		Port:               v.GetString("PORT"),
		Env:                normalizeEnv(v.GetString("ENV")),
		LogLevel:           strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		LogFormat:          strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		CORSAllowOrigin:    splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		ObjectStoreType:    normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:      v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:          v.GetString("AWS_REGION"),
		S3Bucket:           v.GetString("S3_BUCKET"),
		S3Prefix:           v.GetString("S3_PREFIX"),
		SSEKMSKeyID:        v.GetString("SSE_KMS_KEY_ID"),
		SubmissionsPrefix:  strings.Trim(v.GetString("SUBMISSIONS_PREFIX"), "/"),
		TranslationsPrefix: strings.Trim(v.GetString("TRANSLATIONS_PREFIX"), "/"),
		TranslationLocale:  strings.TrimSpace(v.GetString("TRANSLATION_LOCALE")),
		LLMProvider:        normalizeProvider(v.GetString("LLM_PROVIDER")),
		GeminiAPIKey:       strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		GenAIModel:         strings.TrimSpace(v.GetString("GENAI_MODEL")),
		GenAIWebSearch:     v.GetBool("GENAI_WEB_SEARCH"),
		GenAITimeoutSecs:   v.GetInt("GENAI_TIMEOUT_SECONDS"),
		OpenAIAPIKey:       strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIModel:        strings.TrimSpace(v.GetString("OPENAI_MODEL")),
		EnrichQueueURL:     strings.TrimSpace(v.GetString("ENRICH_QUEUE_URL")),
		WorkerConcurrency:  v.GetInt("WORKER_CONCURRENCY"),
		QueueVisibilitySec: v.GetInt("SQS_VISIBILITY_TIMEOUT_SECONDS"),
		ShutdownTimeoutSec: v.GetInt("SHUTDOWN_TIMEOUT_SECONDS"),
	}
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		// Missing files are expected outside local development.
		_ = godotenv.Load(path)
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}
