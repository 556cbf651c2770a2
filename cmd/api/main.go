package main

import (
	"os"

	"submission-backend/internal/bootstrap"
	"submission-backend/internal/shared/config"
	"submission-backend/internal/shared/server"
	"submission-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	defer telemetry.Sync()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err})
		telemetry.Sync()
		os.Exit(1)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{
		"addr":         addr,
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"llm_provider": cfg.LLMProvider,
	})

	if err := app.Router.Run(addr); err != nil {
		telemetry.Error("server.error", map[string]any{"error": err})
		telemetry.Sync()
		os.Exit(1)
	}
}
