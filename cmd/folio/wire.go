package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/folio/internal/adapters/driven/ai"
	"github.com/custodia-labs/folio/internal/adapters/driven/auth/jwt"
	"github.com/custodia-labs/folio/internal/adapters/driven/blob"
	"github.com/custodia-labs/folio/internal/adapters/driven/config/file"
	"github.com/custodia-labs/folio/internal/adapters/driven/pdf"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/folio/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/folio/internal/adapters/driving/cli"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/postprocessors"
)

// application owns the wired services and the resources behind them.
type application struct {
	services cli.Services
	closers  []func()
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// wire builds every service it can. Settings are always available so
// 'folio config' works on a broken setup; the remaining services are left
// nil when their providers cannot be created, and the error says why.
func wire(ctx context.Context) (*application, error) {
	app := &application{}

	configDir, err := file.DefaultDir()
	if err != nil {
		return app, err
	}
	if err := file.LoadDotEnv(".env", filepath.Join(configDir, ".env")); err != nil {
		logger.Warn("loading .env: %v", err)
	}

	fileStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return app, err
	}
	settingsService := services.NewSettingsService(
		file.NewEnvStore(fileStore),
		ai.NewConfigValidator(),
		filepath.Join(configDir, "data"),
	)
	app.services.Settings = settingsService

	settings, err := settingsService.Get()
	if err != nil {
		return app, err
	}
	logger.Debug("data directory: %s", settings.DataDir)

	if settings.Auth.SecretKey != "" {
		identity, err := jwt.New(settings.Auth)
		if err != nil {
			logger.Warn("token signing disabled: %v", err)
		} else {
			app.services.Identity = identity
		}
	}

	aiServices, err := ai.NewServices(ctx, settings)
	if err != nil {
		return app, fmt.Errorf("ai providers: %w", err)
	}
	app.closers = append(app.closers, aiServices.Close)

	objects, err := blob.NewObjectStore(ctx, settings.Storage)
	if err != nil {
		return app, fmt.Errorf("durable storage: %w", err)
	}
	durable := blob.NewDurableStore(objects)

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return app, fmt.Errorf("assistant store: %w", err)
	}
	app.closers = append(app.closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing assistant store: %v", err)
		}
	})

	loader := pdf.New()
	if err := loader.CheckAvailable(); err != nil {
		logger.Warn("%v\n%s", err, pdf.InstallInstructions())
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return app, fmt.Errorf("prompts: %w", err)
	}

	indexes := flat.Store{}
	workRoot := filepath.Join(settings.DataDir, services.WorkDirName)

	builder := services.NewIndexBuilder(loader, registry, aiServices.Embedding, indexes, workRoot)
	cache := services.NewKnowledgeBaseCache(
		filepath.Join(settings.DataDir, services.CacheDirName),
		durable,
		indexes,
		aiServices.Embedding,
		services.WithFreshnessCheck(settings.Cache.VerifyFreshness),
	)

	app.services.Responder = services.NewResponder(store, cache, aiServices.LLM, prompts)
	app.services.Assistants = services.NewAssistantService(
		store,
		builder,
		durable,
		cache,
		services.NewWorkspace(workRoot),
		filepath.Join(settings.DataDir, services.UploadDirName),
	)
	return app, nil
}
