// Package app wires configuration into the storage, provider and service
// layers shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/analysis"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/config"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm/ollama"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm/openai"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm/perplexity"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/logging"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/repository"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/search"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/services"
)

// App holds the constructed dependencies.
type App struct {
	Config   *config.Config
	Logger   *logging.Logger
	Store    repository.Repository
	Registry *llm.Registry
	Searcher *search.Client
	Executor *analysis.Executor
	Sections *services.SectionService
	Thoughts *services.ThoughtService

	closers []func()
}

// New builds an App from cfg. Close must be called to release the store.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	a := &App{Config: cfg, Logger: logger}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	a.Registry = NewRegistry(cfg, logger)
	a.Searcher = search.NewClient(search.Config{
		Endpoint:  cfg.Search.Endpoint,
		Timeout:   cfg.Search.Timeout,
		CacheSize: cfg.Search.CacheSize,
		CacheTTL:  cfg.Search.CacheTTL,
	}, logger)
	a.Executor = analysis.NewExecutor(a.Registry, a.Searcher, logger)
	a.Sections = services.NewSectionService(store, logger)
	a.Thoughts = services.NewThoughtService(store, a.Sections, a.Executor,
		analysis.NewQuickAnalyzer(a.Registry, logger), analysis.NewChat(a.Registry, logger), logger)
	return a, nil
}

// Close releases held resources.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewRegistry registers the three providers in fallback order and selects
// the configured active one without probing it.
func NewRegistry(cfg *config.Config, logger *logging.Logger) *llm.Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	reg := llm.NewRegistry(logger)

	ol := ollama.New(ollama.Config{BaseURL: cfg.AI.Ollama.BaseURL, Model: cfg.AI.Ollama.Model})
	oa := openai.New(openai.Config{APIKey: cfg.AI.OpenAI.APIKey, BaseURL: cfg.AI.OpenAI.BaseURL, Model: cfg.AI.OpenAI.Model})
	px := perplexity.New(perplexity.Config{APIKey: cfg.AI.Perplexity.APIKey, BaseURL: cfg.AI.Perplexity.BaseURL, Model: cfg.AI.Perplexity.Model})

	middleware := func(s config.ProviderSettings) []llm.Middleware {
		return []llm.Middleware{
			llm.WithLogging(logger),
			llm.WithRateLimit(s.RPS, s.Burst),
			llm.WithTimeout(cfg.AI.RequestTimeout),
		}
	}
	reg.Register(ol.ProviderConfig(), ol, middleware(cfg.AI.Ollama)...)
	reg.Register(oa.ProviderConfig(), oa, middleware(cfg.AI.OpenAI)...)
	reg.Register(px.ProviderConfig(), px, middleware(cfg.AI.Perplexity)...)

	if err := reg.SetActive(cfg.AI.ActiveProvider); err != nil {
		logger.Warn("configured provider is not registered, using ollama", "provider", cfg.AI.ActiveProvider)
		_ = reg.SetActive(ollama.ProviderID)
	}
	for _, p := range reg.Providers() {
		logger.Info("AI provider registered", "provider", p.ID, "model", p.DefaultModel, "configured", p.Configured, "active", p.Active)
	}
	return reg
}

func (a *App) openStore(ctx context.Context) (repository.Repository, error) {
	cfg := a.Config
	var store repository.Repository

	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		pool, err := initDatabase(ctx, cfg, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		pg := repository.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		store = pg
	case config.StorageS3:
		s3, err := repository.NewS3Store(repository.S3Config{
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Bucket:    cfg.Storage.S3.Bucket,
			Region:    cfg.Storage.S3.Region,
			UseSSL:    cfg.Storage.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		store = s3
	default:
		fs, err := repository.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		store = fs
	}
	a.Logger.Info("storage ready", "backend", cfg.Storage.Backend)

	if cfg.Storage.CacheSize <= 0 {
		return store, nil
	}
	return repository.NewCached(store, cfg.Storage.CacheSize)
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection")

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
