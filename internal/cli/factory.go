package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/giveaibreak/internal/config"
	"github.com/aretw0/giveaibreak/pkg/adapters/file"
	httpAdapter "github.com/aretw0/giveaibreak/pkg/adapters/http"
	loamAdapter "github.com/aretw0/giveaibreak/pkg/adapters/loam"
	"github.com/aretw0/giveaibreak/pkg/adapters/memory"
	openaiAdapter "github.com/aretw0/giveaibreak/pkg/adapters/openai"
	"github.com/aretw0/giveaibreak/pkg/adapters/process"
	redisAdapter "github.com/aretw0/giveaibreak/pkg/adapters/redis"
	"github.com/aretw0/giveaibreak/pkg/adapters/sqlite"
	"github.com/aretw0/giveaibreak/pkg/persistence/middleware"
	"github.com/aretw0/giveaibreak/pkg/ports"
	"github.com/aretw0/giveaibreak/pkg/service"
	"github.com/aretw0/giveaibreak/pkg/session"
)

// Closer releases what a factory opened.
type Closer func() error

func nopCloser() error { return nil }

// OpenManager builds the session manager described by cfg.Store, wrapped in
// the redaction and encryption middlewares when they are configured.
func OpenManager(cfg config.StoreConfig, logger *slog.Logger) (*session.Manager, Closer, error) {
	var (
		store  ports.StateStore
		closer Closer = nopCloser
		opts          = []session.Option{session.WithLogger(logger)}
	)

	switch cfg.Driver {
	case config.DriverMemory:
		store = memory.NewStore()
	case config.DriverFile:
		store = file.New(cfg.Path)
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		store, closer = s, s.Close
	case config.DriverRedis:
		s := redisAdapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redisAdapter.WithPrefix(cfg.Prefix),
			redisAdapter.WithTTL(cfg.TTL),
		)
		store, closer = s, s.Close
		opts = append(opts, session.WithLocker(redisAdapter.NewLocker(s.Client(), s.Prefix())))
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	mws, err := storeMiddlewares(cfg)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	return session.NewManager(middleware.Chain(store, mws...), opts...), closer, nil
}

// storeMiddlewares returns redaction before encryption, so masking sees plain text.
func storeMiddlewares(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if cfg.Redact {
		patterns := cfg.RedactPatterns
		if len(patterns) == 0 {
			patterns = middleware.DefaultRedactPatterns
		}
		mw, err := middleware.NewRedactMiddleware(patterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if cfg.EncryptionKey != "" {
		active, err := config.DecodeKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("store.encryption_key: %w", err)
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for _, k := range cfg.FallbackKeys {
			key, err := config.DecodeKey(k)
			if err != nil {
				return nil, fmt.Errorf("store.fallback_keys: %w", err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mw, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

// NewPromptService returns the service the game talks to: the remote API, or
// the built-in catalog with keyword scoring when cfg.Offline is set.
func NewPromptService(cfg config.Config, logger *slog.Logger) (ports.PromptService, error) {
	if cfg.Offline {
		return service.New(memory.DefaultCatalog(), service.NewKeywordScorer(), service.WithLogger(logger)), nil
	}
	return httpAdapter.NewClient(cfg.ServerURL,
		httpAdapter.WithTimeout(cfg.RequestTimeout),
		httpAdapter.WithClientLogger(logger),
	)
}

// OpenCatalog returns the loam catalog in dir, or the built-in prompts when dir is empty.
func OpenCatalog(ctx context.Context, dir string, logger *slog.Logger) (ports.Catalog, *loamAdapter.Catalog, error) {
	if dir == "" {
		return memory.DefaultCatalog(), nil, nil
	}
	c, err := loamAdapter.Open(dir, loamAdapter.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	if err := c.Reload(ctx); err != nil {
		return nil, nil, fmt.Errorf("load catalog %s: %w", dir, err)
	}
	return c, c, nil
}

// NewScorer picks the scorer of the stub server: an external command when
// serve.scorer_file is set, then OpenAI when a key is configured, then keywords.
func NewScorer(cfg config.ServeConfig, logger *slog.Logger) (ports.Scorer, string, error) {
	switch {
	case cfg.ScorerFile != "":
		pc, err := process.LoadConfig(cfg.ScorerFile)
		if err != nil {
			return nil, "", err
		}
		return process.NewScorer(pc), "process", nil
	case cfg.OpenAIAPIKey != "":
		s, err := openaiAdapter.New(openaiAdapter.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		}, nil, openaiAdapter.WithLogger(logger))
		if err != nil {
			return nil, "", err
		}
		return s, "openai", nil
	default:
		return service.NewKeywordScorer(), "keyword", nil
	}
}
