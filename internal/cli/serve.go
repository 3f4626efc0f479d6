package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/giveaibreak"
	"github.com/aretw0/giveaibreak/internal/config"
	httpAdapter "github.com/aretw0/giveaibreak/pkg/adapters/http"
	"github.com/aretw0/giveaibreak/pkg/observability"
	"github.com/aretw0/giveaibreak/pkg/service"
)

// ShutdownTimeout bounds the graceful shutdown of the stub server.
const ShutdownTimeout = 5 * time.Second

// ServeOptions are the flags of the stub server.
type ServeOptions struct {
	// Watch reloads the catalog directory when its documents change.
	Watch bool
}

// Serve runs the stub scoring service until ctx is cancelled.
func Serve(ctx context.Context, cfg config.Config, opts ServeOptions, logger *slog.Logger) error {
	catalog, watchable, err := OpenCatalog(ctx, cfg.Serve.CatalogDir, logger)
	if err != nil {
		return err
	}
	scorer, kind, err := NewScorer(cfg.Serve, logger)
	if err != nil {
		return err
	}

	svcOpts := []service.Option{service.WithLogger(logger)}
	if cfg.Serve.Seed != 0 {
		svcOpts = append(svcOpts, service.WithSeed(cfg.Serve.Seed))
	}
	svc := service.New(catalog, scorer, svcOpts...)

	metrics := observability.NewMetrics()
	handler, err := httpAdapter.NewHandler(svc,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetrics(metrics),
		httpAdapter.WithVersion(giveaibreak.Version),
	)
	if err != nil {
		return err
	}

	if opts.Watch {
		if watchable == nil {
			return errors.New("--watch needs serve.catalog_dir")
		}
		changes, err := watchable.Watch(ctx)
		if err != nil {
			return err
		}
		go func() {
			for id := range changes {
				logger.Info("catalog reloaded", "doc", id)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("stub server listening", "addr", srv.Addr, "scorer", kind, "catalog", cfg.Serve.CatalogDir)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down stub server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		return nil
	}
}
