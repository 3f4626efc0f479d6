package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/giveaibreak/internal/config"
	"github.com/aretw0/giveaibreak/internal/presentation/graph"
	"github.com/aretw0/giveaibreak/internal/validator"
	"github.com/aretw0/giveaibreak/pkg/adapters/memory"
	loamAdapter "github.com/aretw0/giveaibreak/pkg/adapters/loam"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/loam"
)

// ExportCatalog writes the built-in prompts into dir as loam documents, ready
// to be edited and served with serve.catalog_dir. It returns the exported slugs.
func ExportCatalog(ctx context.Context, dir string) ([]string, error) {
	builtin := memory.DefaultCatalog()
	slugs, err := builtin.Slugs(ctx)
	if err != nil {
		return nil, err
	}
	defs := make([]domain.PromptDefinition, 0, len(slugs))
	for _, slug := range slugs {
		def, err := builtin.Definition(ctx, slug)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	repo, err := loam.Init(dir, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", dir, err)
	}
	if err := loamAdapter.Export(ctx, loam.NewTypedRepository[loamAdapter.PromptMetadata](repo), defs...); err != nil {
		return nil, err
	}
	return slugs, nil
}

// ValidateCatalog opens the catalog in dir, or the built-in one when dir is
// empty, and checks every prompt.
func ValidateCatalog(ctx context.Context, dir string, logger *slog.Logger) error {
	catalog, _, err := OpenCatalog(ctx, dir, logger)
	if err != nil {
		return err
	}
	return validator.ValidateCatalog(ctx, catalog)
}

// Graph prints the screen flow of the catalog as Mermaid. When sessionID is
// set, the session's progress is overlaid.
func Graph(ctx context.Context, cfg config.Config, sessionID string, w io.Writer, logger *slog.Logger) error {
	catalog, _, err := OpenCatalog(ctx, cfg.Serve.CatalogDir, logger)
	if err != nil {
		return err
	}
	slugs, err := catalog.Slugs(ctx)
	if err != nil {
		return fmt.Errorf("list prompts: %w", err)
	}

	var overlay *graph.GraphOverlay
	if sessionID != "" {
		manager, closeStore, err := OpenManager(cfg.Store, logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()
		snap, err := manager.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("load session '%s': %w", sessionID, err)
		}
		overlay = graph.OverlayFor(snap)
	}

	_, err = fmt.Fprint(w, graph.GenerateMermaid(slugs, cfg.FallbackSlug, overlay))
	return err
}
