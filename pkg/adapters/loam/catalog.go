// Package loam serves the prompt catalog from a directory of markdown documents.
package loam

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/ports"
	"github.com/aretw0/loam"
)

// Repository is the typed loam repository the catalog reads.
type Repository = loam.TypedRepository[PromptMetadata]

// Catalog is a ports.Catalog backed by loam. Documents are read on first use
// and again on Reload.
type Catalog struct {
	repo   *Repository
	logger *slog.Logger

	mu     sync.RWMutex
	loaded bool
	order  []string
	defs   map[string]domain.PromptDefinition
}

var _ ports.Catalog = (*Catalog)(nil)

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// New wraps a typed repository.
func New(repo *Repository, opts ...Option) *Catalog {
	c := &Catalog{
		repo:   repo,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open initialises a loam repository in dir without versioning.
func Open(dir string, opts ...Option) (*Catalog, error) {
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", dir, err)
	}
	return New(loam.NewTypedRepository[PromptMetadata](repo), opts...), nil
}

// Reload re-reads every document. On error the previous catalog stays in place.
func (c *Catalog) Reload(ctx context.Context) error {
	docs, err := c.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loam list failed: %w", err)
	}

	type entry struct {
		order int
		def   domain.PromptDefinition
	}
	seen := make(map[string]string, len(docs))
	entries := make([]entry, 0, len(docs))
	for _, doc := range docs {
		slug := doc.Data.Slug
		if slug == "" {
			slug = trimExtension(doc.ID)
		}
		if prev, ok := seen[slug]; ok {
			return fmt.Errorf("collision detected: slug '%s' is defined in both '%s' and '%s'", slug, prev, doc.ID)
		}
		seen[slug] = doc.ID

		variations, err := decodeVariations(doc.Data.Variations)
		if err != nil {
			return fmt.Errorf("prompt %s: %w", slug, err)
		}
		desc := doc.Data.Description
		if desc == "" {
			desc = strings.TrimSpace(doc.Content)
		}
		entries = append(entries, entry{
			order: doc.Data.Order,
			def: domain.PromptDefinition{
				Slug:        slug,
				Description: desc,
				Variations:  variations,
				Keywords:    doc.Data.Keywords,
			},
		})
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Or(cmp.Compare(a.order, b.order), strings.Compare(a.def.Slug, b.def.Slug))
	})

	order := make([]string, 0, len(entries))
	defs := make(map[string]domain.PromptDefinition, len(entries))
	for _, e := range entries {
		order = append(order, e.def.Slug)
		defs[e.def.Slug] = e.def
	}

	c.mu.Lock()
	c.order, c.defs, c.loaded = order, defs, true
	c.mu.Unlock()
	c.logger.Info("catalog loaded", "prompts", len(order))
	return nil
}

func (c *Catalog) ensure(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Reload(ctx)
}

// Slugs returns the slugs ordered by the order key, then by slug.
func (c *Catalog) Slugs(ctx context.Context) ([]string, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order), nil
}

// Definition returns the prompt for slug.
func (c *Catalog) Definition(ctx context.Context, slug string) (domain.PromptDefinition, error) {
	if err := c.ensure(ctx); err != nil {
		return domain.PromptDefinition{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[slug]
	if !ok {
		return domain.PromptDefinition{}, fmt.Errorf("%w: %s", domain.ErrPromptNotFound, slug)
	}
	return def, nil
}

// Watch reloads the catalog whenever a document changes and reports the
// changed document IDs. The channel closes when ctx is done.
func (c *Catalog) Watch(ctx context.Context) (<-chan string, error) {
	events, err := c.repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				if err := c.Reload(ctx); err != nil {
					c.logger.Warn("catalog reload failed", "doc", evt.ID, "err", err)
					continue
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// Export writes defs as documents, numbering them in the given order.
func Export(ctx context.Context, repo *Repository, defs ...domain.PromptDefinition) error {
	for i, def := range defs {
		doc := &loam.DocumentModel[PromptMetadata]{
			ID:      def.Slug,
			Content: def.Description,
			Data: PromptMetadata{
				Slug:       def.Slug,
				Order:      i + 1,
				Variations: encodeVariations(def.Variations),
				Keywords:   def.Keywords,
			},
		}
		if err := repo.Save(ctx, doc); err != nil {
			return fmt.Errorf("save %s: %w", def.Slug, err)
		}
	}
	return nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
