package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/ports"
)

// Local serves prompts from a catalog and scores with a scorer.
// Safe for concurrent use.
type Local struct {
	catalog ports.Catalog
	scorer  ports.Scorer
	logger  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures Local.
type Option func(*Local)

// WithSeed makes variation picks deterministic.
func WithSeed(seed uint64) Option {
	return func(l *Local) {
		l.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Local) {
		l.logger = logger
	}
}

// New creates a local service. A nil scorer falls back to KeywordScorer.
func New(catalog ports.Catalog, scorer ports.Scorer, opts ...Option) *Local {
	if scorer == nil {
		scorer = NewKeywordScorer()
	}
	l := &Local{
		catalog: catalog,
		scorer:  scorer,
		logger:  logging.NewNop(),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ListPrompts returns the catalog order.
func (l *Local) ListPrompts(ctx context.Context) ([]string, error) {
	return l.catalog.Slugs(ctx)
}

// GetPrompt instantiates slug with a random variation.
func (l *Local) GetPrompt(ctx context.Context, slug string) (domain.Prompt, error) {
	def, err := l.catalog.Definition(ctx, slug)
	if err != nil {
		return domain.Prompt{}, err
	}
	return def.Instantiate(l.pick(len(def.Variations))), nil
}

func (l *Local) pick(n int) int {
	if n <= 1 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

// Submit scores a response to the variation it was given for.
func (l *Local) Submit(ctx context.Context, slug string, sub domain.Submission) (domain.Score, error) {
	def, err := l.catalog.Definition(ctx, slug)
	if err != nil {
		return domain.Score{}, err
	}
	if strings.TrimSpace(sub.Response) == "" {
		return domain.Score{}, fmt.Errorf("%w: empty response", ErrBadSubmission)
	}

	variation := def.Instantiate(sub.VariationIndex).Variation
	score, err := l.scorer.Score(ctx, def, variation, sub.Response)
	if err != nil {
		return domain.Score{}, fmt.Errorf("score %s: %w", slug, err)
	}
	score.Stars = domain.ClampStars(score.Stars)
	l.logger.Debug("response scored", "slug", slug, "stars", score.Stars)
	return score, nil
}
