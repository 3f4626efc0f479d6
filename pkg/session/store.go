package session

import (
	"context"
	"log/slog"
	"slices"

	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
)

// PromptLister fetches the ordered list of prompt slugs.
type PromptLister interface {
	ListPrompts(ctx context.Context) ([]string, error)
}

// Store is the single source of truth for one run: prompt order, position and answers.
// It is owned by one goroutine and is not safe for concurrent use; server-side callers
// serialise access through a Manager.
type Store struct {
	state  domain.SessionState
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger configures the logger used for swallowed fetch errors.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the prompt list.
func (s *Store) Load(prompts []string) {
	s.state.Prompts = slices.Clone(prompts)
}

// LoadFrom fetches the prompt list and loads it. A failed fetch is logged and
// leaves the current list untouched (empty on a fresh store); callers treat an
// empty list as "not ready". The error is returned for callers that want to retry.
func (s *Store) LoadFrom(ctx context.Context, lister PromptLister) error {
	prompts, err := lister.ListPrompts(ctx)
	if err != nil {
		s.logger.Error("failed to fetch prompts", "err", err)
		return err
	}
	s.Load(prompts)
	s.logger.Debug("prompts loaded", "count", len(prompts))
	return nil
}

// Advance sets the current position. The index must be within 0..len(prompts);
// the store does not check it.
func (s *Store) Advance(index int) {
	s.state.CurrentPromptIndex = index
}

// Record appends one scored interaction. Calling it twice for the same prompt
// appends twice.
func (s *Store) Record(prompt, userResponse, aiResponse string, stars int) {
	s.state.ResponseHistory = append(s.state.ResponseHistory, domain.ResponseRecord{
		Prompt:       prompt,
		UserResponse: userResponse,
		AIResponse:   aiResponse,
		Stars:        stars,
	})
}

// Reset clears the history and rewinds to the first prompt. The prompt list is kept.
func (s *Store) Reset() {
	s.state.ResponseHistory = nil
	s.state.CurrentPromptIndex = 0
}

// Restore replaces the whole state, e.g. from a persisted snapshot.
func (s *Store) Restore(state domain.SessionState) {
	s.state = state.Clone()
}

// Ready reports whether prompts have been loaded.
func (s *Store) Ready() bool {
	return len(s.state.Prompts) > 0
}

// Prompts returns a copy of the ordered prompt slugs.
func (s *Store) Prompts() []string {
	return slices.Clone(s.state.Prompts)
}

// CurrentIndex returns the current position.
func (s *Store) CurrentIndex() int {
	return s.state.CurrentPromptIndex
}

// History returns a copy of the response history in submission order.
func (s *Store) History() []domain.ResponseRecord {
	return slices.Clone(s.state.ResponseHistory)
}

// IndexOf returns the position of slug in the prompt list, or -1.
func (s *Store) IndexOf(slug string) int {
	return slices.Index(s.state.Prompts, slug)
}

// Snapshot returns a deep copy of the state.
func (s *Store) Snapshot() domain.SessionState {
	return s.state.Clone()
}
