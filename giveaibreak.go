package giveaibreak

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/flow"
	"github.com/aretw0/giveaibreak/pkg/ports"
	"github.com/aretw0/giveaibreak/pkg/scoring"
	"github.com/aretw0/giveaibreak/pkg/session"
	"github.com/google/uuid"
)

// Game is one play-through: a session store, the screen flow over it and the
// scoring service it talks to. A Game is owned by a single goroutine.
type Game struct {
	id      string
	service ports.PromptService
	store   *session.Store
	flow    *flow.Controller
	manager *session.Manager

	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	minLoading   time.Duration
	fallbackSlug string
	resetOnAgain bool
	shareURL     string

	prompt *flow.PromptSession
}

// Option configures a Game.
type Option func(*Game)

// WithSessionID sets the session ID. The default is a random UUID.
func WithSessionID(id string) Option {
	return func(g *Game) {
		if id != "" {
			g.id = id
		}
	}
}

// WithManager persists a snapshot after every state change.
func WithManager(m *session.Manager) Option {
	return func(g *Game) {
		g.manager = m
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Game) {
		g.hooks = g.hooks.Merge(hooks)
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithMinLoading overrides the minimum loading delay after a submit.
func WithMinLoading(d time.Duration) Option {
	return func(g *Game) {
		g.minLoading = d
	}
}

// WithFallbackSlug sets the prompt shown when the prompt list is empty.
func WithFallbackSlug(slug string) Option {
	return func(g *Game) {
		g.fallbackSlug = slug
	}
}

// WithResetOnAgain controls whether "again" clears the history. Default true.
func WithResetOnAgain(reset bool) Option {
	return func(g *Game) {
		g.resetOnAgain = reset
	}
}

// WithShareURL sets the link appended to the share text.
func WithShareURL(url string) Option {
	return func(g *Game) {
		g.shareURL = url
	}
}

// New creates a game on the Landing screen.
func New(svc ports.PromptService, opts ...Option) *Game {
	g := &Game{
		id:           uuid.NewString(),
		service:      svc,
		logger:       logging.NewNop(),
		minLoading:   flow.DefaultMinLoading,
		fallbackSlug: flow.DefaultFallbackSlug,
		resetOnAgain: true,
		shareURL:     scoring.DefaultShareURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("session_id", g.id)
	g.store = session.NewStore(session.WithStoreLogger(g.logger))
	g.flow = flow.NewController(g.store,
		flow.WithFallbackSlug(g.fallbackSlug),
		flow.WithResetOnAgain(g.resetOnAgain),
		flow.WithHooks(g.hooks),
		flow.WithLogger(g.logger),
	)
	return g
}

// ID returns the session ID.
func (g *Game) ID() string { return g.id }

// Service returns the scoring service.
func (g *Game) Service() ports.PromptService { return g.service }

// Controller returns the screen flow.
func (g *Game) Controller() *flow.Controller { return g.flow }

// Store returns the session store.
func (g *Game) Store() *session.Store { return g.store }

// MinLoading returns the minimum loading delay after a submit.
func (g *Game) MinLoading() time.Duration { return g.minLoading }

// Logger returns the session-scoped logger.
func (g *Game) Logger() *slog.Logger { return g.logger }

// Route returns the current screen.
func (g *Game) Route() flow.Route { return g.flow.Route() }

// Load fetches the prompt list. On failure the list stays empty and the
// fallback prompt is used after the intro.
func (g *Game) Load(ctx context.Context) error {
	return g.store.LoadFrom(ctx, g.service)
}

// Resume restores the persisted snapshot of this session, if any.
// It reports whether a snapshot was found.
func (g *Game) Resume(ctx context.Context) (bool, error) {
	if g.manager == nil {
		return false, nil
	}
	snap, err := g.manager.Load(ctx, g.id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := g.flow.Restore(ctx, snap); err != nil {
		return false, err
	}
	g.prompt = nil
	g.logger.Info("session resumed", "route", snap.Route, "answered", len(snap.State.ResponseHistory))
	return true, nil
}

// Start moves from Landing to Intro.
func (g *Game) Start(ctx context.Context) error { return g.dispatch(ctx, flow.ActionStart) }

// Okay moves from Intro to the first prompt.
func (g *Game) Okay(ctx context.Context) error { return g.dispatch(ctx, flow.ActionOkay) }

// Next leaves a scored prompt.
func (g *Game) Next(ctx context.Context) error { return g.dispatch(ctx, flow.ActionNext) }

// Again moves from Finish back to Landing.
func (g *Game) Again(ctx context.Context) error { return g.dispatch(ctx, flow.ActionAgain) }

func (g *Game) dispatch(ctx context.Context, action flow.Action) error {
	if err := g.flow.Dispatch(ctx, action); err != nil {
		return err
	}
	g.prompt = nil
	g.persist(ctx)
	return nil
}

// Enter deep-links to path (/, /intro, /finish or /prompt/{slug}).
func (g *Game) Enter(ctx context.Context, path string) error {
	if err := g.flow.EnterPath(ctx, path); err != nil {
		return err
	}
	g.prompt = nil
	g.persist(ctx)
	return nil
}

// PromptSession returns the driver of the current prompt screen, or nil
// outside Prompt routes.
func (g *Game) PromptSession() *flow.PromptSession {
	screen := g.flow.Prompt()
	if screen == nil {
		return nil
	}
	if g.prompt == nil || g.prompt.Screen() != screen {
		g.prompt = flow.NewPromptSession(screen, g.service,
			flow.WithMinLoading(g.minLoading),
			flow.WithSessionHooks(g.hooks),
			flow.WithSessionLogger(g.logger),
		)
	}
	return g.prompt
}

// Fetch loads the current prompt's detail.
func (g *Game) Fetch(ctx context.Context) (domain.Prompt, error) {
	ps := g.PromptSession()
	if ps == nil {
		return domain.Prompt{}, flow.ErrInvalidTransition
	}
	return ps.Fetch(ctx)
}

// Typed signals that the prompt description has been shown in full.
func (g *Game) Typed() {
	if screen := g.flow.Prompt(); screen != nil {
		screen.DescriptionTyped()
	}
}

// Submit sends response for the current prompt and blocks until the score
// can be shown. The recorded response is persisted.
func (g *Game) Submit(ctx context.Context, response string) (domain.Score, error) {
	ps := g.PromptSession()
	if ps == nil {
		return domain.Score{}, flow.ErrInvalidTransition
	}
	score, err := ps.Submit(ctx, response)
	if err != nil {
		return domain.Score{}, err
	}
	g.persist(ctx)
	return score, nil
}

// Retry reissues the failed fetch or submit of the current prompt.
func (g *Game) Retry(ctx context.Context) error {
	ps := g.PromptSession()
	if ps == nil {
		return nil
	}
	if err := ps.Retry(ctx); err != nil {
		return err
	}
	if ps.Screen().Mode() == flow.ModeScored {
		g.persist(ctx)
	}
	return nil
}

// Summary scores the history so far.
func (g *Game) Summary() scoring.Summary {
	return scoring.Summarize(g.store.History(), scoring.WithShareURL(g.shareURL))
}

// Snapshot captures the current route and state.
func (g *Game) Snapshot() *domain.Snapshot {
	return g.flow.Snapshot(g.id)
}

// Save persists the current snapshot. It is a no-op without a manager.
func (g *Game) Save(ctx context.Context) error {
	if g.manager == nil {
		return nil
	}
	return g.manager.Save(ctx, g.id, g.Snapshot())
}

// persist saves after a state change. Failures are logged; the game goes on.
func (g *Game) persist(ctx context.Context) {
	if err := g.Save(ctx); err != nil {
		g.logger.Warn("failed to persist session", "route", g.Route().String(), "err", err)
	}
}
