package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/session"
)

// DefaultFallbackSlug is shown after the intro when no prompts were loaded.
const DefaultFallbackSlug = "friendly-email"

// ErrInvalidTransition is returned when an action is not allowed on the current screen.
var ErrInvalidTransition = errors.New("invalid transition")

// Action is a user action that moves between screens.
type Action string

const (
	ActionStart Action = "start"
	ActionOkay  Action = "okay"
	ActionNext  Action = "next"
	ActionAgain Action = "again"
)

// Controller sequences Landing, Intro, Prompt[slug] and Finish.
type Controller struct {
	store  *session.Store
	route  Route
	prompt *PromptScreen

	fallbackSlug string
	resetOnAgain bool
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithFallbackSlug overrides DefaultFallbackSlug.
func WithFallbackSlug(slug string) Option {
	return func(c *Controller) {
		if slug != "" {
			c.fallbackSlug = slug
		}
	}
}

// WithResetOnAgain controls whether "again" clears the session history. Default true.
func WithResetOnAgain(reset bool) Option {
	return func(c *Controller) {
		c.resetOnAgain = reset
	}
}

// WithHooks registers lifecycle hooks. Repeated calls are merged.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a controller on the Landing screen.
func NewController(store *session.Store, opts ...Option) *Controller {
	c := &Controller{
		store:        store,
		route:        Landing,
		fallbackSlug: DefaultFallbackSlug,
		resetOnAgain: true,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Route returns the current route.
func (c *Controller) Route() Route { return c.route }

// Store returns the session store the controller navigates.
func (c *Controller) Store() *session.Store { return c.store }

// Hooks returns the registered lifecycle hooks.
func (c *Controller) Hooks() domain.LifecycleHooks { return c.hooks }

// Prompt returns the active prompt screen, or nil outside Prompt routes.
func (c *Controller) Prompt() *PromptScreen { return c.prompt }

// Start moves from Landing to Intro.
func (c *Controller) Start(ctx context.Context) error {
	return c.Dispatch(ctx, ActionStart)
}

// Okay moves from Intro to the first prompt.
func (c *Controller) Okay(ctx context.Context) error {
	return c.Dispatch(ctx, ActionOkay)
}

// Next moves from a scored prompt to the following prompt or to Finish.
func (c *Controller) Next(ctx context.Context) error {
	return c.Dispatch(ctx, ActionNext)
}

// Again moves from Finish back to Landing.
func (c *Controller) Again(ctx context.Context) error {
	return c.Dispatch(ctx, ActionAgain)
}

// Dispatch applies action. Actions not valid on the current screen return
// ErrInvalidTransition and change nothing.
func (c *Controller) Dispatch(ctx context.Context, action Action) error {
	target, err := c.target(action)
	if err != nil {
		return err
	}
	if action == ActionAgain && c.resetOnAgain {
		c.store.Reset()
	}
	c.move(ctx, target)
	return nil
}

func (c *Controller) target(action Action) (Route, error) {
	switch {
	case action == ActionStart && c.route.Screen == ScreenLanding:
		return Intro, nil
	case action == ActionOkay && c.route.Screen == ScreenIntro:
		return PromptRoute(c.FirstSlug()), nil
	case action == ActionNext && c.route.Screen == ScreenPrompt && c.prompt.Mode() == ModeScored:
		return c.NextTarget(), nil
	case action == ActionAgain && c.route.Screen == ScreenFinish:
		return Landing, nil
	}
	return Route{}, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, action, c.route)
}

// FirstSlug returns the first prompt, or the fallback slug when none are loaded.
func (c *Controller) FirstSlug() string {
	if prompts := c.store.Prompts(); len(prompts) > 0 {
		return prompts[0]
	}
	return c.fallbackSlug
}

// NextTarget returns where "next" leads from the current prompt.
// A slug missing from the list counts as position -1.
func (c *Controller) NextTarget() Route {
	prompts := c.store.Prompts()
	i := c.store.IndexOf(c.route.Slug)
	if i+1 < len(prompts) {
		return PromptRoute(prompts[i+1])
	}
	return Finish
}

// NextLabel returns the label of the button that leaves the current prompt.
func (c *Controller) NextLabel() string {
	if c.NextTarget().Screen == ScreenFinish {
		return "finish"
	}
	return "next"
}

// Enter jumps to route from any screen. It is the deep-link entry point.
func (c *Controller) Enter(ctx context.Context, route Route) error {
	if route.Screen == ScreenPrompt && route.Slug == "" {
		return fmt.Errorf("%w: empty slug", ErrUnknownRoute)
	}
	c.move(ctx, route)
	return nil
}

// EnterPath parses path and enters it.
func (c *Controller) EnterPath(ctx context.Context, path string) error {
	route, err := ParseRoute(path)
	if err != nil {
		return err
	}
	return c.Enter(ctx, route)
}

func (c *Controller) move(ctx context.Context, to Route) {
	from := c.route
	if c.prompt != nil {
		c.prompt.Close()
		c.prompt = nil
	}
	c.emit(ctx, c.hooks.OnScreenLeave, domain.EventScreenLeave, from)

	c.route = to
	if to.Screen == ScreenPrompt {
		// A slug outside the list sits at the first position.
		c.store.Advance(max(c.store.IndexOf(to.Slug), 0))
		c.prompt = NewPromptScreen(to.Slug, c.store)
	}
	c.logger.Debug("screen changed", "from", from.String(), "route", to.String())
	c.emit(ctx, c.hooks.OnScreenEnter, domain.EventScreenEnter, to)
}

func (c *Controller) emit(ctx context.Context, hook func(context.Context, *domain.ScreenEvent), typ domain.EventType, r Route) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.ScreenEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Route:     r.String(),
		Screen:    r.Screen.String(),
	})
}

// Snapshot captures the route and session state for persistence.
func (c *Controller) Snapshot(sessionID string) *domain.Snapshot {
	snap := domain.NewSnapshot(sessionID)
	snap.Route = c.route.String()
	snap.State = c.store.Snapshot()
	snap.Scored = c.prompt != nil && c.prompt.Mode() == ModeScored
	return snap
}

// Restore re-hydrates the store from snap and enters its route.
// A half-finished submission is not resumed and the prompt is entered fresh.
// A prompt saved after its score was revealed comes back Scored, so it cannot
// be answered twice.
func (c *Controller) Restore(ctx context.Context, snap *domain.Snapshot) error {
	route, err := ParseRoute(snap.Route)
	if err != nil {
		return err
	}
	c.store.Restore(snap.State)
	if err := c.Enter(ctx, route); err != nil {
		return err
	}
	if snap.Scored && c.prompt != nil {
		if rec, ok := lastRecord(c.store.History(), route.Slug); ok {
			c.prompt.restoreScored(rec)
		}
	}
	return nil
}

func lastRecord(history []domain.ResponseRecord, slug string) (domain.ResponseRecord, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Prompt == slug {
			return history[i], true
		}
	}
	return domain.ResponseRecord{}, false
}
