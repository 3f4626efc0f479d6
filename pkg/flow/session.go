package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/ports"
)

// DefaultMinLoading is the shortest time the loading indicator is shown after a submit.
const DefaultMinLoading = 2 * time.Second

// PromptSession drives a PromptScreen against a PromptService with blocking calls.
type PromptSession struct {
	screen     *PromptScreen
	service    ports.PromptService
	minLoading time.Duration
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	after      func(time.Duration) (<-chan time.Time, func() bool)
}

// SessionOption configures a PromptSession.
type SessionOption func(*PromptSession)

// WithMinLoading overrides DefaultMinLoading. Negative values are treated as zero.
func WithMinLoading(d time.Duration) SessionOption {
	return func(s *PromptSession) {
		s.minLoading = max(d, 0)
	}
}

// WithSessionHooks registers submit hooks.
func WithSessionHooks(hooks domain.LifecycleHooks) SessionOption {
	return func(s *PromptSession) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithSessionLogger configures the logger used for swallowed failures.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *PromptSession) {
		s.logger = logger
	}
}

// NewPromptSession creates a driver for screen.
func NewPromptSession(screen *PromptScreen, service ports.PromptService, opts ...SessionOption) *PromptSession {
	s := &PromptSession{
		screen:     screen,
		service:    service,
		minLoading: DefaultMinLoading,
		logger:     logging.NewNop(),
		after: func(d time.Duration) (<-chan time.Time, func() bool) {
			t := time.NewTimer(d)
			return t.C, t.Stop
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen returns the driven screen.
func (s *PromptSession) Screen() *PromptScreen { return s.screen }

// Fetch requests the prompt detail. On failure the error is logged, recorded on
// the screen and returned; the screen stays in AwaitingFetch.
func (s *PromptSession) Fetch(ctx context.Context) (domain.Prompt, error) {
	slug := s.screen.Slug()
	prompt, err := s.service.GetPrompt(ctx, slug)
	if err != nil {
		s.logger.Error("failed to fetch prompt", "slug", slug, "err", err)
		s.screen.FetchFailed(err)
		return domain.Prompt{}, err
	}
	s.screen.FetchSucceeded(prompt)
	return prompt, nil
}

// Submit sends response and blocks until the score can be revealed: the reply
// has arrived and the minimum loading delay, started before the request, is over.
// Blank responses return ErrEmptyResponse without a request.
// A cancelled context leaves the screen in Submitting.
func (s *PromptSession) Submit(ctx context.Context, response string) (domain.Score, error) {
	sub, err := s.screen.Submit(response)
	if err != nil {
		return domain.Score{}, err
	}
	return s.send(ctx, sub)
}

// Retry reissues whatever failed last. It is a no-op returning nil when nothing failed.
func (s *PromptSession) Retry(ctx context.Context) error {
	switch s.screen.Retry() {
	case RetryFetch:
		_, err := s.Fetch(ctx)
		return err
	case RetrySubmit:
		_, err := s.send(ctx, s.screen.Submission())
		return err
	}
	return nil
}

func (s *PromptSession) send(ctx context.Context, sub domain.Submission) (domain.Score, error) {
	slug := s.screen.Slug()
	minDelay, stop := s.after(s.minLoading)
	defer stop()

	start := time.Now()
	s.emit(ctx, s.hooks.OnSubmit, &domain.SubmitEvent{
		EventBase: domain.EventBase{Timestamp: start, Type: domain.EventSubmit},
		Slug:      slug,
	})

	score, err := s.service.Submit(ctx, slug, sub)
	if err != nil {
		s.logger.Error("failed to submit response", "slug", slug, "err", err)
		s.screen.SubmitFailed(err)
		s.emit(ctx, s.hooks.OnScored, &domain.SubmitEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventScored},
			Slug:      slug,
			Duration:  time.Since(start),
			IsError:   true,
		})
		return domain.Score{}, err
	}
	s.screen.SubmitSucceeded(score)

	select {
	case <-ctx.Done():
		return domain.Score{}, ctx.Err()
	case <-minDelay:
	}
	s.screen.MinDelayElapsed()

	final, _ := s.screen.Score()
	s.logger.Debug("response scored", "slug", slug, "stars", final.Stars)
	s.emit(ctx, s.hooks.OnScored, &domain.SubmitEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventScored},
		Slug:      slug,
		Stars:     final.Stars,
		Duration:  time.Since(start),
	})
	return final, nil
}

func (s *PromptSession) emit(ctx context.Context, hook func(context.Context, *domain.SubmitEvent), ev *domain.SubmitEvent) {
	if hook != nil {
		hook(ctx, ev)
	}
}
