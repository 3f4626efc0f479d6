package flow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/scoring"
	"github.com/aretw0/giveaibreak/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService scores every submission of a slug with a fixed number of stars.
type fakeService struct {
	mu        sync.Mutex
	prompts   []string
	stars     map[string]int
	fetchErr  error
	submitErr error
	submitted []domain.Submission
}

func (f *fakeService) ListPrompts(ctx context.Context) ([]string, error) {
	return f.prompts, nil
}

func (f *fakeService) GetPrompt(ctx context.Context, slug string) (domain.Prompt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return domain.Prompt{}, f.fetchErr
	}
	return samplePrompt(slug), nil
}

func (f *fakeService) Submit(ctx context.Context, slug string, sub domain.Submission) (domain.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return domain.Score{}, f.submitErr
	}
	f.submitted = append(f.submitted, sub)
	return domain.Score{Message: "reply for " + slug, Stars: f.stars[slug]}, nil
}

func TestPromptSession_WaitsForMinimumDelay(t *testing.T) {
	store := session.NewStore()
	svc := &fakeService{stars: map[string]int{"a": 4}}
	ps := NewPromptSession(NewPromptScreen("a", store), svc, WithMinLoading(50*time.Millisecond))

	_, err := ps.Fetch(context.Background())
	require.NoError(t, err)
	ps.Screen().DescriptionTyped()

	start := time.Now()
	score, err := ps.Submit(context.Background(), "hello")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, 4, score.Stars)
	assert.Equal(t, ModeScored, ps.Screen().Mode())
	assert.Equal(t, []domain.Submission{{Response: "hello", VariationIndex: 2}}, svc.submitted)
}

func TestPromptSession_BlankResponseSendsNothing(t *testing.T) {
	svc := &fakeService{}
	ps := NewPromptSession(NewPromptScreen("a", session.NewStore()), svc, WithMinLoading(0))
	_, _ = ps.Fetch(context.Background())
	ps.Screen().DescriptionTyped()

	_, err := ps.Submit(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Empty(t, svc.submitted)
}

func TestPromptSession_FailuresAndRetry(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore()
	svc := &fakeService{fetchErr: errors.New("offline"), stars: map[string]int{"a": 2}}
	ps := NewPromptSession(NewPromptScreen("a", store), svc, WithMinLoading(0))

	_, err := ps.Fetch(ctx)
	require.Error(t, err)
	assert.Equal(t, ModeAwaitingFetch, ps.Screen().Mode())

	svc.fetchErr = nil
	require.NoError(t, ps.Retry(ctx))
	ps.Screen().DescriptionTyped()
	assert.Equal(t, ModeReadyForInput, ps.Screen().Mode())

	svc.submitErr = errors.New("status 500")
	_, err = ps.Submit(ctx, "hi")
	require.Error(t, err)
	assert.Equal(t, ModeSubmitting, ps.Screen().Mode())
	assert.Empty(t, store.History())

	svc.submitErr = nil
	require.NoError(t, ps.Retry(ctx))
	assert.Equal(t, ModeScored, ps.Screen().Mode())
	assert.Len(t, store.History(), 1)

	assert.NoError(t, ps.Retry(ctx), "nothing to retry")
}

func TestPromptSession_CancelledWhileLoading(t *testing.T) {
	store := session.NewStore()
	svc := &fakeService{stars: map[string]int{"a": 5}}
	ps := NewPromptSession(NewPromptScreen("a", store), svc, WithMinLoading(time.Hour))
	_, _ = ps.Fetch(context.Background())
	ps.Screen().DescriptionTyped()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := ps.Submit(ctx, "hi")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ModeSubmitting, ps.Screen().Mode())
	assert.Empty(t, store.History())
}

func TestPromptSession_Hooks(t *testing.T) {
	var events []domain.SubmitEvent
	hooks := domain.LifecycleHooks{
		OnSubmit: func(_ context.Context, e *domain.SubmitEvent) { events = append(events, *e) },
		OnScored: func(_ context.Context, e *domain.SubmitEvent) { events = append(events, *e) },
	}
	svc := &fakeService{stars: map[string]int{"a": 3}}
	ps := NewPromptSession(NewPromptScreen("a", session.NewStore()), svc,
		WithMinLoading(0), WithSessionHooks(hooks))
	_, _ = ps.Fetch(context.Background())
	ps.Screen().DescriptionTyped()
	_, err := ps.Submit(context.Background(), "hi")
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, domain.EventSubmit, events[0].Type)
	assert.Equal(t, domain.EventScored, events[1].Type)
	assert.Equal(t, 3, events[1].Stars)
	assert.False(t, events[1].IsError)
}

func TestEndToEnd_TwoPrompts(t *testing.T) {
	ctx := context.Background()
	svc := &fakeService{prompts: []string{"a", "b"}, stars: map[string]int{"a": 3, "b": 5}}

	store := session.NewStore()
	require.NoError(t, store.LoadFrom(ctx, svc))
	c := NewController(store)

	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Okay(ctx))

	answer := func() {
		ps := NewPromptSession(c.Prompt(), svc, WithMinLoading(0))
		_, err := ps.Fetch(ctx)
		require.NoError(t, err)
		ps.Screen().DescriptionTyped()
		_, err = ps.Submit(ctx, "my answer")
		require.NoError(t, err)
	}

	answer()
	require.Equal(t, []domain.ResponseRecord{
		{Prompt: "a", UserResponse: "my answer", AIResponse: "reply for a", Stars: 3},
	}, store.History())

	require.NoError(t, c.Next(ctx))
	answer()
	require.NoError(t, c.Next(ctx))
	assert.Equal(t, Finish, c.Route())

	summary := scoring.Summarize(store.History())
	assert.Len(t, store.History(), 2)
	assert.Equal(t, 8, summary.Stars)
	assert.Equal(t, 10, summary.Possible)
	assert.InDelta(t, 80.0, summary.Percentage, 1e-9)
	assert.Equal(t, scoring.TierMid, summary.Tier)
	assert.Equal(t, "not bad, you scored 8/10 stars. thanks for saving me a little time.", summary.Message)
}
