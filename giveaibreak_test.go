package giveaibreak_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/giveaibreak"
	"github.com/aretw0/giveaibreak/pkg/adapters/memory"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/flow"
	"github.com/aretw0/giveaibreak/pkg/scoring"
	"github.com/aretw0/giveaibreak/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedService gives a fixed number of stars per slug.
type scriptedService struct {
	slugs   []string
	stars   map[string]int
	listErr error
}

func (s *scriptedService) ListPrompts(ctx context.Context) ([]string, error) {
	return s.slugs, s.listErr
}

func (s *scriptedService) GetPrompt(ctx context.Context, slug string) (domain.Prompt, error) {
	return domain.Prompt{
		Slug:        slug,
		Description: "please do " + slug,
		Variation:   domain.Variation{Sender: "Ana", Message: "help"},
	}, nil
}

func (s *scriptedService) Submit(ctx context.Context, slug string, sub domain.Submission) (domain.Score, error) {
	return domain.Score{Message: "thanks for " + slug, Stars: s.stars[slug]}, nil
}

func answer(t *testing.T, g *giveaibreak.Game, response string) domain.Score {
	t.Helper()
	ctx := context.Background()
	_, err := g.Fetch(ctx)
	require.NoError(t, err)
	g.Typed()
	score, err := g.Submit(ctx, response)
	require.NoError(t, err)
	return score
}

func TestGame_FullRun(t *testing.T) {
	svc := &scriptedService{slugs: []string{"a", "b"}, stars: map[string]int{"a": 3, "b": 5}}
	g := giveaibreak.New(svc, giveaibreak.WithMinLoading(0))
	ctx := context.Background()

	require.NoError(t, g.Load(ctx))
	require.NoError(t, g.Start(ctx))
	require.NoError(t, g.Okay(ctx))
	assert.Equal(t, flow.PromptRoute("a"), g.Route())

	assert.Equal(t, 3, answer(t, g, "sure").Stars)
	assert.Equal(t, "next", g.Controller().NextLabel())
	require.NoError(t, g.Next(ctx))

	assert.Equal(t, 5, answer(t, g, "done").Stars)
	assert.Equal(t, "finish", g.Controller().NextLabel())
	require.NoError(t, g.Next(ctx))
	assert.Equal(t, flow.Finish, g.Route())

	sum := g.Summary()
	assert.Equal(t, 8, sum.Stars)
	assert.Equal(t, 10, sum.Possible)
	assert.InDelta(t, 80.0, sum.Percentage, 1e-9)
	assert.Equal(t, scoring.TierMid, sum.Tier)

	require.NoError(t, g.Again(ctx))
	assert.Equal(t, flow.Landing, g.Route())
	assert.Empty(t, g.Store().History())
	assert.Equal(t, []string{"a", "b"}, g.Store().Prompts())
}

func TestGame_InvalidActions(t *testing.T) {
	g := giveaibreak.New(&scriptedService{}, giveaibreak.WithMinLoading(0))
	ctx := context.Background()

	assert.ErrorIs(t, g.Okay(ctx), flow.ErrInvalidTransition)
	_, err := g.Fetch(ctx)
	assert.ErrorIs(t, err, flow.ErrInvalidTransition)
	_, err = g.Submit(ctx, "x")
	assert.ErrorIs(t, err, flow.ErrInvalidTransition)
}

func TestGame_FallbackWhenListFails(t *testing.T) {
	svc := &scriptedService{listErr: errors.New("offline")}
	g := giveaibreak.New(svc, giveaibreak.WithFallbackSlug("tea"))
	ctx := context.Background()

	assert.Error(t, g.Load(ctx))
	require.NoError(t, g.Start(ctx))
	require.NoError(t, g.Okay(ctx))
	assert.Equal(t, flow.PromptRoute("tea"), g.Route())
}

func TestGame_PersistsAndResumes(t *testing.T) {
	svc := &scriptedService{slugs: []string{"a", "b"}, stars: map[string]int{"a": 4}}
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	g := giveaibreak.New(svc, giveaibreak.WithManager(mgr), giveaibreak.WithMinLoading(0))
	require.NoError(t, g.Load(ctx))
	require.NoError(t, g.Start(ctx))
	require.NoError(t, g.Okay(ctx))
	answer(t, g, "ok")
	require.NoError(t, g.Next(ctx))

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{g.ID()}, ids)

	again := giveaibreak.New(svc, giveaibreak.WithManager(mgr), giveaibreak.WithSessionID(g.ID()))
	resumed, err := again.Resume(ctx)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, flow.PromptRoute("b"), again.Route())
	assert.Equal(t, 1, again.Store().CurrentIndex())
	require.Len(t, again.Store().History(), 1)
	assert.Equal(t, 4, again.Store().History()[0].Stars)

	fresh := giveaibreak.New(svc, giveaibreak.WithManager(mgr))
	resumed, err = fresh.Resume(ctx)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.NotEqual(t, g.ID(), fresh.ID())
}

func TestGame_ResumeOnScoredPromptDoesNotRecordTwice(t *testing.T) {
	svc := &scriptedService{slugs: []string{"a", "b"}, stars: map[string]int{"a": 3, "b": 5}}
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	g := giveaibreak.New(svc, giveaibreak.WithManager(mgr), giveaibreak.WithMinLoading(0))
	require.NoError(t, g.Load(ctx))
	require.NoError(t, g.Start(ctx))
	require.NoError(t, g.Okay(ctx))
	answer(t, g, "first try")

	again := giveaibreak.New(svc, giveaibreak.WithManager(mgr), giveaibreak.WithSessionID(g.ID()), giveaibreak.WithMinLoading(0))
	resumed, err := again.Resume(ctx)
	require.NoError(t, err)
	require.True(t, resumed)
	assert.Equal(t, flow.PromptRoute("a"), again.Route())

	screen := again.Controller().Prompt()
	assert.Equal(t, flow.ModeScored, screen.Mode())
	score, ok := screen.Score()
	require.True(t, ok)
	assert.Equal(t, 3, score.Stars)
	assert.Equal(t, "first try", screen.Response())

	p, err := again.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", p.Slug)
	_, err = again.Submit(ctx, "second try")
	assert.ErrorIs(t, err, flow.ErrInvalidTransition)
	require.Len(t, again.Store().History(), 1)

	require.NoError(t, again.Next(ctx))
	answer(t, again, "b answer")
	require.NoError(t, again.Next(ctx))
	assert.Equal(t, flow.Finish, again.Route())

	history := again.Store().History()
	assert.LessOrEqual(t, len(history), len(again.Store().Prompts()))
	sum := again.Summary()
	assert.Equal(t, 8, sum.Stars)
	assert.Equal(t, 10, sum.Possible)
}

func TestGame_DeepLink(t *testing.T) {
	g := giveaibreak.New(&scriptedService{}, giveaibreak.WithMinLoading(0))
	ctx := context.Background()

	require.NoError(t, g.Enter(ctx, "/prompt/birthday-poem"))
	assert.Zero(t, g.Store().CurrentIndex())
	p, err := g.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "birthday-poem", p.Slug)

	assert.Error(t, g.Enter(ctx, "/nowhere"))
	assert.Equal(t, flow.PromptRoute("birthday-poem"), g.Route())
}

func ExampleGame() {
	svc := &scriptedService{slugs: []string{"friendly-email"}, stars: map[string]int{"friendly-email": 5}}
	game := giveaibreak.New(svc, giveaibreak.WithMinLoading(0))
	ctx := context.Background()

	_ = game.Load(ctx)
	_ = game.Start(ctx)
	_ = game.Okay(ctx)

	prompt, _ := game.Fetch(ctx)
	game.Typed()
	score, _ := game.Submit(ctx, "hi team, thanks for covering for me!")
	fmt.Println(prompt.Description)
	fmt.Println(score.Stars, score.Message)

	_ = game.Next(ctx)
	fmt.Println(game.Summary().Message)
	// Output:
	// please do friendly-email
	// 5 thanks for friendly-email
	// you got 5/5 stars. you are a life saver!
}
