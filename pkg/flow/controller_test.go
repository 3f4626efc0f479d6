package flow

import (
	"context"
	"testing"

	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// score drives the active prompt screen straight to Scored.
func score(t *testing.T, c *Controller, stars int) {
	t.Helper()
	p := c.Prompt()
	require.NotNil(t, p)
	p.FetchSucceeded(samplePrompt(p.Slug()))
	p.DescriptionTyped()
	_, err := p.Submit("an answer")
	require.NoError(t, err)
	p.SubmitSucceeded(domain.Score{Message: "thanks", Stars: stars})
	p.MinDelayElapsed()
	require.Equal(t, ModeScored, p.Mode())
}

func loadedStore(prompts ...string) *session.Store {
	s := session.NewStore()
	s.Load(prompts)
	return s
}

func TestController_HappyPath(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a", "b"))
	assert.Equal(t, Landing, c.Route())

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, Intro, c.Route())

	require.NoError(t, c.Okay(ctx))
	assert.Equal(t, PromptRoute("a"), c.Route())
	assert.Equal(t, "next", c.NextLabel())

	score(t, c, 3)
	assert.Equal(t, PromptRoute("a"), c.Route(), "scoring does not change the screen")

	require.NoError(t, c.Next(ctx))
	assert.Equal(t, PromptRoute("b"), c.Route())
	assert.Equal(t, 1, c.Store().CurrentIndex())
	assert.Equal(t, "finish", c.NextLabel())

	score(t, c, 5)
	require.NoError(t, c.Next(ctx))
	assert.Equal(t, Finish, c.Route())
	assert.Nil(t, c.Prompt())
}

func TestController_OkayFallsBackWhenEmpty(t *testing.T) {
	ctx := context.Background()

	c := NewController(session.NewStore())
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Okay(ctx))
	assert.Equal(t, PromptRoute(DefaultFallbackSlug), c.Route())

	c = NewController(session.NewStore(), WithFallbackSlug("other"))
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Okay(ctx))
	assert.Equal(t, PromptRoute("other"), c.Route())
}

func TestController_NextAtLastPromptFinishes(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a", "b", "c"))
	require.NoError(t, c.Enter(ctx, PromptRoute("c")))

	score(t, c, 1)
	require.NoError(t, c.Next(ctx))
	assert.Equal(t, Finish, c.Route())
}

func TestController_UnknownSlugContinuesAtFirstPrompt(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a", "b"))
	require.NoError(t, c.EnterPath(ctx, "/prompt/stray"))
	assert.Equal(t, "next", c.NextLabel())

	score(t, c, 2)
	require.NoError(t, c.Next(ctx))
	assert.Equal(t, PromptRoute("a"), c.Route())
	assert.Equal(t, 0, c.Store().CurrentIndex())
}

func TestController_NextWithoutPromptsFinishes(t *testing.T) {
	ctx := context.Background()
	c := NewController(session.NewStore())
	require.NoError(t, c.Enter(ctx, PromptRoute("friendly-email")))
	assert.Equal(t, "finish", c.NextLabel())

	score(t, c, 4)
	require.NoError(t, c.Next(ctx))
	assert.Equal(t, Finish, c.Route())
}

func TestController_RejectsInvalidActions(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a"))

	assert.ErrorIs(t, c.Okay(ctx), ErrInvalidTransition)
	assert.ErrorIs(t, c.Next(ctx), ErrInvalidTransition)
	assert.ErrorIs(t, c.Again(ctx), ErrInvalidTransition)
	assert.Equal(t, Landing, c.Route())

	require.NoError(t, c.Start(ctx))
	assert.ErrorIs(t, c.Start(ctx), ErrInvalidTransition)

	require.NoError(t, c.Okay(ctx))
	assert.ErrorIs(t, c.Next(ctx), ErrInvalidTransition, "next is only offered once scored")
	assert.Equal(t, PromptRoute("a"), c.Route())
}

func TestController_AgainResetsHistory(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a"))
	require.NoError(t, c.Enter(ctx, PromptRoute("a")))
	score(t, c, 5)
	require.NoError(t, c.Next(ctx))

	require.NoError(t, c.Again(ctx))
	assert.Equal(t, Landing, c.Route())
	assert.Empty(t, c.Store().History())
	assert.Equal(t, []string{"a"}, c.Store().Prompts())
}

func TestController_AgainCanKeepHistory(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a"), WithResetOnAgain(false))
	require.NoError(t, c.Enter(ctx, PromptRoute("a")))
	score(t, c, 5)
	require.NoError(t, c.Next(ctx))

	require.NoError(t, c.Again(ctx))
	assert.Len(t, c.Store().History(), 1)
}

func TestController_DeepLinkClosesPreviousPrompt(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a", "b"))
	require.NoError(t, c.Enter(ctx, PromptRoute("a")))
	first := c.Prompt()

	require.NoError(t, c.Enter(ctx, PromptRoute("b")))
	assert.True(t, first.Closed())
	assert.Equal(t, "b", c.Prompt().Slug())

	assert.ErrorIs(t, c.EnterPath(ctx, "/nowhere"), ErrUnknownRoute)
	assert.Equal(t, PromptRoute("b"), c.Route())
}

func TestController_Hooks(t *testing.T) {
	ctx := context.Background()
	var entered, left []string
	c := NewController(loadedStore("a"), WithHooks(domain.LifecycleHooks{
		OnScreenEnter: func(_ context.Context, e *domain.ScreenEvent) { entered = append(entered, e.Route) },
		OnScreenLeave: func(_ context.Context, e *domain.ScreenEvent) { left = append(left, e.Screen) },
	}))

	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Okay(ctx))

	assert.Equal(t, []string{"/intro", "/prompt/a"}, entered)
	assert.Equal(t, []string{"landing", "intro"}, left)
}

func TestController_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a", "b"))
	require.NoError(t, c.Enter(ctx, PromptRoute("a")))
	score(t, c, 3)
	require.NoError(t, c.Next(ctx))

	snap := c.Snapshot("s1")
	assert.Equal(t, "/prompt/b", snap.Route)
	assert.Equal(t, "s1", snap.SessionID)

	restored := NewController(session.NewStore())
	require.NoError(t, restored.Restore(ctx, snap))
	assert.Equal(t, PromptRoute("b"), restored.Route())
	assert.Equal(t, 1, restored.Store().CurrentIndex())
	assert.Len(t, restored.Store().History(), 1)
	assert.Equal(t, ModeAwaitingFetch, restored.Prompt().Mode())
}

func TestController_EnteringPromptTracksPosition(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a", "b", "c"), WithResetOnAgain(false))

	require.NoError(t, c.EnterPath(ctx, "/prompt/b"))
	assert.Equal(t, 1, c.Store().CurrentIndex())
	score(t, c, 4)
	require.NoError(t, c.Next(ctx))
	assert.Equal(t, 2, c.Store().CurrentIndex())
	score(t, c, 4)
	require.NoError(t, c.Next(ctx))

	require.NoError(t, c.Again(ctx))
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Okay(ctx))
	assert.Equal(t, PromptRoute("a"), c.Route())
	assert.Equal(t, 0, c.Store().CurrentIndex())
	assert.Equal(t, 0, c.Snapshot("s").State.CurrentPromptIndex)
}

func TestController_RestoreKeepsRevealedScore(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a", "b"))
	require.NoError(t, c.Enter(ctx, PromptRoute("a")))
	score(t, c, 2)

	snap := c.Snapshot("s")
	assert.True(t, snap.Scored)

	restored := NewController(session.NewStore())
	require.NoError(t, restored.Restore(ctx, snap))
	p := restored.Prompt()
	require.NotNil(t, p)
	assert.Equal(t, ModeScored, p.Mode())
	got, ok := p.Score()
	require.True(t, ok)
	assert.Equal(t, domain.Score{Message: "thanks", Stars: 2}, got)

	p.FetchSucceeded(samplePrompt("a"))
	_, shown := p.Prompt()
	assert.True(t, shown)
	assert.Equal(t, ModeScored, p.Mode())

	_, err := p.Submit("again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, restored.Store().History(), 1)

	require.NoError(t, restored.Next(ctx))
	assert.Equal(t, PromptRoute("b"), restored.Route())
	assert.False(t, restored.Snapshot("s").Scored)
}

func TestController_RestoreUnscoredPromptStartsFresh(t *testing.T) {
	ctx := context.Background()
	c := NewController(loadedStore("a"))
	require.NoError(t, c.Enter(ctx, PromptRoute("a")))

	restored := NewController(session.NewStore())
	require.NoError(t, restored.Restore(ctx, c.Snapshot("s")))
	assert.Equal(t, ModeAwaitingFetch, restored.Prompt().Mode())
}
