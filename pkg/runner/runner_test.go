package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/giveaibreak"
	"github.com/aretw0/giveaibreak/pkg/adapters/memory"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/ports"
	"github.com/aretw0/giveaibreak/pkg/service"
	"github.com/aretw0/giveaibreak/pkg/session"
	"github.com/aretw0/giveaibreak/pkg/typing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedScorer map[string]int

func (f fixedScorer) Score(ctx context.Context, def domain.PromptDefinition, v domain.Variation, response string) (domain.Score, error) {
	return domain.Score{Message: "thanks for " + def.Slug, Stars: f[def.Slug]}, nil
}

func twoPrompts() ports.PromptService {
	catalog := memory.NewCatalog(
		domain.PromptDefinition{Slug: "a", Description: "first thing", Variations: []domain.Variation{{Sender: "Ana", Message: "help with a"}}},
		domain.PromptDefinition{Slug: "b", Description: "second thing", Variations: []domain.Variation{{Sender: "Bo", Message: "help with b"}}},
	)
	return service.New(catalog, fixedScorer{"a": 3, "b": 5}, service.WithSeed(1))
}

// flakyService fails the first n calls of GetPrompt and Submit.
type flakyService struct {
	ports.PromptService
	fetchFails  atomic.Int32
	submitFails atomic.Int32
}

func (f *flakyService) GetPrompt(ctx context.Context, slug string) (domain.Prompt, error) {
	if f.fetchFails.Add(-1) >= 0 {
		return domain.Prompt{}, errors.New("connection refused")
	}
	return f.PromptService.GetPrompt(ctx, slug)
}

func (f *flakyService) Submit(ctx context.Context, slug string, sub domain.Submission) (domain.Score, error) {
	if f.submitFails.Add(-1) >= 0 {
		return domain.Score{}, errors.New("bad gateway")
	}
	return f.PromptService.Submit(ctx, slug, sub)
}

func newGame(t *testing.T, svc ports.PromptService, opts ...giveaibreak.Option) *giveaibreak.Game {
	t.Helper()
	g := giveaibreak.New(svc, append([]giveaibreak.Option{giveaibreak.WithMinLoading(0)}, opts...)...)
	require.NoError(t, g.Load(context.Background()))
	return g
}

func run(t *testing.T, g *giveaibreak.Game, input string, opts ...Option) string {
	t.Helper()
	out := &bytes.Buffer{}
	r := NewRunner(append([]Option{WithInputHandler(NewTextHandler(strings.NewReader(input), out))}, opts...)...)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background(), g) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not finish")
	}
	return out.String()
}

func TestRunner_FullRun(t *testing.T) {
	g := newGame(t, twoPrompts())
	var copied string
	clip := func(s string) error {
		copied = s
		return nil
	}

	out := run(t, g, "\n\nmy answer for a\n\nmy answer for b\n\nshare\nquit\n", WithClipboard(clip))

	assert.Contains(t, out, "help out an ai")
	assert.Contains(t, out, "[start]")
	assert.Contains(t, out, "to be honest, i'm tired.")
	assert.Contains(t, out, "[okay]")
	assert.Contains(t, out, "(A) Ana\nhelp with a")
	assert.Contains(t, out, "first thing")
	assert.Contains(t, out, "reading your response...")
	assert.Contains(t, out, "★★★☆☆")
	assert.Contains(t, out, "thanks for a")
	assert.Contains(t, out, "[next]")
	assert.Contains(t, out, "★★★★★")
	assert.Contains(t, out, "[finish]")
	assert.Contains(t, out, "not bad, you scored 8/10 stars.")
	assert.Contains(t, out, "copied")

	assert.Equal(t, "i kinda helped an ai today. 8/10 stars. http://giveaiabreak.com", copied)
	assert.Equal(t, "/finish", g.Route().String())
	assert.Len(t, g.Store().History(), 2)
}

func TestRunner_AgainRestarts(t *testing.T) {
	g := newGame(t, twoPrompts())
	out := run(t, g, "\n\nx\n\ny\n\nagain\n")

	assert.Equal(t, "/", g.Route().String(), "input ended on the landing screen")
	assert.Empty(t, g.Store().History())
	assert.Equal(t, 2, strings.Count(out, "help out an ai"))
}

func TestRunner_BlankResponseAsksAgain(t *testing.T) {
	g := newGame(t, twoPrompts())
	out := run(t, g, "\n\n   \nreal answer\n")

	assert.Equal(t, 2, strings.Count(out, "(Type your response here...)"))
	require.Len(t, g.Store().History(), 1)
	assert.Equal(t, "real answer", g.Store().History()[0].UserResponse)
}

func TestRunner_RetriesFailedRequests(t *testing.T) {
	svc := &flakyService{PromptService: twoPrompts()}
	svc.fetchFails.Store(1)
	svc.submitFails.Store(1)
	g := newGame(t, svc)

	out := run(t, g, "\n\nretry\nanswer\nretry\n")

	assert.Contains(t, out, "! couldn't load this one.")
	assert.Contains(t, out, "! couldn't get a score for that.")
	assert.Contains(t, out, "[retry] [quit]")
	require.Len(t, g.Store().History(), 1)
	assert.Equal(t, 3, g.Store().History()[0].Stars)
}

func TestRunner_ClipboardFailurePrintsShareText(t *testing.T) {
	g := newGame(t, twoPrompts())
	require.NoError(t, g.Enter(context.Background(), "/finish"))
	clip := func(string) error { return errors.New("no clipboard") }

	out := run(t, g, "share\n", WithClipboard(clip))

	assert.Contains(t, out, "http://giveaiabreak.com")
	assert.NotContains(t, out, "copied")
}

func TestRunner_QuitPersists(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	g := newGame(t, twoPrompts(), giveaibreak.WithSessionID("line-1"), giveaibreak.WithManager(manager))

	run(t, g, "\n\nfirst\n\nquit\n")

	snap, err := manager.Load(context.Background(), "line-1")
	require.NoError(t, err)
	assert.Equal(t, "/prompt/b", snap.Route)
	assert.Len(t, snap.State.ResponseHistory, 1)
}

func TestRunner_CancelledContext(t *testing.T) {
	g := newGame(t, twoPrompts())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nothing is ever typed: the pipe stays open.
	pr := &blockingReader{}
	r := NewRunner(WithInputHandler(NewTextHandler(pr, &bytes.Buffer{})))
	assert.NoError(t, r.Run(ctx, g))
	assert.Equal(t, "/", g.Route().String())
}

type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}

func TestTextHandler_TypesOut(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out,
		WithTyping(typing.WithSpeed(time.Millisecond), typing.WithPause(0)),
		WithTextHandlerRenderer(func(s string) (string, error) { return "**" + s + "**", nil }),
	)

	err := h.Output(context.Background(), View{
		Blocks: []Block{
			{Kind: KindMessage, Sender: "Ana", Text: "hi"},
			{Kind: KindScript, Text: "héllo", Typed: true},
			{Kind: KindStars, Stars: 9},
		},
		Actions: []string{"next"},
	})
	require.NoError(t, err)
	assert.Equal(t, "(A) Ana\n**hi**\n\nhéllo\n\n★★★★★\n[next]\n", out.String())
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("  my user input \nsecond\x07\n"), out)

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my user input", val)

	val, err = h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", val)

	_, err = h.Input(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "> > > ", out.String())
}

func TestJSONHandler(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewJSONHandler(strings.NewReader("\"Hello World\"\njust plain text"), out)

	require.NoError(t, h.Output(context.Background(), View{
		Route:   "/prompt/a",
		Blocks:  []Block{{Kind: KindStars, Stars: 4}},
		Actions: []string{"next"},
	}))
	require.NoError(t, h.SystemOutput(context.Background(), "copied"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var v View
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &v))
	assert.Equal(t, "/prompt/a", v.Route)
	assert.Equal(t, 4, v.Blocks[0].Stars)
	assert.JSONEq(t, `{"system":"copied"}`, lines[1])

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello World", val)

	val, err = h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "just plain text", val)
}

func TestStars(t *testing.T) {
	assert.Equal(t, "☆☆☆☆☆", Stars(-1))
	assert.Equal(t, "★★☆☆☆", Stars(2))
}
