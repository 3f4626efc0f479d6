package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/giveaibreak"
	"github.com/aretw0/giveaibreak/pkg/adapters/memory"
	"github.com/aretw0/giveaibreak/pkg/flow"
	"github.com/aretw0/giveaibreak/pkg/service"
	"github.com/aretw0/giveaibreak/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodAnswer = "hi there, thanks so much for covering my shift yesterday, i really appreciate it and lunch is on me this week. cheers"

func newTestServer(t *testing.T, manager *session.Manager) *Server {
	t.Helper()
	svc := service.New(memory.DefaultCatalog(), nil, service.WithSeed(7))
	return NewServer(svc, manager, WithGameOptions(giveaibreak.WithMinLoading(0)))
}

func TestServer_PlayThrough(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, nil)
	req := mcp.CallToolRequest{}

	view, err := s.handleStart(ctx, req, startArgs{SessionID: "agent-1"})
	require.NoError(t, err)
	assert.Equal(t, "agent-1", view.SessionID)
	assert.Equal(t, "/prompt/friendly-email", view.Route)
	assert.Equal(t, flow.ModeAwaitingFetch.String(), view.Mode)
	assert.False(t, view.Resumed)

	prompt, err := s.handleGetPrompt(ctx, req, sessionArgs{SessionID: "agent-1"})
	require.NoError(t, err)
	assert.Equal(t, "friendly-email", prompt.Slug)
	assert.NotEmpty(t, prompt.Description)
	assert.NotEmpty(t, prompt.Sender)
	assert.Equal(t, 1, prompt.Position)
	assert.Equal(t, 4, prompt.Total)

	for i := 0; i < 4; i++ {
		score, err := s.handleSubmit(ctx, req, submitArgs{SessionID: "agent-1", Response: goodAnswer})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score.Stars, 1)
		assert.LessOrEqual(t, score.Stars, 5)
		if i < 3 {
			assert.Equal(t, "next", score.NextLabel)
		} else {
			assert.Equal(t, "finish", score.NextLabel)
		}

		view, err = s.handleNext(ctx, req, sessionArgs{SessionID: "agent-1"})
		require.NoError(t, err)
		assert.Equal(t, i+1, view.Answered)
	}
	assert.True(t, view.Finished)
	assert.Equal(t, "/finish", view.Route)

	sum, err := s.handleSummary(ctx, req, sessionArgs{SessionID: "agent-1"})
	require.NoError(t, err)
	assert.Equal(t, 20, sum.Possible)
	assert.Contains(t, sum.ShareText, "http://giveaiabreak.com")
	assert.Contains(t, []string{"low", "mid", "top"}, sum.Tier)
}

func TestServer_InvalidActions(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, nil)
	req := mcp.CallToolRequest{}

	_, err := s.handleGetPrompt(ctx, req, sessionArgs{SessionID: "nobody"})
	assert.ErrorIs(t, err, ErrUnknownSession)

	_, err = s.handleNext(ctx, req, sessionArgs{})
	assert.ErrorIs(t, err, ErrUnknownSession)

	_, err = s.handleStart(ctx, req, startArgs{SessionID: "a"})
	require.NoError(t, err)

	// Not scored yet.
	_, err = s.handleNext(ctx, req, sessionArgs{SessionID: "a"})
	assert.ErrorIs(t, err, flow.ErrInvalidTransition)

	_, err = s.handleSubmit(ctx, req, submitArgs{SessionID: "a", Response: "   "})
	assert.ErrorIs(t, err, flow.ErrEmptyResponse)

	_, err = s.handleSubmit(ctx, req, submitArgs{SessionID: "a", Response: "ok\x00"})
	require.NoError(t, err, "control characters are stripped, not rejected")

	_, err = s.handleSubmit(ctx, req, submitArgs{SessionID: "a", Response: "again"})
	assert.ErrorIs(t, err, flow.ErrInvalidTransition, "already scored")
}

func TestServer_DeepLink(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, nil)

	view, err := s.handleStart(ctx, mcp.CallToolRequest{}, startArgs{Route: "/prompt/dinner-idea"})
	require.NoError(t, err)
	assert.NotEmpty(t, view.SessionID)
	assert.Equal(t, "/prompt/dinner-idea", view.Route)

	prompt, err := s.handleGetPrompt(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: view.SessionID})
	require.NoError(t, err)
	assert.Equal(t, 3, prompt.Position)

	_, err = s.handleStart(ctx, mcp.CallToolRequest{}, startArgs{Route: "/nowhere"})
	assert.ErrorIs(t, err, flow.ErrUnknownRoute)
}

func TestServer_ResumesPersistedSession(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(memory.NewStore())
	req := mcp.CallToolRequest{}

	first := newTestServer(t, manager)
	_, err := first.handleStart(ctx, req, startArgs{SessionID: "persisted"})
	require.NoError(t, err)
	_, err = first.handleSubmit(ctx, req, submitArgs{SessionID: "persisted", Response: goodAnswer})
	require.NoError(t, err)
	_, err = first.handleNext(ctx, req, sessionArgs{SessionID: "persisted"})
	require.NoError(t, err)

	// A fresh server sharing the store picks the session up.
	second := newTestServer(t, manager)
	prompt, err := second.handleGetPrompt(ctx, req, sessionArgs{SessionID: "persisted"})
	require.NoError(t, err)
	assert.Equal(t, "birthday-poem", prompt.Slug)

	view, err := second.handleStart(ctx, req, startArgs{SessionID: "persisted"})
	require.NoError(t, err)
	assert.True(t, view.Resumed)
	assert.Equal(t, 1, view.Answered)
	assert.Equal(t, "/prompt/birthday-poem", view.Route)
}

func TestServer_ToolsRegistered(t *testing.T) {
	s := newTestServer(t, nil)
	msg := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	for _, name := range []string{"start_session", "get_prompt", "submit_response", "next_prompt", "summary"} {
		assert.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}
