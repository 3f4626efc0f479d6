package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/giveaibreak"
	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/flow"
	"github.com/aretw0/giveaibreak/pkg/ports"
	"github.com/aretw0/giveaibreak/pkg/runner"
	"github.com/aretw0/giveaibreak/pkg/scoring"
	"github.com/aretw0/giveaibreak/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ErrUnknownSession is returned for a session ID that was never started.
var ErrUnknownSession = errors.New("unknown session, call start_session first")

// PromptView is the prompt as an agent sees it.
type PromptView struct {
	Slug           string `json:"slug"`
	Description    string `json:"description" jsonschema_description:"What the tired assistant needs help with"`
	Sender         string `json:"sender"`
	Message        string `json:"message" jsonschema_description:"The request, in the sender's words"`
	VariationIndex int    `json:"variation_index"`
	Position       int    `json:"position" jsonschema_description:"1-based position in the run, 0 when the slug is not in the list"`
	Total          int    `json:"total"`
}

// SessionView describes where a session stands.
type SessionView struct {
	SessionID string      `json:"session_id"`
	Route     string      `json:"route" jsonschema_description:"Current screen path, e.g. /prompt/friendly-email or /finish"`
	Mode      string      `json:"mode,omitempty"`
	Answered  int         `json:"answered"`
	Finished  bool        `json:"finished"`
	Resumed   bool        `json:"resumed,omitempty"`
	Prompt    *PromptView `json:"prompt,omitempty"`
}

// ScoreView is the verdict on a submitted response.
type ScoreView struct {
	SessionID string `json:"session_id"`
	Slug      string `json:"slug"`
	Stars     int    `json:"stars"`
	Message   string `json:"message"`
	NextLabel string `json:"next_label" jsonschema_description:"'next' while prompts remain, 'finish' on the last one"`
}

// SummaryView is the finish screen.
type SummaryView struct {
	SessionID  string  `json:"session_id"`
	Stars      int     `json:"stars"`
	Possible   int     `json:"possible"`
	Percentage float64 `json:"percentage"`
	Tier       string  `json:"tier" jsonschema_description:"low, mid or top"`
	Message    string  `json:"message"`
	ShareText  string  `json:"share_text"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type startArgs struct {
	SessionID string `json:"session_id"`
	Route     string `json:"route"`
}

type submitArgs struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

type entry struct {
	mu   sync.Mutex
	game *giveaibreak.Game
}

// Server exposes games as MCP tools. Live games are kept in memory and
// every state change is persisted through the session manager, so a
// restarted server resumes where the agent left off.
type Server struct {
	service     ports.PromptService
	manager     *session.Manager
	gameOptions []giveaibreak.Option
	logger      *slog.Logger

	mu    sync.Mutex
	games map[string]*entry

	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGameOptions adds options applied to every game the server creates.
func WithGameOptions(opts ...giveaibreak.Option) Option {
	return func(s *Server) {
		s.gameOptions = append(s.gameOptions, opts...)
	}
}

// NewServer creates a new MCP Server instance. A nil manager keeps sessions in memory only.
func NewServer(svc ports.PromptService, manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		service: svc,
		manager: manager,
		logger:  logging.NewNop(),
		games:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("giveaibreak-mcp", strings.TrimSpace(giveaibreak.Version),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by start_session"))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start helping the tired assistant. Resumes the session if session_id is known, otherwise opens a new one on the first prompt."),
		mcp.WithString("session_id", mcp.Description("Session to resume or create (optional, random when omitted)")),
		mcp.WithString("route", mcp.Description("Deep link to open instead, e.g. /prompt/birthday-poem (optional)")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_prompt",
		mcp.WithDescription("Read the prompt the assistant needs help with on the current screen."),
		sessionID,
		mcp.WithOutputSchema[PromptView](),
	), mcp.NewStructuredToolHandler(s.handleGetPrompt))

	s.mcpServer.AddTool(mcp.NewTool("submit_response",
		mcp.WithDescription("Answer the current prompt on the assistant's behalf and get up to five stars."),
		sessionID,
		mcp.WithString("response", mcp.Required(), mcp.Description("Your answer to the prompt")),
		mcp.WithOutputSchema[ScoreView](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("next_prompt",
		mcp.WithDescription("Leave a scored prompt for the next one, or for the finish screen after the last."),
		sessionID,
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleNext))

	s.mcpServer.AddTool(mcp.NewTool("summary",
		mcp.WithDescription("Total stars, percentage and share text for the session so far."),
		sessionID,
		mcp.WithOutputSchema[SummaryView](),
	), mcp.NewStructuredToolHandler(s.handleSummary))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("giveaibreak://prompts", "Prompt list",
		mcp.WithResourceDescription("Slugs of the prompts in play order"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		slugs, err := s.service.ListPrompts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list prompts: %w", err)
		}
		jsonBytes, _ := json.Marshal(slugs)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) newGame(id string) *giveaibreak.Game {
	opts := []giveaibreak.Option{
		giveaibreak.WithSessionID(id),
		giveaibreak.WithLogger(s.logger),
		giveaibreak.WithManager(s.manager),
	}
	return giveaibreak.New(s.service, append(opts, s.gameOptions...)...)
}

// lookup returns the live game for id, resuming a persisted one on first use.
// The returned entry is locked; the caller must unlock it.
func (s *Server) lookup(ctx context.Context, id string) (*entry, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty session_id", ErrUnknownSession)
	}
	s.mu.Lock()
	e, ok := s.games[id]
	if !ok {
		e = &entry{}
		s.games[id] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	if e.game != nil {
		return e, nil
	}
	g := s.newGame(id)
	found, err := g.Resume(ctx)
	if err != nil || !found {
		e.mu.Unlock()
		s.forget(id, e)
		if err != nil {
			return nil, fmt.Errorf("resume %s: %w", id, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if err := g.Load(ctx); err != nil {
		s.logger.Warn("prompt list unavailable for resumed session", "session_id", id, "err", err)
	}
	e.game = g
	return e, nil
}

func (s *Server) forget(id string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.games[id] == e {
		delete(s.games, id)
	}
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args startArgs) (SessionView, error) {
	if args.SessionID != "" {
		if e, err := s.lookup(ctx, args.SessionID); err == nil {
			defer e.mu.Unlock()
			if args.Route != "" {
				if err := e.game.Enter(ctx, args.Route); err != nil {
					return SessionView{}, err
				}
			}
			view := s.view(e.game)
			view.Resumed = true
			return view, nil
		} else if !errors.Is(err, ErrUnknownSession) {
			return SessionView{}, err
		}
	}

	g := s.newGame(args.SessionID)
	if err := g.Load(ctx); err != nil {
		s.logger.Warn("prompt list unavailable, using fallback prompt", "session_id", g.ID(), "err", err)
	}
	if args.Route != "" {
		if err := g.Enter(ctx, args.Route); err != nil {
			return SessionView{}, err
		}
	} else {
		if err := g.Start(ctx); err != nil {
			return SessionView{}, err
		}
		if err := g.Okay(ctx); err != nil {
			return SessionView{}, err
		}
	}

	s.mu.Lock()
	s.games[g.ID()] = &entry{game: g}
	s.mu.Unlock()

	s.logger.Info("MCP session started", "session_id", g.ID(), "route", g.Route().String())
	return s.view(g), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (PromptView, error) {
	e, err := s.lookup(ctx, args.SessionID)
	if err != nil {
		return PromptView{}, err
	}
	defer e.mu.Unlock()

	prompt, err := s.ensurePrompt(ctx, e.game)
	if err != nil {
		return PromptView{}, err
	}
	return promptView(e.game, prompt), nil
}

// ensurePrompt fetches the current prompt if needed and marks it as shown.
// Agents read the description at once, so there is no typing reveal to wait for.
func (s *Server) ensurePrompt(ctx context.Context, g *giveaibreak.Game) (domain.Prompt, error) {
	ps := g.PromptSession()
	if ps == nil {
		return domain.Prompt{}, fmt.Errorf("%w: no prompt on %s", flow.ErrInvalidTransition, g.Route())
	}
	screen := ps.Screen()
	if prompt, ok := screen.Prompt(); ok {
		g.Typed()
		return prompt, nil
	}
	if _, err := g.Fetch(ctx); err != nil {
		return domain.Prompt{}, fmt.Errorf("fetch %s: %w", screen.Slug(), err)
	}
	g.Typed()
	prompt, _ := screen.Prompt()
	return prompt, nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args submitArgs) (ScoreView, error) {
	clean, err := runner.SanitizeInput(args.Response)
	if err != nil {
		s.logger.Warn("MCP submit: input rejected", "err", err, "size", len(args.Response))
		return ScoreView{}, fmt.Errorf("input rejected: %w", err)
	}

	e, err := s.lookup(ctx, args.SessionID)
	if err != nil {
		return ScoreView{}, err
	}
	defer e.mu.Unlock()
	g := e.game

	if _, err := s.ensurePrompt(ctx, g); err != nil {
		return ScoreView{}, err
	}
	screen := g.Controller().Prompt()

	var score domain.Score
	switch {
	case screen.Mode() == flow.ModeSubmitting && screen.Err() != nil:
		// A previous submission failed; resend it rather than start over.
		if err := g.Retry(ctx); err != nil {
			return ScoreView{}, err
		}
		score, _ = screen.Score()
	default:
		score, err = g.Submit(ctx, clean)
		if err != nil {
			return ScoreView{}, err
		}
	}

	return ScoreView{
		SessionID: g.ID(),
		Slug:      screen.Slug(),
		Stars:     score.Stars,
		Message:   score.Message,
		NextLabel: g.Controller().NextLabel(),
	}, nil
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionView, error) {
	e, err := s.lookup(ctx, args.SessionID)
	if err != nil {
		return SessionView{}, err
	}
	defer e.mu.Unlock()

	if err := e.game.Next(ctx); err != nil {
		return SessionView{}, err
	}
	return s.view(e.game), nil
}

func (s *Server) handleSummary(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SummaryView, error) {
	e, err := s.lookup(ctx, args.SessionID)
	if err != nil {
		return SummaryView{}, err
	}
	defer e.mu.Unlock()

	return summaryView(e.game.ID(), e.game.Summary()), nil
}

func (s *Server) view(g *giveaibreak.Game) SessionView {
	v := SessionView{
		SessionID: g.ID(),
		Route:     g.Route().String(),
		Answered:  len(g.Store().History()),
		Finished:  g.Route().Screen == flow.ScreenFinish,
	}
	if screen := g.Controller().Prompt(); screen != nil {
		v.Mode = screen.Mode().String()
		if prompt, ok := screen.Prompt(); ok {
			pv := promptView(g, prompt)
			v.Prompt = &pv
		}
	}
	return v
}

func promptView(g *giveaibreak.Game, p domain.Prompt) PromptView {
	return PromptView{
		Slug:           p.Slug,
		Description:    p.Description,
		Sender:         p.Variation.Sender,
		Message:        p.Variation.Message,
		VariationIndex: p.VariationIndex,
		Position:       g.Store().IndexOf(p.Slug) + 1,
		Total:          len(g.Store().Prompts()),
	}
}

func summaryView(id string, sum scoring.Summary) SummaryView {
	return SummaryView{
		SessionID:  id,
		Stars:      sum.Stars,
		Possible:   sum.Possible,
		Percentage: sum.Percentage,
		Tier:       sum.Tier.String(),
		Message:    sum.Message,
		ShareText:  sum.ShareText,
	}
}
