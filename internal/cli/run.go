package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/giveaibreak"
	"github.com/aretw0/giveaibreak/internal/config"
	"github.com/aretw0/giveaibreak/internal/presentation/tui"
	"github.com/aretw0/giveaibreak/pkg/observability"
	"github.com/aretw0/giveaibreak/pkg/runner"
	"github.com/aretw0/giveaibreak/pkg/typing"
	"github.com/atotto/clipboard"
	"golang.org/x/term"
)

// PlayOptions are the flags of a single game.
type PlayOptions struct {
	// SessionID resumes or names the persisted session. Empty starts a fresh one.
	SessionID string
	// Route deep-links to a screen after loading.
	Route string
	// JSON switches to NDJSON line mode.
	JSON bool
	// MetricsAddr, when set, serves Prometheus metrics while playing.
	MetricsAddr string

	Stdin  *os.File
	Stdout io.Writer
}

// Play runs one game: the full-screen TUI on a terminal, line mode otherwise.
func Play(ctx context.Context, cfg config.Config, opts PlayOptions, logger *slog.Logger) error {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	svc, err := NewPromptService(cfg, logger)
	if err != nil {
		return err
	}
	manager, closeStore, err := OpenManager(cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close session store", "err", err)
		}
	}()

	hooks := observability.LoggingHooks(logger)
	if opts.MetricsAddr != "" {
		metrics := observability.NewMetrics()
		hooks = hooks.Merge(metrics.Hooks())
		stop := serveMetrics(opts.MetricsAddr, metrics.Handler(), logger)
		defer stop()
	}

	g := giveaibreak.New(svc,
		giveaibreak.WithSessionID(opts.SessionID),
		giveaibreak.WithManager(manager),
		giveaibreak.WithLifecycleHooks(hooks),
		giveaibreak.WithLogger(logger),
		giveaibreak.WithMinLoading(cfg.MinLoading),
		giveaibreak.WithFallbackSlug(cfg.FallbackSlug),
		giveaibreak.WithResetOnAgain(cfg.ResetOnAgain),
		giveaibreak.WithShareURL(cfg.ShareURL),
	)

	if err := g.Load(ctx); err != nil {
		logger.Error("failed to fetch prompts", "err", err)
	}
	resumed := false
	if opts.SessionID != "" {
		if resumed, err = g.Resume(ctx); err != nil {
			logger.Warn("failed to resume session", "err", err)
		}
	}
	if opts.Route != "" {
		if err := g.Enter(ctx, opts.Route); err != nil {
			return fmt.Errorf("route %s: %w", opts.Route, err)
		}
	}
	logSessionStatus(logger, g.ID(), g.Route().String(), resumed)

	typingOpts := []typing.Option{
		typing.WithSpeed(cfg.Typing.Speed),
		typing.WithPause(cfg.Typing.Pause),
		typing.WithStartDelay(cfg.Typing.StartDelay),
	}

	if !opts.JSON && isTerminal(opts.Stdin) && isTerminal(opts.Stdout) {
		width := 80
		if w, _, err := term.GetSize(int(opts.Stdin.Fd())); err == nil && w > 0 {
			width = w
		}
		return handleExecutionError(tui.Run(ctx, g,
			tui.WithTyping(typingOpts...),
			tui.WithRenderer(tui.NewRenderer(min(width-12, 76))),
		))
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.Stdin, opts.Stdout)
	} else {
		tui.PrintBanner(opts.Stdout)
		var textOpts []runner.TextHandlerOption
		if isTerminal(opts.Stdout) {
			textOpts = append(textOpts,
				runner.WithTyping(typingOpts...),
				runner.WithTextHandlerRenderer(tui.NewRenderer(76)),
			)
		}
		handler = runner.NewTextHandler(opts.Stdin, opts.Stdout, textOpts...)
	}
	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
		runner.WithClipboard(clipboard.WriteAll),
	)
	return handleExecutionError(r.Run(ctx, g))
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func logSessionStatus(logger *slog.Logger, sessionID, route string, resumed bool) {
	if resumed {
		logger.Info("session resumed", "session_id", sessionID, "route", route)
		return
	}
	logger.Info("session created", "session_id", sessionID, "route", route)
}

// serveMetrics exposes h on addr until the returned stop function is called.
func serveMetrics(addr string, h http.Handler, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// handleExecutionError treats interruptions as a normal exit.
func handleExecutionError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
