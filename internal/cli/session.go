package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/giveaibreak"
	"github.com/aretw0/giveaibreak/internal/config"
	mcpAdapter "github.com/aretw0/giveaibreak/pkg/adapters/mcp"
	"github.com/aretw0/giveaibreak/pkg/scoring"
	"github.com/aretw0/giveaibreak/pkg/session"
)

// ListSessions prints the persisted session IDs with their route and score.
func ListSessions(ctx context.Context, manager *session.Manager, w io.Writer) error {
	ids, err := manager.List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return nil
	}
	sort.Strings(ids)
	for _, id := range ids {
		snap, err := manager.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "- %s (unreadable: %v)\n", id, err)
			continue
		}
		sum := scoring.Summarize(snap.State.ResponseHistory)
		fmt.Fprintf(w, "- %s  %s  %d/%d stars  %s\n", id, snap.Route, sum.Stars, sum.Possible, snap.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// ShowSession prints one snapshot as indented JSON.
func ShowSession(ctx context.Context, manager *session.Manager, id string, w io.Writer) error {
	snap, err := manager.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load session '%s': %w", id, err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// DeleteSessions removes every id, reporting each one. It fails if any removal failed.
func DeleteSessions(ctx context.Context, manager *session.Manager, ids []string, w io.Writer) error {
	var errs []error
	for _, id := range ids {
		if err := manager.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("remove '%s': %w", id, err))
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}

// ServeMCP runs the MCP adapter over stdio, or over SSE when sseAddr is set.
func ServeMCP(ctx context.Context, cfg config.Config, sseAddr, baseURL string, logger *slog.Logger) error {
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

	srv := mcpAdapter.NewServer(svc, manager,
		mcpAdapter.WithLogger(logger),
		mcpAdapter.WithGameOptions(
			giveaibreak.WithMinLoading(cfg.MinLoading),
			giveaibreak.WithFallbackSlug(cfg.FallbackSlug),
			giveaibreak.WithResetOnAgain(cfg.ResetOnAgain),
			giveaibreak.WithShareURL(cfg.ShareURL),
		),
	)
	if sseAddr == "" {
		logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	}
	return srv.ServeSSE(ctx, sseAddr, baseURL)
}
