package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/giveaibreak/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level, and failed submissions at warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnScreenEnter: func(ctx context.Context, e *domain.ScreenEvent) {
			logger.DebugContext(ctx, "screen_enter", "route", e.Route, "screen", e.Screen)
		},
		OnScreenLeave: func(ctx context.Context, e *domain.ScreenEvent) {
			logger.DebugContext(ctx, "screen_leave", "route", e.Route)
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.DebugContext(ctx, "submit", "slug", e.Slug)
		},
		OnScored: func(ctx context.Context, e *domain.SubmitEvent) {
			if e.IsError {
				logger.WarnContext(ctx, "submit failed", "slug", e.Slug, "duration", e.Duration)
				return
			}
			logger.InfoContext(ctx, "scored", "slug", e.Slug, "stars", e.Stars, "duration", e.Duration)
		},
	}
}
