package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventScreenEnter EventType = "screen_enter"
	EventScreenLeave EventType = "screen_leave"
	EventSubmit      EventType = "submit"
	EventScored      EventType = "scored"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ScreenEvent represents entry or exit from a screen.
type ScreenEvent struct {
	EventBase
	Route  string `json:"route"`
	Screen string `json:"screen"`
}

// SubmitEvent represents a submission and, once scored, its outcome.
type SubmitEvent struct {
	EventBase
	Slug     string        `json:"slug"`
	Stars    int           `json:"stars,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for flow observability.
type LifecycleHooks struct {
	OnScreenEnter func(context.Context, *ScreenEvent)
	OnScreenLeave func(context.Context, *ScreenEvent)
	OnSubmit      func(context.Context, *SubmitEvent)
	OnScored      func(context.Context, *SubmitEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnScreenEnter: chainScreen(h.OnScreenEnter, other.OnScreenEnter),
		OnScreenLeave: chainScreen(h.OnScreenLeave, other.OnScreenLeave),
		OnSubmit:      chainSubmit(h.OnSubmit, other.OnSubmit),
		OnScored:      chainSubmit(h.OnScored, other.OnScored),
	}
}

func chainScreen(a, b func(context.Context, *ScreenEvent)) func(context.Context, *ScreenEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *ScreenEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainSubmit(a, b func(context.Context, *SubmitEvent)) func(context.Context, *SubmitEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *SubmitEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
