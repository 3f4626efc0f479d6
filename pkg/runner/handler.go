package runner

import (
	"context"
)

// Kind identifies what a Block shows.
type Kind string

const (
	// KindTitle is the landing heading.
	KindTitle Kind = "title"
	// KindScript is the assistant talking: intro lines, a prompt description, a verdict.
	KindScript Kind = "script"
	// KindMessage is the request bubble of the person asking.
	KindMessage Kind = "message"
	// KindStars is a 0..5 rating.
	KindStars Kind = "stars"
	// KindLoading is shown while a submission is scored.
	KindLoading Kind = "loading"
	// KindShare is the share text of the finish screen.
	KindShare Kind = "share"
	// KindError reports a failed request that can be retried.
	KindError Kind = "error"
)

// Block is one element of a screen.
type Block struct {
	Kind   Kind   `json:"kind"`
	Text   string `json:"text,omitempty"`
	Sender string `json:"sender,omitempty"`
	Color  string `json:"color,omitempty"`
	Stars  int    `json:"stars,omitempty"`
	// Typed blocks are revealed character by character by handlers that animate.
	Typed bool `json:"typed,omitempty"`
}

// View is everything a handler needs to present one step of the game.
type View struct {
	Route   string   `json:"route"`
	Blocks  []Block  `json:"blocks,omitempty"`
	Actions []string `json:"actions,omitempty"`
	// Placeholder is set when free text is expected rather than a command.
	Placeholder string `json:"placeholder,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI) and JSON (structured) modes.
type IOHandler interface {
	// Output presents a view. It returns once every typed block is fully visible.
	Output(ctx context.Context, view View) error

	// Input reads one line from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (e.g. "copied", a validation hint).
	// This is distinct from screen content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms message text before it is printed,
// e.g. markdown to ANSI. Errors fall back to the raw text.
type ContentRenderer func(string) (string, error)
