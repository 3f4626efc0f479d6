package typing

import (
	"slices"
	"strings"
	"time"
)

const (
	// DefaultSpeed is the delay between two revealed characters.
	DefaultSpeed = 25 * time.Millisecond
	// DefaultPause is the delay between the end of one text and the start of the next.
	DefaultPause = 500 * time.Millisecond
	// DefaultSeparator joins revealed texts in String.
	DefaultSeparator = "\n\n"
)

// Event describes what a single Advance did.
type Event int

const (
	// EventNone means the typer was already done.
	EventNone Event = iota
	// EventChar means one more character of the current text became visible.
	EventChar
	// EventTextDone means the current text is now fully visible and more texts follow.
	EventTextDone
	// EventComplete means the last text is fully visible. It is reported exactly once.
	EventComplete
)

func (e Event) String() string {
	switch e {
	case EventChar:
		return "char"
	case EventTextDone:
		return "text_done"
	case EventComplete:
		return "complete"
	default:
		return "none"
	}
}

// Config holds the timing of a Typer.
type Config struct {
	Speed      time.Duration
	Pause      time.Duration
	StartDelay time.Duration
	Separator  string
}

// Option configures a Typer.
type Option func(*Config)

// WithSpeed sets the per-character delay. Values <= 0 fall back to DefaultSpeed.
func WithSpeed(d time.Duration) Option {
	return func(c *Config) {
		c.Speed = d
	}
}

// WithPause sets the delay between texts. Negative values are treated as zero.
func WithPause(d time.Duration) Option {
	return func(c *Config) {
		c.Pause = d
	}
}

// WithStartDelay delays the first character.
func WithStartDelay(d time.Duration) Option {
	return func(c *Config) {
		c.StartDelay = d
	}
}

// WithSeparator sets the string placed between texts by String.
func WithSeparator(sep string) Option {
	return func(c *Config) {
		c.Separator = sep
	}
}

func newConfig(opts []Option) Config {
	cfg := Config{
		Speed:     DefaultSpeed,
		Pause:     DefaultPause,
		Separator: DefaultSeparator,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Speed <= 0 {
		cfg.Speed = DefaultSpeed
	}
	cfg.Pause = max(cfg.Pause, 0)
	cfg.StartDelay = max(cfg.StartDelay, 0)
	return cfg
}

// Typer is the pure reveal state of a sequence of texts.
// It never sleeps: callers ask Delay how long to wait and then call Advance.
// A Typer is not safe for concurrent use.
type Typer struct {
	cfg      Config
	source   []string
	texts    [][]rune
	index    int
	revealed int
	started  bool
	done     bool
}

// New creates a Typer for texts. An empty sequence, or a sequence whose only
// element is empty, is done immediately.
func New(texts []string, opts ...Option) *Typer {
	t := &Typer{cfg: newConfig(opts)}
	t.Reset(texts)
	return t
}

// Reset starts over with texts: index 0, nothing revealed.
func (t *Typer) Reset(texts []string) {
	t.source = slices.Clone(texts)
	t.texts = make([][]rune, len(texts))
	for i, s := range texts {
		t.texts[i] = []rune(s)
	}
	t.index = 0
	t.revealed = 0
	t.started = false
	t.done = false
	t.settle()
}

// SetTexts resets the typer when texts differ from the current sequence.
// It reports whether a reset happened.
func (t *Typer) SetTexts(texts []string) bool {
	if slices.Equal(t.source, texts) {
		return false
	}
	t.Reset(texts)
	return true
}

// Texts returns the sequence being revealed.
func (t *Typer) Texts() []string {
	return slices.Clone(t.source)
}

// Config returns the effective timing after clamping.
func (t *Typer) Config() Config {
	return t.cfg
}

// settle marks completion when the current text is already fully visible
// and it is the last one. Only zero-length texts reach this without a tick.
func (t *Typer) settle() Event {
	if len(t.texts) == 0 {
		t.done = true
		return EventComplete
	}
	if t.revealed < len(t.texts[t.index]) {
		return EventChar
	}
	if t.index == len(t.texts)-1 {
		t.done = true
		return EventComplete
	}
	return EventTextDone
}

// Advance performs one tick: it reveals one more character of the current text, or,
// when the current text is complete, moves to the next text and reveals its first character.
func (t *Typer) Advance() Event {
	if t.done {
		return EventNone
	}
	t.started = true
	if t.revealed >= len(t.texts[t.index]) {
		t.index++
		t.revealed = 0
	}
	if t.revealed < len(t.texts[t.index]) {
		t.revealed++
	}
	return t.settle()
}

// Delay returns how long to wait before the next Advance. It is zero once done.
func (t *Typer) Delay() time.Duration {
	if t.done {
		return 0
	}
	var d time.Duration
	if !t.started {
		d = t.cfg.StartDelay
	}
	if t.revealed >= len(t.texts[t.index]) {
		return d + t.cfg.Pause
	}
	return d + t.cfg.Speed
}

// Done reports whether every text is fully visible.
func (t *Typer) Done() bool {
	return t.done
}

// Position returns the index of the current text and how many of its characters are visible.
func (t *Typer) Position() (textIndex, revealed int) {
	return t.index, t.revealed
}

// Lines returns the visible part of each text reached so far.
func (t *Typer) Lines() []string {
	if len(t.texts) == 0 {
		return nil
	}
	lines := make([]string, 0, t.index+1)
	for i := 0; i < t.index; i++ {
		lines = append(lines, t.source[i])
	}
	return append(lines, string(t.texts[t.index][:t.revealed]))
}

// String returns the visible text, joined with the configured separator.
func (t *Typer) String() string {
	return strings.Join(t.Lines(), t.cfg.Separator)
}

// Fresh returns the rune offset, within the current text, of the most recently
// revealed character, or -1 when nothing of the current text is visible.
// Renderers use it to fade the newest character in.
func (t *Typer) Fresh() int {
	if t.done || t.revealed == 0 {
		return -1
	}
	return t.revealed - 1
}
