package flow

import (
	"errors"
	"strings"

	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/session"
)

var (
	// ErrEmptyResponse rejects blank or whitespace-only submissions.
	ErrEmptyResponse = errors.New("empty response")
	// ErrScreenClosed is returned for actions on a torn-down prompt screen.
	ErrScreenClosed = errors.New("prompt screen closed")
)

// Mode is the display mode of a prompt screen.
type Mode int

const (
	ModeAwaitingFetch Mode = iota
	ModeReadyForInput
	ModeSubmitting
	ModeScored
)

func (m Mode) String() string {
	switch m {
	case ModeReadyForInput:
		return "ready_for_input"
	case ModeSubmitting:
		return "submitting"
	case ModeScored:
		return "scored"
	default:
		return "awaiting_fetch"
	}
}

// RetryKind tells the driver which request to reissue.
type RetryKind int

const (
	RetryNone RetryKind = iota
	RetryFetch
	RetrySubmit
)

// PromptScreen is the state of one Prompt[slug] visit.
//
// The score is revealed only once both the response has arrived and the minimum
// loading delay has elapsed, in either order. The record is appended to the
// session store on that transition, before anything is displayed.
type PromptScreen struct {
	slug  string
	store *session.Store
	mode  Mode

	prompt *domain.Prompt
	typed  bool

	response   string
	submission domain.Submission
	score      *domain.Score
	minElapsed bool

	err    error
	closed bool
}

// NewPromptScreen creates a screen for slug that records into store.
func NewPromptScreen(slug string, store *session.Store) *PromptScreen {
	return &PromptScreen{slug: slug, store: store}
}

// Slug returns the slug this screen shows.
func (p *PromptScreen) Slug() string { return p.slug }

// Mode returns the current display mode.
func (p *PromptScreen) Mode() Mode { return p.mode }

// Closed reports whether the screen was torn down.
func (p *PromptScreen) Closed() bool { return p.closed }

// Prompt returns the fetched prompt, if any.
func (p *PromptScreen) Prompt() (domain.Prompt, bool) {
	if p.prompt == nil {
		return domain.Prompt{}, false
	}
	return *p.prompt, true
}

// Score returns the received score, if any. It is available before the
// screen reaches ModeScored.
func (p *PromptScreen) Score() (domain.Score, bool) {
	if p.score == nil {
		return domain.Score{}, false
	}
	return *p.score, true
}

// Response returns the submitted response text.
func (p *PromptScreen) Response() string { return p.response }

// Submission returns the request body of the last submission.
func (p *PromptScreen) Submission() domain.Submission { return p.submission }

// Err returns the last fetch or submit failure. It is cleared by Retry.
func (p *PromptScreen) Err() error { return p.err }

// Loading reports whether the loading indicator should be shown.
func (p *PromptScreen) Loading() bool { return p.mode == ModeSubmitting }

// FetchSucceeded stores the prompt detail. The screen stays in AwaitingFetch
// until the description has been typed out. A restored Scored screen only
// takes the detail for display.
func (p *PromptScreen) FetchSucceeded(prompt domain.Prompt) {
	if p.closed {
		return
	}
	if p.mode == ModeScored && p.prompt == nil {
		p.prompt = &prompt
		return
	}
	if p.mode != ModeAwaitingFetch {
		return
	}
	p.prompt = &prompt
	p.err = nil
	p.promote()
}

// FetchFailed records a failed detail fetch. The screen stays blank.
func (p *PromptScreen) FetchFailed(err error) {
	if p.closed || p.mode != ModeAwaitingFetch {
		return
	}
	p.err = err
}

// DescriptionTyped signals that the description finished its typing reveal.
func (p *PromptScreen) DescriptionTyped() {
	if p.closed {
		return
	}
	p.typed = true
	p.promote()
}

func (p *PromptScreen) promote() {
	if p.mode == ModeAwaitingFetch && p.prompt != nil && p.typed {
		p.mode = ModeReadyForInput
	}
}

// Submit validates response and moves to Submitting. It returns the request
// body to send. Blank responses are rejected with ErrEmptyResponse and change nothing.
func (p *PromptScreen) Submit(response string) (domain.Submission, error) {
	if p.closed {
		return domain.Submission{}, ErrScreenClosed
	}
	if p.mode != ModeReadyForInput {
		return domain.Submission{}, ErrInvalidTransition
	}
	if strings.TrimSpace(response) == "" {
		return domain.Submission{}, ErrEmptyResponse
	}
	p.response = response
	p.submission = domain.Submission{Response: response, VariationIndex: p.prompt.VariationIndex}
	p.mode = ModeSubmitting
	p.minElapsed = false
	p.score = nil
	p.err = nil
	return p.submission, nil
}

// SubmitSucceeded stores the score and reveals it if the minimum delay is over.
func (p *PromptScreen) SubmitSucceeded(score domain.Score) {
	if p.closed || p.mode != ModeSubmitting {
		return
	}
	score.Stars = domain.ClampStars(score.Stars)
	p.score = &score
	p.reveal()
}

// SubmitFailed records a failed submission. The screen keeps loading.
func (p *PromptScreen) SubmitFailed(err error) {
	if p.closed || p.mode != ModeSubmitting {
		return
	}
	p.err = err
}

// MinDelayElapsed signals the end of the minimum loading delay.
func (p *PromptScreen) MinDelayElapsed() {
	if p.closed || p.mode != ModeSubmitting {
		return
	}
	p.minElapsed = true
	p.reveal()
}

func (p *PromptScreen) reveal() {
	if p.score == nil || !p.minElapsed {
		return
	}
	p.store.Record(p.slug, p.response, p.score.Message, p.score.Stars)
	p.mode = ModeScored
}

// restoreScored puts the screen back in Scored from a persisted record.
// Nothing is recorded again.
func (p *PromptScreen) restoreScored(rec domain.ResponseRecord) {
	p.response = rec.UserResponse
	p.score = &domain.Score{Message: rec.AIResponse, Stars: rec.Stars}
	p.typed = true
	p.minElapsed = true
	p.err = nil
	p.mode = ModeScored
}

// Retry clears a failure and reports which request must be reissued.
// A retried submission starts a new minimum loading delay.
func (p *PromptScreen) Retry() RetryKind {
	if p.closed || p.err == nil {
		return RetryNone
	}
	p.err = nil
	switch p.mode {
	case ModeAwaitingFetch:
		return RetryFetch
	case ModeSubmitting:
		p.minElapsed = false
		return RetrySubmit
	default:
		return RetryNone
	}
}

// Close tears the screen down. Later results are discarded.
func (p *PromptScreen) Close() {
	p.closed = true
}
