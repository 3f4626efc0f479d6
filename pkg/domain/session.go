package domain

import (
	"slices"
	"time"
)

// MaxStars is the highest rating a single response can earn.
const MaxStars = 5

// ClampStars bounds a rating to 0..MaxStars.
func ClampStars(n int) int {
	return min(max(n, 0), MaxStars)
}

// ResponseRecord is one scored interaction. It is never mutated after creation.
type ResponseRecord struct {
	Prompt       string `json:"prompt"`
	UserResponse string `json:"userResponse"`
	AIResponse   string `json:"aiResponse"`
	Stars        int    `json:"stars"`
}

// SessionState is the shared source of truth for a run.
// Invariant: 0 <= CurrentPromptIndex <= len(Prompts).
type SessionState struct {
	Prompts            []string         `json:"prompts"`
	CurrentPromptIndex int              `json:"currentPromptIndex"`
	ResponseHistory    []ResponseRecord `json:"responseHistory"`
}

// Clone returns a deep copy of the state.
func (s SessionState) Clone() SessionState {
	return SessionState{
		Prompts:            slices.Clone(s.Prompts),
		CurrentPromptIndex: s.CurrentPromptIndex,
		ResponseHistory:    slices.Clone(s.ResponseHistory),
	}
}

// Snapshot is the persisted form of a session.
type Snapshot struct {
	SessionID string       `json:"session_id"`
	Route     string       `json:"route"`
	State     SessionState `json:"state"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Scored marks a prompt route whose score was already revealed. Its
	// record is the last history entry for that slug.
	Scored bool `json:"scored,omitempty"`

	// Sealed carries the encrypted form of a snapshot. When set, Route and
	// State are placeholders.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSnapshot creates an empty snapshot positioned on the landing route.
func NewSnapshot(sessionID string) *Snapshot {
	return &Snapshot{
		SessionID: sessionID,
		Route:     "/",
		UpdatedAt: time.Now().UTC(),
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.State = s.State.Clone()
	c.Sealed = slices.Clone(s.Sealed)
	return &c
}
