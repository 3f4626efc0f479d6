package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listerFunc func(ctx context.Context) ([]string, error)

func (f listerFunc) ListPrompts(ctx context.Context) ([]string, error) { return f(ctx) }

func TestStore_StartsEmpty(t *testing.T) {
	s := session.NewStore()
	assert.False(t, s.Ready())
	assert.Empty(t, s.Prompts())
	assert.Zero(t, s.CurrentIndex())
	assert.Empty(t, s.History())
}

func TestStore_LoadReplacesPrompts(t *testing.T) {
	s := session.NewStore()
	s.Load([]string{"a", "b"})
	s.Load([]string{"c"})

	assert.True(t, s.Ready())
	assert.Equal(t, []string{"c"}, s.Prompts())
}

func TestStore_LoadFromFailureLeavesPromptsEmpty(t *testing.T) {
	s := session.NewStore()
	err := s.LoadFrom(context.Background(), listerFunc(func(context.Context) ([]string, error) {
		return nil, errors.New("offline")
	}))

	assert.Error(t, err)
	assert.False(t, s.Ready())
}

func TestStore_LoadFrom(t *testing.T) {
	s := session.NewStore()
	err := s.LoadFrom(context.Background(), listerFunc(func(context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Prompts())
}

func TestStore_RecordAppendsInSubmissionOrder(t *testing.T) {
	s := session.NewStore()
	s.Load([]string{"a", "b"})

	s.Record("b", "later one first", "hm", 2)
	s.Record("a", "then this", "ok", 4)
	s.Record("a", "again", "ok", 4)

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, "b", history[0].Prompt)
	assert.Equal(t, "a", history[1].Prompt)
	assert.Equal(t, "again", history[2].UserResponse, "duplicates are not suppressed")
}

func TestStore_ResetKeepsPrompts(t *testing.T) {
	s := session.NewStore()
	s.Load([]string{"a", "b"})
	s.Record("a", "x", "y", 5)
	s.Advance(1)

	s.Reset()

	assert.Len(t, s.History(), 0)
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, []string{"a", "b"}, s.Prompts())
}

func TestStore_AccessorsReturnCopies(t *testing.T) {
	s := session.NewStore()
	s.Load([]string{"a"})
	s.Record("a", "x", "y", 1)

	s.Prompts()[0] = "z"
	s.History()[0].Stars = 5

	assert.Equal(t, "a", s.Prompts()[0])
	assert.Equal(t, 1, s.History()[0].Stars)
}

func TestStore_RestoreAndIndexOf(t *testing.T) {
	s := session.NewStore()
	s.Restore(domain.SessionState{
		Prompts:            []string{"a", "b", "c"},
		CurrentPromptIndex: 2,
	})

	assert.Equal(t, 2, s.CurrentIndex())
	assert.Equal(t, 1, s.IndexOf("b"))
	assert.Equal(t, -1, s.IndexOf("nope"))
	assert.Equal(t, []string{"a", "b", "c"}, s.Snapshot().Prompts)
}
