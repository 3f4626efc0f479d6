package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/giveaibreak/pkg/adapters/memory"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScorer struct {
	score   domain.Score
	err     error
	gotVar  domain.Variation
	gotResp string
}

func (s *stubScorer) Score(ctx context.Context, def domain.PromptDefinition, v domain.Variation, response string) (domain.Score, error) {
	s.gotVar, s.gotResp = v, response
	return s.score, s.err
}

func catalog() *memory.Catalog {
	return memory.NewCatalog(domain.PromptDefinition{
		Slug:        "a",
		Description: "desc",
		Variations: []domain.Variation{
			{Sender: "One"}, {Sender: "Two"}, {Sender: "Three"},
		},
	})
}

func TestLocal_GetPromptIsSeeded(t *testing.T) {
	ctx := context.Background()
	pick := func() []int {
		svc := service.New(catalog(), nil, service.WithSeed(42))
		var got []int
		for range 10 {
			p, err := svc.GetPrompt(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, p.Variation.Sender, []string{"One", "Two", "Three"}[p.VariationIndex])
			got = append(got, p.VariationIndex)
		}
		return got
	}
	assert.Equal(t, pick(), pick())
}

func TestLocal_UnknownSlug(t *testing.T) {
	svc := service.New(catalog(), nil)
	_, err := svc.GetPrompt(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)

	_, err = svc.Submit(context.Background(), "nope", domain.Submission{Response: "x"})
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)
}

func TestLocal_SubmitUsesVariationAndClamps(t *testing.T) {
	scorer := &stubScorer{score: domain.Score{Message: "great", Stars: 7}}
	svc := service.New(catalog(), scorer)

	score, err := svc.Submit(context.Background(), "a", domain.Submission{Response: "hello", VariationIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, score.Stars)
	assert.Equal(t, "Two", scorer.gotVar.Sender)
	assert.Equal(t, "hello", scorer.gotResp)
}

func TestLocal_SubmitErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := service.New(catalog(), &stubScorer{err: boom})

	_, err := svc.Submit(context.Background(), "a", domain.Submission{Response: "   "})
	assert.ErrorIs(t, err, service.ErrBadSubmission)

	_, err = svc.Submit(context.Background(), "a", domain.Submission{Response: "hi"})
	assert.ErrorIs(t, err, boom)
}

func TestKeywordScorer(t *testing.T) {
	ctx := context.Background()
	k := service.NewKeywordScorer()
	def := domain.PromptDefinition{Keywords: []string{"thanks", "lunch"}}

	score := func(resp string) int {
		s, err := k.Score(ctx, def, domain.Variation{}, resp)
		require.NoError(t, err)
		assert.NotEmpty(t, s.Message)
		return s.Stars
	}

	assert.Equal(t, 0, score("!!!"))
	assert.Equal(t, 1, score("ok sure"))
	assert.Equal(t, 2, score("here is a short email for you"))
	assert.Equal(t, 4, score("hi sam, thanks for everything, want to grab lunch friday?"))
	long := strings.Repeat("word ", 25) + "thanks lunch"
	assert.Equal(t, 5, score(long))
}
