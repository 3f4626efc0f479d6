package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/aretw0/giveaibreak/pkg/domain"
)

// KeywordScorer rates a response by length and by how many of the prompt's
// keywords it mentions. It is deterministic and needs no network.
type KeywordScorer struct {
	// MinWords is the length below which a response earns at most one star.
	MinWords int
}

// NewKeywordScorer creates a scorer with default thresholds.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{MinWords: 5}
}

var replies = [domain.MaxStars + 1]string{
	"that's... not really anything. i'll have to do it myself.",
	"hm. it's a start, i guess.",
	"okay, that's something. they might not notice.",
	"not bad at all. i can work with this.",
	"this is good. honestly better than what i'd write.",
	"wow. you should have my job. actually please take it.",
}

// Score implements ports.Scorer.
func (k *KeywordScorer) Score(ctx context.Context, def domain.PromptDefinition, variation domain.Variation, response string) (domain.Score, error) {
	words := strings.FieldsFunc(strings.ToLower(response), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})

	var stars int
	switch {
	case len(words) == 0:
		stars = 0
	case len(words) < k.MinWords:
		stars = 1
	default:
		stars = 2
		if len(words) >= 4*k.MinWords {
			stars++
		}
		stars += min(hits(strings.ToLower(response), def.Keywords), 2)
	}
	stars = domain.ClampStars(stars)

	return domain.Score{Message: replies[stars], Stars: stars}, nil
}

func hits(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
