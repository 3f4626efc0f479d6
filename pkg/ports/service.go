package ports

import (
	"context"

	"github.com/aretw0/giveaibreak/pkg/domain"
)

// PromptService is the remote API the game talks to.
type PromptService interface {
	// ListPrompts returns the ordered prompt slugs.
	ListPrompts(ctx context.Context) ([]string, error)

	// GetPrompt returns the prompt detail for slug.
	GetPrompt(ctx context.Context, slug string) (domain.Prompt, error)

	// Submit sends a response for scoring.
	Submit(ctx context.Context, slug string, sub domain.Submission) (domain.Score, error)
}

// Catalog is the prompt source of the stub service.
type Catalog interface {
	// Slugs returns the prompt slugs in presentation order.
	Slugs(ctx context.Context) ([]string, error)

	// Definition returns the definition for slug or domain.ErrPromptNotFound.
	Definition(ctx context.Context, slug string) (domain.PromptDefinition, error)
}

// Scorer rates a response for the stub service.
type Scorer interface {
	Score(ctx context.Context, def domain.PromptDefinition, variation domain.Variation, response string) (domain.Score, error)
}
