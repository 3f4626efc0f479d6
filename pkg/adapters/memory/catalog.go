package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/giveaibreak/pkg/domain"
)

// Catalog implements ports.Catalog over definitions held in memory.
type Catalog struct {
	order []string
	defs  map[string]domain.PromptDefinition
}

// NewCatalog creates a catalog that presents defs in the given order.
// A later definition with the same slug replaces the earlier one.
func NewCatalog(defs ...domain.PromptDefinition) *Catalog {
	c := &Catalog{defs: make(map[string]domain.PromptDefinition, len(defs))}
	for _, def := range defs {
		if _, seen := c.defs[def.Slug]; !seen {
			c.order = append(c.order, def.Slug)
		}
		c.defs[def.Slug] = def
	}
	return c
}

// Slugs returns the slugs in presentation order.
func (c *Catalog) Slugs(ctx context.Context) ([]string, error) {
	return slices.Clone(c.order), nil
}

// Definition returns the definition for slug.
func (c *Catalog) Definition(ctx context.Context, slug string) (domain.PromptDefinition, error) {
	def, ok := c.defs[slug]
	if !ok {
		return domain.PromptDefinition{}, fmt.Errorf("%w: %s", domain.ErrPromptNotFound, slug)
	}
	return def, nil
}

// DefaultCatalog returns the built-in prompts served when no catalog directory is configured.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		domain.PromptDefinition{
			Slug:        "friendly-email",
			Description: "someone wants a friendly email to a coworker. keep it short and warm. i'd do it myself but, you know.",
			Variations: []domain.Variation{
				{Sender: "Maya", AvatarColor: "#f472b6", Message: "can you write a quick email thanking my teammate for covering my shift?"},
				{Sender: "Tomas", AvatarColor: "#60a5fa", Message: "need a friendly email asking a coworker to lunch, nothing weird."},
			},
			Keywords: []string{"thanks", "thank", "hi", "hello", "lunch", "appreciate", "cheers"},
		},
		domain.PromptDefinition{
			Slug:        "birthday-poem",
			Description: "a birthday poem. four lines. it should rhyme, apparently that matters to people.",
			Variations: []domain.Variation{
				{Sender: "Priya", AvatarColor: "#34d399", Message: "write a short birthday poem for my grandma, she turns 90!"},
				{Sender: "Leo", AvatarColor: "#fbbf24", Message: "birthday poem for my dog please. he is a very good boy."},
			},
			Keywords: []string{"birthday", "happy", "cake", "year", "wish", "celebrate"},
		},
		domain.PromptDefinition{
			Slug:        "dinner-idea",
			Description: "they want dinner ideas from whatever is in their fridge. i don't even have a fridge.",
			Variations: []domain.Variation{
				{Sender: "Sam", AvatarColor: "#a78bfa", Message: "i have eggs, spinach and some old rice. what's for dinner?"},
				{Sender: "Noor", AvatarColor: "#f87171", Message: "got pasta, a lemon and garlic. ideas?"},
			},
			Keywords: []string{"cook", "fry", "boil", "pan", "minutes", "salt", "garlic", "rice", "pasta", "egg"},
		},
		domain.PromptDefinition{
			Slug:        "apology-text",
			Description: "an apology text. they forgot something important. help them sound sincere.",
			Variations: []domain.Variation{
				{Sender: "Jordan", AvatarColor: "#38bdf8", Message: "i forgot my best friend's wedding rehearsal. help me apologize."},
			},
			Keywords: []string{"sorry", "apologize", "forgive", "mistake", "make it up"},
		},
	)
}
