package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/giveaibreak/pkg/adapters/memory"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_OrderAndLookup(t *testing.T) {
	ctx := context.Background()
	c := memory.NewCatalog(
		domain.PromptDefinition{Slug: "b", Description: "first b"},
		domain.PromptDefinition{Slug: "a"},
		domain.PromptDefinition{Slug: "b", Description: "second b"},
	)

	slugs, err := c.Slugs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, slugs)

	def, err := c.Definition(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "second b", def.Description)

	_, err = c.Definition(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)
}

func TestDefaultCatalog(t *testing.T) {
	ctx := context.Background()
	c := memory.DefaultCatalog()

	slugs, err := c.Slugs(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, slugs)
	assert.Equal(t, "friendly-email", slugs[0])

	for _, slug := range slugs {
		def, err := c.Definition(ctx, slug)
		require.NoError(t, err)
		assert.NotEmpty(t, def.Variations, slug)
		assert.NotEmpty(t, def.Description, slug)
	}
}
