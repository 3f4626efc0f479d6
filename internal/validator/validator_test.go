package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/giveaibreak/pkg/adapters/memory"
	"github.com/aretw0/giveaibreak/pkg/domain"
)

func TestValidateCatalog(t *testing.T) {
	ctx := context.Background()

	// Scenario A: the built-in catalog is valid
	if err := ValidateCatalog(ctx, memory.DefaultCatalog()); err != nil {
		t.Errorf("Scenario A (Builtin) failed: %v", err)
	}

	// Scenario B: empty catalog
	if err := ValidateCatalog(ctx, memory.NewCatalog()); err == nil {
		t.Error("Scenario B (Empty) should have failed, but got nil")
	}

	// Scenario C: broken definitions are all reported
	broken := memory.NewCatalog(
		domain.PromptDefinition{Slug: "quiet", Description: "  "},
		domain.PromptDefinition{
			Slug:        "odd",
			Description: "write something",
			Variations:  []domain.Variation{{Sender: "", AvatarColor: "red", Message: "hi"}},
		},
	)
	err := ValidateCatalog(ctx, broken)
	if err == nil {
		t.Fatal("Scenario C (Broken) should have failed, but got nil")
	}
	for _, want := range []string{
		"found 4 errors",
		"'quiet': empty description",
		"'quiet': no variations",
		"'odd' variation 0: missing sender",
		`avatar color "red" is not #rrggbb`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in error, got: %v", want, err)
		}
	}
}
