package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/giveaibreak/pkg/ports"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateCatalog checks every prompt of the catalog and reports all problems at once.
// A catalog must list at least one prompt, each with a description and at least
// one complete variation.
func ValidateCatalog(ctx context.Context, catalog ports.Catalog) error {
	slugs, err := catalog.Slugs(ctx)
	if err != nil {
		return fmt.Errorf("list prompts: %w", err)
	}
	if len(slugs) == 0 {
		return fmt.Errorf("catalog has no prompts")
	}

	var errors []string
	seen := make(map[string]bool)
	for _, slug := range slugs {
		if seen[slug] {
			errors = append(errors, fmt.Sprintf("Duplicate slug: '%s'", slug))
			continue
		}
		seen[slug] = true

		if slug == "" || strings.ContainsAny(slug, "/ ") {
			errors = append(errors, fmt.Sprintf("Invalid slug: '%s'", slug))
			continue
		}

		def, err := catalog.Definition(ctx, slug)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Missing prompt or load error: '%s'", slug))
			continue
		}
		if strings.TrimSpace(def.Description) == "" {
			errors = append(errors, fmt.Sprintf("'%s': empty description", slug))
		}
		if len(def.Variations) == 0 {
			errors = append(errors, fmt.Sprintf("'%s': no variations", slug))
		}
		for i, v := range def.Variations {
			if strings.TrimSpace(v.Sender) == "" {
				errors = append(errors, fmt.Sprintf("'%s' variation %d: missing sender", slug, i))
			}
			if strings.TrimSpace(v.Message) == "" {
				errors = append(errors, fmt.Sprintf("'%s' variation %d: missing message", slug, i))
			}
			if v.AvatarColor != "" && !hexColor.MatchString(v.AvatarColor) {
				errors = append(errors, fmt.Sprintf("'%s' variation %d: avatar color %q is not #rrggbb", slug, i, v.AvatarColor))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}
