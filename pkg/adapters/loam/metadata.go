package loam

import (
	"fmt"

	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// PromptMetadata is the frontmatter of a prompt document.
//
//	---
//	slug: friendly-email
//	order: 1
//	keywords: [thanks, lunch]
//	variations:
//	  - sender: Maya
//	    avatar_color: "#f472b6"
//	    message: can you write a quick email?
//	---
//	someone wants a friendly email to a coworker.
//
// The body is the description unless the frontmatter sets one.
type PromptMetadata struct {
	Slug        string           `json:"slug,omitempty" yaml:"slug,omitempty" mapstructure:"slug"`
	Order       int              `json:"order,omitempty" yaml:"order,omitempty" mapstructure:"order"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Variations  []map[string]any `json:"variations,omitempty" yaml:"variations,omitempty" mapstructure:"variations"`
	Keywords    []string         `json:"keywords,omitempty" yaml:"keywords,omitempty" mapstructure:"keywords"`
}

// decodeVariations accepts both avatar_color and avatarColor keys.
func decodeVariations(raw []map[string]any) ([]domain.Variation, error) {
	out := make([]domain.Variation, 0, len(raw))
	for i, m := range raw {
		if c, ok := m["avatarColor"]; ok {
			if _, set := m["avatar_color"]; !set {
				m["avatar_color"] = c
			}
			delete(m, "avatarColor")
		}
		var v domain.Variation
		if err := mapstructure.Decode(m, &v); err != nil {
			return nil, fmt.Errorf("variations[%d]: %w", i, err)
		}
		if v.Sender == "" || v.Message == "" {
			return nil, fmt.Errorf("variations[%d]: sender and message are required", i)
		}
		out = append(out, v)
	}
	return out, nil
}

func encodeVariations(vs []domain.Variation) []map[string]any {
	out := make([]map[string]any, 0, len(vs))
	for _, v := range vs {
		out = append(out, map[string]any{
			"sender":       v.Sender,
			"avatar_color": v.AvatarColor,
			"message":      v.Message,
		})
	}
	return out
}
