package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/giveaibreak/internal/presentation/graph"
	"github.com/aretw0/giveaibreak/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		prompts  []string
		overlay  *graph.GraphOverlay
		contains []string
		absent   []string
	}{
		{
			name:    "Screen Shapes",
			prompts: []string{"a"},
			contains: []string{
				`landing(("/"))`,
				`intro["/intro"]`,
				`prompt_a[/"/prompt/a"/]`,
				`finish[["/finish"]]`,
			},
		},
		{
			name:    "Prompt Chain",
			prompts: []string{"friendly-email", "birthday-poem"},
			contains: []string{
				`landing -- "start" --> intro`,
				`intro -- "okay" --> prompt_friendly_email`,
				`prompt_friendly_email -- "next" --> prompt_birthday_poem`,
				`prompt_birthday_poem -- "finish" --> finish`,
				`finish -. "again" .-> landing`,
			},
		},
		{
			name: "Fallback Without Prompts",
			contains: []string{
				`intro -- "okay" --> prompt_fallback`,
				`prompt_fallback -- "finish" --> finish`,
			},
		},
		{
			name:    "Overlay",
			prompts: []string{"a", "b"},
			overlay: &graph.GraphOverlay{Answered: []string{"a", "a"}, Current: "/prompt/b"},
			contains: []string{
				"class prompt_a visited;",
				"class prompt_b current;",
			},
		},
		{
			name:    "Overlay Ignores Bad Route",
			prompts: []string{"a"},
			overlay: &graph.GraphOverlay{Current: "/nowhere"},
			absent:  []string{" current;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.prompts, "fallback", tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(got, bad) {
					t.Errorf("GenerateMermaid() = \n%v\nUnwanted substring: %v", got, bad)
				}
			}
			if tt.overlay != nil && strings.Count(got, "visited;") > 1 {
				t.Errorf("visited prompts must be deduplicated:\n%v", got)
			}
		})
	}
}

func TestOverlayFor(t *testing.T) {
	snap := domain.NewSnapshot("s")
	snap.Route = "/finish"
	snap.State.ResponseHistory = []domain.ResponseRecord{{Prompt: "a"}, {Prompt: "b"}}

	o := graph.OverlayFor(snap)
	if o.Current != "/finish" || len(o.Answered) != 2 || o.Answered[1] != "b" {
		t.Errorf("OverlayFor() = %+v", o)
	}
}
