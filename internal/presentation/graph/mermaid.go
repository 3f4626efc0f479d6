package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/flow"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	// Answered lists the slugs that already have a scored response.
	Answered []string
	// Current is the route the session is on.
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of the screen flow for prompts.
// An empty prompt list routes the intro to fallback, as the game does.
// It applies semantic styling:
// - Landing: ((Circle))
// - Prompt: [/Parallelogram/]
// - Finish: [[Subroutine]]
// - Intro: [Rectangle]
func GenerateMermaid(prompts []string, fallback string, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	first := fallback
	if len(prompts) > 0 {
		first = prompts[0]
	}

	writeNode(&sb, flow.Landing, "((", "))")
	writeNode(&sb, flow.Intro, "[", "]")
	writeEdge(&sb, flow.Landing, "start", flow.Intro)
	writeEdge(&sb, flow.Intro, "okay", flow.PromptRoute(first))

	chain := prompts
	if len(chain) == 0 {
		chain = []string{fallback}
	}
	for i, slug := range chain {
		r := flow.PromptRoute(slug)
		writeNode(&sb, r, "[/", "/]")
		if i+1 < len(chain) {
			writeEdge(&sb, r, "next", flow.PromptRoute(chain[i+1]))
			continue
		}
		writeEdge(&sb, r, "finish", flow.Finish)
	}

	writeNode(&sb, flow.Finish, "[[", "]]")
	fmt.Fprintf(&sb, "    %s -. \"again\" .-> %s\n", nodeID(flow.Finish), nodeID(flow.Landing))

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#fef9c3,stroke:#a16207,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#facc15,stroke:#a16207,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, slug := range overlay.Answered {
			id := nodeID(flow.PromptRoute(slug))
			if !seen[id] && slug != "" {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if r, err := flow.ParseRoute(overlay.Current); err == nil {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(r))
		}
	}
	return sb.String()
}

// OverlayFor builds the overlay of a persisted session.
func OverlayFor(snap *domain.Snapshot) *GraphOverlay {
	o := &GraphOverlay{Current: snap.Route}
	for _, rec := range snap.State.ResponseHistory {
		o.Answered = append(o.Answered, rec.Prompt)
	}
	return o
}

func writeNode(sb *strings.Builder, r flow.Route, opener, closer string) {
	fmt.Fprintf(sb, "    %s%s\"%s\"%s\n", nodeID(r), opener, r.String(), closer)
}

func writeEdge(sb *strings.Builder, from flow.Route, label string, to flow.Route) {
	fmt.Fprintf(sb, "    %s -- \"%s\" --> %s\n", nodeID(from), label, nodeID(to))
}

func nodeID(r flow.Route) string {
	if r.Screen == flow.ScreenPrompt {
		return "prompt_" + sanitizeMermaidID(r.Slug)
	}
	return r.Screen.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
