package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/synapse/pkg/domain"
)

// Overlay contains dynamic state data to highlight on the graph.
type Overlay struct {
	Current domain.CognitiveState
}

type edge struct {
	from, to domain.CognitiveState
}

// GenerateMermaid produces a Mermaid flowchart of the cognitive states and the
// transitions observed between them. Repeated transitions collapse into one
// edge labelled with the count. It applies semantic styling:
// - Neutral: ((Circle)), the resting state
// - Frustrated: {{Hexagon}}
// - Default: [Rectangle]
func GenerateMermaid(transitions []domain.CognitiveTransition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, state := range domain.CognitiveStates {
		opener, closer := "[", "]"
		switch state {
		case domain.CognitiveNeutral:
			opener, closer = "((", "))"
		case domain.CognitiveFrustrated:
			opener, closer = "{{", "}}"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(string(state)), opener, state, closer))
	}

	counts := make(map[edge]int)
	var order []edge
	for _, tr := range transitions {
		e := edge{from: tr.From, to: tr.To}
		if counts[e] == 0 {
			order = append(order, e)
		}
		counts[e]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	for _, e := range order {
		arrow := "-->"
		if n := counts[e]; n > 1 {
			arrow = fmt.Sprintf("-- \"x%d\" -->", n)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(string(e.from)), arrow, sanitizeMermaidID(string(e.to))))
	}

	if overlay != nil && overlay.Current != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[domain.CognitiveState]bool)
		for _, tr := range transitions {
			for _, s := range []domain.CognitiveState{tr.From, tr.To} {
				if !visited[s] && s != overlay.Current {
					visited[s] = true
					sb.WriteString(fmt.Sprintf("    class %s visited;\n", sanitizeMermaidID(string(s))))
				}
			}
		}
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(string(overlay.Current))))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
