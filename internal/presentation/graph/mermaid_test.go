package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/synapse/internal/presentation/graph"
	"github.com/aretw0/synapse/pkg/domain"
)

func tr(from, to domain.CognitiveState) domain.CognitiveTransition {
	return domain.CognitiveTransition{From: from, To: to}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		transitions []domain.CognitiveTransition
		overlay     *graph.Overlay
		contains    []string
		excludes    []string
	}{
		{
			name: "State Shapes",
			contains: []string{
				`neutral(("neutral"))`,
				`frustrated{{"frustrated"}}`,
				`learning["learning"]`,
			},
			excludes: []string{"-->", "classDef"},
		},
		{
			name: "Repeated Transitions Collapse",
			transitions: []domain.CognitiveTransition{
				tr(domain.CognitiveNeutral, domain.CognitiveFrustrated),
				tr(domain.CognitiveFrustrated, domain.CognitiveNeutral),
				tr(domain.CognitiveNeutral, domain.CognitiveFrustrated),
			},
			contains: []string{
				`neutral -- "x2" --> frustrated`,
				`frustrated --> neutral`,
			},
		},
		{
			name: "Overlay",
			transitions: []domain.CognitiveTransition{
				tr(domain.CognitiveNeutral, domain.CognitiveConcentrated),
			},
			overlay: &graph.Overlay{Current: domain.CognitiveConcentrated},
			contains: []string{
				"class neutral visited;",
				"class concentrated current;",
			},
			excludes: []string{"class concentrated visited;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.transitions, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnwanted substring: %v", got, unwanted)
				}
			}
		})
	}
}
