// Package report renders a markdown summary of a running session.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/synapse/internal/presentation/graph"
	"github.com/aretw0/synapse/pkg/cognitive"
	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/aretw0/synapse/pkg/history"
	"github.com/aretw0/synapse/pkg/plugin"
)

// WindowSize is the number of recent interactions summarised in the report.
const WindowSize = 20

// Source is the part of a runtime the report reads from.
type Source interface {
	Bus() *events.Bus
	Plugins() *plugin.Orchestrator
	History() *history.History
	Cognitive() cognitive.Snapshot
}

// Session is a point-in-time copy of everything the report shows.
type Session struct {
	Title        string
	At           time.Time
	Cognitive    cognitive.Snapshot
	Transitions  []domain.CognitiveTransition
	Plugins      []plugin.Status
	Bus          events.Stats
	Interactions int
	Window       history.Window
}

// Collect snapshots src.
func Collect(src Source, title string) Session {
	s := Session{
		Title:        title,
		At:           time.Now(),
		Cognitive:    src.Cognitive(),
		Plugins:      src.Plugins().Status(),
		Bus:          src.Bus().Stats(),
		Interactions: src.History().Len(),
		Window:       src.History().Window(WindowSize),
	}
	for _, evt := range src.Bus().History(domain.EventCognitiveChanged, 0) {
		if tr, ok := evt.Payload.(domain.CognitiveTransition); ok {
			s.Transitions = append(s.Transitions, tr)
		}
	}
	return s
}

// Markdown renders s.
func Markdown(s Session) string {
	var sb strings.Builder

	title := s.Title
	if title == "" {
		title = "Session Report"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if !s.At.IsZero() {
		fmt.Fprintf(&sb, "_Generated %s_\n\n", s.At.Format(time.RFC3339))
	}

	sb.WriteString("## Cognitive State\n\n")
	fmt.Fprintf(&sb, "- **Current:** %s (confidence %.2f)\n", s.Cognitive.State, s.Cognitive.Confidence)
	if s.Cognitive.Previous != "" {
		fmt.Fprintf(&sb, "- **Previous:** %s\n", s.Cognitive.Previous)
	}
	fmt.Fprintf(&sb, "- **Transitions:** %d\n\n", s.Cognitive.Transitions)

	if len(s.Transitions) > 0 {
		sb.WriteString("| # | From | To | Confidence |\n|---|------|----|------------|\n")
		for i, tr := range s.Transitions {
			fmt.Fprintf(&sb, "| %d | %s | %s | %.2f |\n", i+1, tr.From, tr.To, tr.Confidence)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("```mermaid\n")
	sb.WriteString(graph.GenerateMermaid(s.Transitions, &graph.Overlay{Current: s.Cognitive.State}))
	sb.WriteString("```\n\n")

	sb.WriteString("## Interactions\n\n")
	fmt.Fprintf(&sb, "- **Recorded:** %d\n", s.Interactions)
	if n := s.Window.Len(); n > 0 {
		fmt.Fprintf(&sb, "- **Last %d error rate:** %.0f%%\n", n, s.Window.ErrorRate()*100)
		fmt.Fprintf(&sb, "- **Average duration:** %s\n", s.Window.AvgDuration().Round(time.Millisecond))
		fmt.Fprintf(&sb, "- **Type variety:** %.2f\n", s.Window.TypeVariety())
	}
	sb.WriteString("\n")

	sb.WriteString("## Plugins\n\n")
	if len(s.Plugins) == 0 {
		sb.WriteString("No plugins registered.\n\n")
	} else {
		sb.WriteString("| Plugin | State | Priority | Cohort | Error |\n|--------|-------|----------|--------|-------|\n")
		for _, p := range s.Plugins {
			cohort := "deferred"
			if p.Critical {
				cohort = "critical"
			}
			if p.Essential {
				cohort += ", essential"
			}
			fmt.Fprintf(&sb, "| %s | %s | %d | %s | %s |\n", p.Name, p.State, p.Priority, cohort, escapeCell(p.Error))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Event Channel\n\n")
	fmt.Fprintf(&sb, "- **Emitted:** %d\n", s.Bus.Emitted)
	fmt.Fprintf(&sb, "- **Delivered:** %d\n", s.Bus.Delivered)
	fmt.Fprintf(&sb, "- **Cancelled:** %d\n", s.Bus.Cancelled)
	fmt.Fprintf(&sb, "- **Handler failures:** %d\n", s.Bus.HandlerFailures)
	fmt.Fprintf(&sb, "- **Circuit breaks:** %d\n", s.Bus.CircuitBreaks)
	fmt.Fprintf(&sb, "- **Subscribers:** %d\n", s.Bus.Subscribers)

	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
