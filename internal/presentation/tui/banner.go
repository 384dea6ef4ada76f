package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/synapse/pkg/domain"
)

// PrintBanner writes the synapse ASCII banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Cyan to violet gradient
	lines := []struct {
		text, color string
	}{
		{"   ___ _  _ _ __   __ _ _ __  ___  ___ ", "#22d3ee"},
		{"  / __| || | '_ \\ / _` | '_ \\/ __|/ _ \\", "#38bdf8"},
		{"  \\__ \\ || | | | | (_| | |_) \\__ \\  __/", "#818cf8"},
		{"  |___/\\_, |_| |_|\\__,_| .__/|___/\\___|", "#a78bfa"},
		{"       |__/            |_|             ", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}

var stateColors = map[domain.CognitiveState]string{
	domain.CognitiveNeutral:      "#9ca3af",
	domain.CognitiveFrustrated:   "#ef4444",
	domain.CognitiveConcentrated: "#22c55e",
	domain.CognitiveExploring:    "#3b82f6",
	domain.CognitiveLearning:     "#eab308",
}

// State colors a cognitive state name. Output that is not a terminal stays plain.
func State(s domain.CognitiveState) string {
	color, ok := stateColors[s]
	if !ok {
		return string(s)
	}
	out := termenv.DefaultOutput()
	return out.String(string(s)).Foreground(out.Color(color)).Bold().String()
}
