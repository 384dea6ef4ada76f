package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer when stdout is a terminal and a
// passthrough otherwise, so piped output stays plain markdown.
func NewRenderer() Renderer {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return Plain
	}
	return NewGlamour(0)
}

// NewGlamour returns a glamour renderer. A positive width enables word wrap.
func NewGlamour(width int) Renderer {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return Plain
	}
	return r.Render
}

// Plain returns markdown unchanged.
func Plain(markdown string) (string, error) {
	return markdown, nil
}
