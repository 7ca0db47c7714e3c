package report

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWrap is the terminal width used when none is known
const DefaultWrap = 100

// RenderTerminal pretty-prints Markdown for a terminal
func RenderTerminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWrap
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
