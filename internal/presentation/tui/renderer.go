package tui

import (
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a markdown renderer for terminal output, or nil when w
// is not a terminal (transcripts are written verbatim).
func NewRenderer(w io.Writer) func(string) (string, error) {
	if !IsTerminal(w) {
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return nil
	}
	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return "", err
		}
		return strings.Trim(out, "\n"), nil
	}
}
