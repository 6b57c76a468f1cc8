package tui

import (
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{" _                               ", "#818cf8"},
	{"| |_ ___  _____   _____  ___     ", "#a78bfa"},
	{"| __/ _ \\/ _ \\ \\ / / _ \\/ _ \\    ", "#c084fc"},
	{"| ||  __/  __/\\ V /  __/  __/    ", "#e879f9"},
	{" \\__\\___|\\___| \\_/ \\___|\\___|    ", "#f472b6"},
}

// Banner returns the colored header for profile p.
func Banner(p termenv.Profile) string {
	var sb strings.Builder
	sb.WriteString("\n")
	for _, l := range bannerLines {
		sb.WriteString(p.String(l.text).Foreground(p.Color(l.color)).String())
		sb.WriteString("\n")
	}
	sb.WriteString(p.String("  let's talk about movies").Faint().String())
	sb.WriteString("\n")
	return sb.String()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// BannerFor returns the banner when w is a terminal and "" otherwise, so
// piped transcripts stay clean.
func BannerFor(w io.Writer) string {
	if !IsTerminal(w) {
		return ""
	}
	return Banner(termenv.NewOutput(w).Profile)
}
