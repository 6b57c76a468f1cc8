package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestBanner_AsciiProfileHasNoEscapes(t *testing.T) {
	out := Banner(termenv.Ascii)
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "let's talk about movies")
	assert.Equal(t, len(bannerLines)+2, strings.Count(out, "\n"))
}

func TestNonTerminalWriters(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Empty(t, BannerFor(&buf))
	assert.Nil(t, NewRenderer(&buf))
}
