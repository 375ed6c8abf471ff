package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdown renders assistant replies, caching by message id since the chat
// pane is rebuilt on every change.
type markdown struct {
	renderer *glamour.TermRenderer
	width    int
	cache    map[string]string
}

func newMarkdown() *markdown {
	return &markdown{cache: make(map[string]string)}
}

// resize rebuilds the renderer for a new wrap width.
func (md *markdown) resize(width int) {
	if width < 20 {
		width = 20
	}
	if width == md.width && md.renderer != nil {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	md.renderer = r
	md.width = width
	clear(md.cache)
}

// render falls back to the raw text when glamour fails or panics.
func (md *markdown) render(id, content string) (result string) {
	if s, ok := md.cache[id]; ok {
		return s
	}
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	result = content
	if md.renderer != nil && content != "" {
		if out, err := md.renderer.Render(content); err == nil {
			result = strings.Trim(out, "\n")
		}
	}
	md.cache[id] = result
	return result
}
