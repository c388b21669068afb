// Package tui renders the deck in a terminal: the audience-facing
// presentation and the presenter's notes display.
package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const defaultWidth = 80

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#7a8699")
	warn   = lipgloss.Color("#FFC107")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	partStyle    = lipgloss.NewStyle().Italic(true).Foreground(muted)
	counterStyle = lipgloss.NewStyle().Foreground(muted)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	helpStyle    = lipgloss.NewStyle().Foreground(muted)
	statusStyle  = lipgloss.NewStyle().Foreground(warn).Padding(1, 2)
	frameStyle   = lipgloss.NewStyle().Padding(1, 2)
)

func newRenderer(width int) *glamour.TermRenderer {
	if width <= 0 {
		width = defaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return nil
	}
	return r
}

// renderMarkdown falls back to the raw text when rendering is unavailable.
func renderMarkdown(r *glamour.TermRenderer, md string) string {
	if r == nil || strings.TrimSpace(md) == "" {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func section(r *glamour.TermRenderer, heading, md string) string {
	return headingStyle.Render(heading) + "\n" + renderMarkdown(r, md)
}
