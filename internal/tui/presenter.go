package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgallion1/slidedeck/internal/pacing"
	"github.com/dgallion1/slidedeck/internal/present"
)

// ViewMsg carries a follower update into the program.
type ViewMsg present.View

// Forward returns an observer that feeds follower views to a running
// program.
func Forward(p *tea.Program) func(present.View) {
	return func(v present.View) {
		p.Send(ViewMsg(v))
	}
}

// PresenterModel shows the speaker notes for whatever slide the
// presentation is on. Long notes scroll with the arrow keys.
type PresenterModel struct {
	view     present.View
	notes    viewport.Model
	renderer *glamour.TermRenderer
	width    int
}

func NewPresenterModel(initial present.View) PresenterModel {
	m := PresenterModel{
		view:     initial,
		notes:    viewport.New(defaultWidth, 20),
		renderer: newRenderer(defaultWidth),
		width:    defaultWidth,
	}
	m.refresh()
	return m
}

func (m PresenterModel) Init() tea.Cmd {
	return nil
}

func (m PresenterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ViewMsg:
		m.view = present.View(msg)
		m.refresh()
		m.notes.GotoTop()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.notes.Width = msg.Width
		// Title, counter and padding.
		m.notes.Height = max(msg.Height-6, 3)
		m.renderer = newRenderer(msg.Width)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m *PresenterModel) refresh() {
	s := m.view.Slide
	if s == nil {
		m.notes.SetContent("")
		return
	}
	if s.Content.SpeakerNotes == nil {
		m.notes.SetContent(helpStyle.Render("No speaker notes for this slide."))
		return
	}
	m.notes.SetContent(renderMarkdown(m.renderer, *s.Content.SpeakerNotes))
}

func (m PresenterModel) View() string {
	switch {
	case m.view.Loading:
		return statusStyle.Render("Loading slides...")
	case m.view.Waiting() && m.view.HasPosition:
		return statusStyle.Render(fmt.Sprintf("Waiting for slide %d...", m.view.Position))
	case m.view.Waiting():
		return statusStyle.Render("Waiting for the presentation to start...")
	}

	s := m.view.Slide
	header := titleStyle.Render(fmt.Sprintf("%d. %s", s.Number, s.Title))
	if s.Part != "" {
		header += "  " + partStyle.Render(s.Part)
	}
	if s.Content.SpeakerNotes != nil {
		if d := pacing.SpeakingTime(*s.Content.SpeakerNotes); d > 0 {
			header += "  " + counterStyle.Render("~"+d.String()+" to speak")
		}
	}
	return frameStyle.Render(header + "\n\n" + m.notes.View())
}
