package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgallion1/slidedeck/internal/present"
	"github.com/dgallion1/slidedeck/internal/slides"
)

// loadedMsg signals that the controller finished its initial fetch.
type loadedMsg struct{}

// SlideMsg reports that the controller moved to a slide.
type SlideMsg int

// Notify returns a controller listener that asks a running program to
// re-render. The send runs in its own goroutine because most moves start
// inside the program's update loop, which cannot receive while it runs.
func Notify(p *tea.Program) func(number int) {
	return func(number int) {
		go p.Send(SlideMsg(number))
	}
}

// PresentModel is the audience view. All navigation goes through the
// controller, which publishes each move to the shared position store.
type PresentModel struct {
	ctx      context.Context
	ctrl     *present.Controller
	renderer *glamour.TermRenderer
	snap     present.Snapshot
	width    int
	height   int
}

func NewPresentModel(ctx context.Context, ctrl *present.Controller) PresentModel {
	return PresentModel{
		ctx:      ctx,
		ctrl:     ctrl,
		renderer: newRenderer(defaultWidth),
		snap:     ctrl.Snapshot(),
	}
}

func (m PresentModel) Init() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.Load(ctx)
		return loadedMsg{}
	}
}

func (m PresentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg, SlideMsg:
		m.snap = m.ctrl.Snapshot()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.renderer = newRenderer(msg.Width)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "right", "l", " ":
			m.ctrl.HandleKey(m.ctx, present.KeyRight)
		case "left", "h":
			m.ctrl.HandleKey(m.ctx, present.KeyLeft)
		case "p":
			m.ctrl.HandleKey(m.ctx, present.KeyTogglePresenter)
		case "n":
			m.ctrl.HandleKey(m.ctx, present.KeyToggleNotes)
		case "r":
			m.ctrl.HandleKey(m.ctx, present.KeyToggleReferences)
		}
		m.snap = m.ctrl.Snapshot()
	}
	return m, nil
}

func (m PresentModel) View() string {
	switch {
	case m.snap.State == present.StateLoading:
		return statusStyle.Render("Loading slides...")
	case m.snap.Empty():
		return statusStyle.Render("No slides found")
	case m.snap.Slide == nil:
		return ""
	}

	s := m.snap.Slide
	var b strings.Builder

	header := titleStyle.Render(s.Title)
	if s.Part != "" {
		header += "  " + partStyle.Render(s.Part)
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(counterStyle.Render(fmt.Sprintf("%d / %d", m.snap.Index+1, m.snap.Total)))
	b.WriteString("\n\n")

	if body := slides.Text(s.Content.Content); body != "" {
		b.WriteString(renderMarkdown(m.renderer, body))
		b.WriteString("\n")
	}
	if m.snap.ShowNotes && s.Content.SpeakerNotes != nil {
		b.WriteString("\n")
		b.WriteString(section(m.renderer, "Speaker Notes", *s.Content.SpeakerNotes))
		b.WriteString("\n")
	}
	if m.snap.ShowReferences && s.Content.References != nil {
		b.WriteString("\n")
		b.WriteString(section(m.renderer, "References", *s.Content.References))
		b.WriteString("\n")
	}

	// Presenter mode hides the controls for a clean projection.
	if !m.snap.PresenterMode {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("←/→ navigate • n notes • r references • p presenter mode • q quit"))
	}
	return frameStyle.Render(b.String())
}
