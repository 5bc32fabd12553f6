// Package display renders a live brew in the terminal.
//
// [Run] drives a Bubble Tea countdown view when stdout is a terminal and
// falls back to [RunPlain], which prints one line per step, otherwise.
// Key bindings: space starts, pauses and resumes; r resets; q quits.
package display

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/countdown"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	// BannerStyle is the muted slate used for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#fde68a"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#fde68a"))

	doneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#fca5a5"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa")).
			Italic(true)
)

// Controller is the brew surface the countdown view drives.
type Controller interface {
	Control(id, action string) (*brew.View, error)
}

// Run shows the brew until it completes, the user quits, or ctx is done.
// events must be a subscription to the same brew.
func Run(ctx context.Context, ctl Controller, view *brew.View, events <-chan brew.Event) error {
	if !IsTerminal(os.Stdout) {
		return RunPlain(ctx, os.Stdout, ctl, view, events)
	}

	p := tea.NewProgram(newModel(ctl, view, events), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type keyMap struct {
	Toggle key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Toggle: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "start/pause")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type eventMsg brew.Event

type closedMsg struct{}

type model struct {
	ctl    Controller
	events <-chan brew.Event
	view   *brew.View
	bar    progress.Model
	help   help.Model
	err    error
}

func newModel(ctl Controller, view *brew.View, events <-chan brew.Event) model {
	return model{
		ctl:    ctl,
		events: events,
		view:   view,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:   help.New(),
	}
}

func waitForEvent(ch <-chan brew.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.events),
		tea.SetWindowTitle(m.view.RecipeName),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Toggle):
			if action := toggleAction(m.view.State.Status); action != "" {
				m.control(action)
			}
		case key.Matches(msg, keys.Reset):
			m.control(brew.ActionReset)
		}
		return m, nil

	case tea.WindowSizeMsg:
		w := msg.Width - 4
		if w > 60 {
			w = 60
		}
		if w > 10 {
			m.bar.Width = w
		}
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.view = msg.Brew
		return m, waitForEvent(m.events)

	case closedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) control(action string) {
	v, err := m.ctl.Control(m.view.ID, action)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.view = v
}

// toggleAction maps the space bar to the action that makes sense for the
// current status. Completed brews need a reset first.
func toggleAction(s countdown.Status) string {
	switch s {
	case countdown.StatusIdle:
		return brew.ActionStart
	case countdown.StatusRunning:
		return brew.ActionPause
	case countdown.StatusPaused:
		return brew.ActionResume
	default:
		return ""
	}
}

func (m model) View() string {
	v := m.view
	st := v.State

	var b strings.Builder
	b.WriteString(titleStyle.Render(v.RecipeName))
	b.WriteString("\n\n")

	if st.Status == countdown.StatusCompleted {
		b.WriteString(doneStyle.Render("Done. Enjoy your coffee."))
		b.WriteString("\n")
		b.WriteString(secondaryStyle.Render(fmt.Sprintf("Total time %s", countdown.FormatClock(st.TotalTimeElapsed))))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(keys))
		return b.String()
	}

	if v.CurrentStep != nil {
		b.WriteString(stepStyle.Render(fmt.Sprintf("Step %d/%d", st.CurrentStepIndex+1, st.StepCount)))
		b.WriteString("  ")
		b.WriteString(primaryStyle.Render(v.CurrentStep.Description))
		b.WriteString("\n")
	}
	b.WriteString(clockStyle.Render(v.Clock))
	b.WriteString("  ")
	b.WriteString(m.bar.ViewAs(st.Progress / 100))
	b.WriteString("\n")
	if v.NextStep != nil {
		b.WriteString(secondaryStyle.Render("Next: " + v.NextStep.Description))
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf("%s · %.0f%% of %s", st.Status, v.TotalProgress, countdown.FormatClock(v.TotalTime))))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(doneStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}
