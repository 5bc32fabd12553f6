package display

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/countdown"
	"github.com/hammamikhairi/ottobrew/internal/domain"
)

type fakeController struct {
	actions []string
	status  countdown.Status
	err     error
}

func (f *fakeController) Control(id, action string) (*brew.View, error) {
	f.actions = append(f.actions, action)
	if f.err != nil {
		return nil, f.err
	}
	v := testView(f.status)
	return v, nil
}

func testView(status countdown.Status) *brew.View {
	steps := []domain.Step{
		{Time: 30, Description: "Bloom"},
		{Time: 60, Description: "Pour to 250g"},
	}
	return &brew.View{
		ID:          "b1",
		RecipeName:  "Test V60",
		TotalTime:   90,
		Steps:       steps,
		State:       countdown.Snapshot{Status: status, TimeRemaining: 30, StepCount: 2},
		CurrentStep: &steps[0],
		NextStep:    &steps[1],
		Clock:       "00:30",
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestToggleAction(t *testing.T) {
	assert.Equal(t, brew.ActionStart, toggleAction(countdown.StatusIdle))
	assert.Equal(t, brew.ActionPause, toggleAction(countdown.StatusRunning))
	assert.Equal(t, brew.ActionResume, toggleAction(countdown.StatusPaused))
	assert.Empty(t, toggleAction(countdown.StatusCompleted))
}

func TestModelKeys(t *testing.T) {
	ctl := &fakeController{status: countdown.StatusRunning}
	m := newModel(ctl, testView(countdown.StatusIdle), nil)

	next, _ := m.Update(keyMsg(" "))
	m = next.(model)
	assert.Equal(t, []string{brew.ActionStart}, ctl.actions)
	assert.Equal(t, countdown.StatusRunning, m.view.State.Status)

	next, _ = m.Update(keyMsg(" "))
	m = next.(model)
	assert.Equal(t, []string{brew.ActionStart, brew.ActionPause}, ctl.actions)

	next, _ = m.Update(keyMsg("r"))
	m = next.(model)
	assert.Equal(t, brew.ActionReset, ctl.actions[2])

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModelControlError(t *testing.T) {
	ctl := &fakeController{err: errors.New("brew b1: not found")}
	m := newModel(ctl, testView(countdown.StatusIdle), nil)

	next, _ := m.Update(keyMsg(" "))
	m = next.(model)
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "not found")
	assert.Equal(t, "b1", m.view.ID)
}

func TestModelEvents(t *testing.T) {
	events := make(chan brew.Event, 1)
	m := newModel(&fakeController{}, testView(countdown.StatusIdle), events)

	updated := testView(countdown.StatusRunning)
	updated.Clock = "00:12"
	next, cmd := m.Update(eventMsg(brew.Event{Type: "tick", Brew: updated}))
	m = next.(model)
	assert.Equal(t, "00:12", m.view.Clock)
	require.NotNil(t, cmd)

	close(events)
	assert.Equal(t, closedMsg{}, cmd())

	_, cmd = m.Update(closedMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModelView(t *testing.T) {
	m := newModel(&fakeController{}, testView(countdown.StatusRunning), nil)
	out := m.View()
	assert.Contains(t, out, "Test V60")
	assert.Contains(t, out, "Step 1/2")
	assert.Contains(t, out, "Bloom")
	assert.Contains(t, out, "00:30")
	assert.Contains(t, out, "Next: Pour to 250g")

	done := testView(countdown.StatusCompleted)
	done.State.TotalTimeElapsed = 90
	m.view = done
	out = m.View()
	assert.Contains(t, out, "Enjoy your coffee")
	assert.Contains(t, out, "01:30")
	assert.NotContains(t, out, "Next:")
}

func TestRunPlain(t *testing.T) {
	ctl := &fakeController{status: countdown.StatusRunning}
	events := make(chan brew.Event, 4)

	first := testView(countdown.StatusRunning)
	second := testView(countdown.StatusRunning)
	second.State.CurrentStepIndex = 1
	second.CurrentStep = &second.Steps[1]
	second.Clock = "01:00"
	done := testView(countdown.StatusCompleted)
	done.State.TotalTimeElapsed = 90

	events <- brew.Event{Type: "started", Brew: first}
	events <- brew.Event{Type: "tick", Brew: first}
	events <- brew.Event{Type: "step", Brew: second}
	events <- brew.Event{Type: "completed", Brew: done}

	var buf bytes.Buffer
	require.NoError(t, RunPlain(context.Background(), &buf, ctl, testView(countdown.StatusIdle), events))

	assert.Equal(t, []string{brew.ActionStart}, ctl.actions)
	want := strings.Join([]string{
		"Test V60 (01:30)",
		"[1/2] Bloom (00:30)",
		"[2/2] Pour to 250g (01:00)",
		"done in 01:30",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestRunPlainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := RunPlain(ctx, &buf, &fakeController{}, testView(countdown.StatusPaused), make(chan brew.Event))
	assert.NoError(t, err)
}

func TestRecipeMarkdown(t *testing.T) {
	r := &domain.Recipe{
		Name:        "Test V60",
		CoffeeGrams: 15,
		WaterGrams:  250,
		Ratio:       16.7,
		TotalTime:   90,
		Tags:        []string{"v60"},
		Steps: []domain.Step{
			{Time: 30, Description: "Bloom", IsPouring: true},
			{Time: 60, Description: "Drain", IsWaiting: true},
		},
	}
	md := RecipeMarkdown(r)
	assert.Contains(t, md, "# Test V60")
	assert.Contains(t, md, "**Ratio:** 1:16.7")
	assert.Contains(t, md, "1. Bloom `00:30` (pour)")
	assert.Contains(t, md, "2. Drain `01:00` (wait)")

	out, err := RenderRecipe(r, 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Bloom")

	assert.Contains(t, RecipeMarkdown(&domain.Recipe{Name: "Empty"}), "_No steps._")
}

func TestRenderSummaries(t *testing.T) {
	out := RenderSummaries([]domain.RecipeSummary{
		{ID: "v60-classic", Name: "Classic V60", TotalTime: 170, Tags: []string{"v60"}},
	})
	assert.Contains(t, out, "v60-classic")
	assert.Contains(t, out, "02:50")

	assert.Contains(t, RenderSummaries(nil), "No recipes.")
}

func TestRenderBanner(t *testing.T) {
	narrow := renderBanner(0)
	wide := renderBanner(200)
	assert.Contains(t, narrow, "o t t o b r e w")
	assert.Greater(t, len(wide), len(narrow))
}
