package brew

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/countdown"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

type stubRecipes map[string]*domain.Recipe

func (s stubRecipes) Get(_ context.Context, id string) (*domain.Recipe, error) {
	r, ok := s[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// mockNotifier collects notifications for testing.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgent = append(m.urgent, msg)
	return nil
}

func testRecipes() stubRecipes {
	return stubRecipes{
		"quick": {
			Meta:      domain.Meta{ID: "quick"},
			Name:      "Quick",
			TotalTime: 5,
			Steps: []domain.Step{
				{Time: 2, Description: "Bloom", IsPouring: true},
				{Time: 3, Description: "Drawdown", IsWaiting: true},
			},
		},
		"empty": {Meta: domain.Meta{ID: "empty"}, Name: "Empty"},
	}
}

func setupManager(t *testing.T) (*Manager, *countdown.ManualClock, *mockNotifier) {
	t.Helper()
	clock := countdown.NewManualClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	n := &mockNotifier{}
	m := NewManager(testRecipes(), logger.NewNop(), WithClock(clock), WithNotifier(n))
	t.Cleanup(m.Shutdown)
	return m, clock, n
}

func TestOpenDoesNotStart(t *testing.T) {
	m, clock, _ := setupManager(t)

	v, err := m.Open(context.Background(), "quick", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Quick", v.RecipeName)
	assert.Equal(t, countdown.StatusIdle, v.State.Status)
	assert.Equal(t, 2, v.State.TimeRemaining)
	assert.Equal(t, "00:02", v.Clock)
	require.NotNil(t, v.CurrentStep)
	require.NotNil(t, v.NextStep)
	assert.Equal(t, "Drawdown", v.NextStep.Description)
	assert.Zero(t, clock.Pending())
}

func TestOpenUnknownRecipe(t *testing.T) {
	m, _, _ := setupManager(t)
	_, err := m.Open(context.Background(), "nope", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunToCompletion(t *testing.T) {
	m, clock, n := setupManager(t)
	v, err := m.Open(context.Background(), "quick", "")
	require.NoError(t, err)

	_, err = m.Start(v.ID)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	got, err := m.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.State.CurrentStepIndex)
	assert.Nil(t, got.NextStep)
	assert.InDelta(t, 40.0, got.TotalProgress, 0.001)

	clock.Advance(3 * time.Second)
	got, err = m.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, countdown.StatusCompleted, got.State.Status)
	assert.Equal(t, 100.0, got.TotalProgress)

	n.mu.Lock()
	defer n.mu.Unlock()
	assert.Equal(t, []string{"Step 2 of 2: Drawdown (00:03)"}, n.messages)
	require.Len(t, n.urgent, 1)
	assert.Contains(t, n.urgent[0], "Quick is done")
}

func TestControl(t *testing.T) {
	m, clock, _ := setupManager(t)
	v, err := m.Open(context.Background(), "quick", "")
	require.NoError(t, err)

	tests := []struct {
		action string
		ticks  int
		want   countdown.Status
	}{
		{ActionStart, 1, countdown.StatusRunning},
		{ActionPause, 1, countdown.StatusPaused},
		{ActionResume, 0, countdown.StatusRunning},
		{ActionReset, 0, countdown.StatusIdle},
	}
	for _, tt := range tests {
		got, err := m.Control(v.ID, tt.action)
		require.NoError(t, err, tt.action)
		clock.Advance(time.Duration(tt.ticks) * time.Second)
		got, err = m.Get(got.ID)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.State.Status, tt.action)
	}

	_, err = m.Control(v.ID, "let's go")
	require.NoError(t, err)
	got, err := m.Control(v.ID, "hold on")
	require.NoError(t, err)
	assert.Equal(t, countdown.StatusPaused, got.State.Status)

	_, err = m.Control(v.ID, "explode")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = m.Control("missing", ActionStart)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubscribe(t *testing.T) {
	m, clock, _ := setupManager(t)
	v, err := m.Open(context.Background(), "quick", "")
	require.NoError(t, err)

	events, cancel, err := m.Subscribe(v.ID)
	require.NoError(t, err)
	defer cancel()

	_, err = m.Start(v.ID)
	require.NoError(t, err)
	clock.Advance(time.Second)

	first := <-events
	assert.Equal(t, "started", first.Type)
	second := <-events
	assert.Equal(t, "tick", second.Type)
	assert.Equal(t, 1, second.Brew.State.TimeRemaining)
	assert.Equal(t, v.ID, second.BrewID)
}

func TestSlowSubscriberDoesNotStall(t *testing.T) {
	clock := countdown.NewManualClock(time.Now())
	m := NewManager(testRecipes(), logger.NewNop(), WithClock(clock), WithSubscriberBuffer(1))
	defer m.Shutdown()

	v, err := m.Open(context.Background(), "quick", "")
	require.NoError(t, err)
	events, cancel, err := m.Subscribe(v.ID)
	require.NoError(t, err)
	defer cancel()

	_, err = m.Start(v.ID)
	require.NoError(t, err)
	clock.Advance(5 * time.Second)

	got, err := m.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, countdown.StatusCompleted, got.State.Status)
	assert.Len(t, events, 1)
}

func TestCloseReleasesTimerAndStreams(t *testing.T) {
	m, clock, _ := setupManager(t)
	v, err := m.Open(context.Background(), "quick", "")
	require.NoError(t, err)
	events, _, err := m.Subscribe(v.ID)
	require.NoError(t, err)

	_, err = m.Start(v.ID)
	require.NoError(t, err)
	require.Equal(t, 1, clock.Pending())

	require.NoError(t, m.Close(v.ID))
	assert.Zero(t, clock.Pending())

	// Drain the started event; the channel must then be closed.
	for range events {
	}

	_, err = m.Get(v.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, m.Close(v.ID), domain.ErrNotFound)
}

func TestCloseIfIdle(t *testing.T) {
	m, clock, _ := setupManager(t)
	ctx := context.Background()
	start := clock.Now()

	v, err := m.Open(ctx, "quick", "")
	require.NoError(t, err)
	clock.Advance(time.Hour)

	// Resumed after the caller sampled it: activity is newer than the cutoff.
	_, err = m.Start(v.ID)
	require.NoError(t, err)
	_, err = m.Pause(v.ID)
	require.NoError(t, err)
	closed, err := m.CloseIfIdle(v.ID, start)
	require.NoError(t, err)
	assert.False(t, closed)
	_, err = m.Get(v.ID)
	require.NoError(t, err)

	// Running brews are never closed, however old the cutoff.
	_, err = m.Resume(v.ID)
	require.NoError(t, err)
	closed, err = m.CloseIfIdle(v.ID, clock.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, 1, clock.Pending())

	_, err = m.Pause(v.ID)
	require.NoError(t, err)
	closed, err = m.CloseIfIdle(v.ID, clock.Now())
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Zero(t, clock.Pending())
	_, err = m.Get(v.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = m.CloseIfIdle(v.ID, clock.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListAndShutdown(t *testing.T) {
	m, clock, _ := setupManager(t)
	ctx := context.Background()

	a, err := m.Open(ctx, "quick", "")
	require.NoError(t, err)
	clock.Advance(time.Second)
	b, err := m.Open(ctx, "empty", "")
	require.NoError(t, err)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	_, err = m.Start(a.ID)
	require.NoError(t, err)
	m.Shutdown()
	assert.Empty(t, m.List())
	assert.Zero(t, clock.Pending())
}

func TestEmptyRecipeCompletesOnFirstTick(t *testing.T) {
	m, clock, n := setupManager(t)
	v, err := m.Open(context.Background(), "empty", "")
	require.NoError(t, err)
	assert.Nil(t, v.CurrentStep)
	assert.Equal(t, "00:00", v.Clock)

	_, err = m.Start(v.ID)
	require.NoError(t, err)
	clock.Advance(time.Second)

	got, err := m.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, countdown.StatusCompleted, got.State.Status)
	assert.Zero(t, got.TotalProgress)

	n.mu.Lock()
	assert.Len(t, n.urgent, 1)
	n.mu.Unlock()
}
