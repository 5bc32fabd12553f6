// Package brew manages open brews: one countdown engine per brew, with its
// events fanned out to stream subscribers, the notifier and metrics.
package brew

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/countdown"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/metrics"
)

// Control actions.
const (
	ActionStart  = "start"
	ActionPause  = "pause"
	ActionResume = "resume"
	ActionReset  = "reset"
)

// ErrUnknownAction is returned by Control for an unrecognised action.
var ErrUnknownAction = fmt.Errorf("%w: unknown action", domain.ErrInvalid)

// Option configures the manager.
type Option func(*Manager)

// WithClock sets the clock every engine runs on.
func WithClock(c countdown.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithTickInterval sets the wall-clock length of one countdown second.
func WithTickInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.tick = d
	}
}

// WithNotifier sends step changes and completions to n.
func WithNotifier(n domain.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithMetrics records brew activity.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mx
	}
}

// WithSubscriberBuffer sets the event buffer of each stream subscriber.
func WithSubscriberBuffer(n int) Option {
	return func(m *Manager) {
		m.bufferSize = n
	}
}

// Manager owns every open brew. All methods are safe for concurrent use.
type Manager struct {
	recipes    domain.RecipeSource
	notifier   domain.Notifier
	metrics    *metrics.Metrics
	log        *logger.Logger
	clock      countdown.Clock
	tick       time.Duration
	bufferSize int

	mu    sync.RWMutex
	brews map[string]*brew
}

// NewManager creates a brew manager.
func NewManager(recipes domain.RecipeSource, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		recipes:    recipes,
		log:        log,
		clock:      countdown.SystemClock,
		tick:       time.Second,
		bufferSize: 16,
		brews:      make(map[string]*brew),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open loads a recipe and prepares a countdown for it. The countdown does
// not start until Start is called.
func (m *Manager) Open(ctx context.Context, recipeID, ownerID string) (*View, error) {
	recipe, err := m.recipes.Get(ctx, recipeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", recipeID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting recipe: %w", err)
	}

	now := m.clock.Now()
	b := &brew{
		id:           domain.NewID(),
		recipe:       recipe,
		ownerID:      ownerID,
		openedAt:     now,
		lastActivity: now,
		subs:         make(map[int]chan Event),
		buffer:       m.bufferSize,
	}
	b.engine = countdown.New(recipe.Steps, countdown.WithClock(m.clock), countdown.WithTickInterval(m.tick))
	b.engine.Subscribe(func(ev countdown.Event) { m.handle(b, ev) })

	m.mu.Lock()
	m.brews[b.id] = b
	m.mu.Unlock()

	m.metrics.BrewOpened()
	m.log.Info("brew %s opened for recipe %q (%d steps, %ds)", b.id, recipe.Name, len(recipe.Steps), recipe.TotalTime)
	return b.view(), nil
}

// Start begins or resumes the countdown.
func (m *Manager) Start(id string) (*View, error) {
	return m.Control(id, ActionStart)
}

// Pause freezes the countdown.
func (m *Manager) Pause(id string) (*View, error) {
	return m.Control(id, ActionPause)
}

// Resume continues a paused countdown.
func (m *Manager) Resume(id string) (*View, error) {
	return m.Control(id, ActionResume)
}

// Reset returns the countdown to its first step.
func (m *Manager) Reset(id string) (*View, error) {
	return m.Control(id, ActionReset)
}

// Control applies a control action. Besides the action names it accepts
// the phrases understood by ParseCommand.
func (m *Manager) Control(id, command string) (*View, error) {
	// Held until the action is applied so CloseIfIdle cannot close the brew
	// between the lookup and the engine call.
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.brews[id]
	if !ok {
		return nil, fmt.Errorf("brew %s: %w", id, domain.ErrNotFound)
	}

	action, ok := ParseCommand(command)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, command)
	}
	switch action {
	case ActionStart:
		b.engine.Start()
	case ActionPause:
		b.engine.Pause()
	case ActionResume:
		b.engine.Resume()
	case ActionReset:
		b.engine.Reset()
	}

	b.touch(m.clock.Now())
	m.metrics.Control(action)
	m.log.Debug("brew %s: %s -> %s", id, action, b.engine.Status())
	return b.view(), nil
}

// Get returns the current view of a brew.
func (m *Manager) Get(id string) (*View, error) {
	b, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return b.view(), nil
}

// List returns a summary of every open brew, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.brews))
	for _, b := range m.brews {
		out = append(out, b.info())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// Close releases the brew's timer and drops it. Stream subscribers see
// their channel closed.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	b, ok := m.brews[id]
	if ok {
		delete(m.brews, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("brew %s: %w", id, domain.ErrNotFound)
	}

	b.close()
	m.metrics.BrewClosed()
	m.log.Info("brew %s closed", id)
	return nil
}

// CloseIfIdle closes the brew only if it is not running and has seen no
// activity after idleSince. It reports whether the brew was closed. The
// check and the removal happen under the manager lock, so a brew resumed
// after the caller last looked is left open.
func (m *Manager) CloseIfIdle(id string, idleSince time.Time) (bool, error) {
	m.mu.Lock()
	b, ok := m.brews[id]
	if !ok {
		m.mu.Unlock()
		return false, fmt.Errorf("brew %s: %w", id, domain.ErrNotFound)
	}
	info := b.info()
	if info.Status == countdown.StatusRunning || info.LastActivity.After(idleSince) {
		m.mu.Unlock()
		return false, nil
	}
	delete(m.brews, id)
	m.mu.Unlock()

	b.close()
	m.metrics.BrewClosed()
	m.log.Info("brew %s closed (%s, idle since %s)", id, info.Status, info.LastActivity.Format(time.Kitchen))
	return true, nil
}

// Subscribe returns a stream of the brew's events. Slow readers miss
// events rather than stall the countdown. The channel is closed when the
// brew is closed or cancel is called.
func (m *Manager) Subscribe(id string) (<-chan Event, func(), error) {
	b, err := m.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel, ok := b.subscribe()
	if !ok {
		return nil, nil, fmt.Errorf("brew %s: %w", id, domain.ErrNotFound)
	}
	return ch, cancel, nil
}

// Shutdown closes every open brew.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	brews := m.brews
	m.brews = make(map[string]*brew)
	m.mu.Unlock()

	for _, b := range brews {
		b.close()
		m.metrics.BrewClosed()
	}
	if len(brews) > 0 {
		m.log.Info("closed %d open brews", len(brews))
	}
}

func (m *Manager) lookup(id string) (*brew, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.brews[id]
	if !ok {
		return nil, fmt.Errorf("brew %s: %w", id, domain.ErrNotFound)
	}
	return b, nil
}

// handle runs on the engine's tick path for every committed event.
func (m *Manager) handle(b *brew, ev countdown.Event) {
	now := m.clock.Now()
	b.touch(now)

	switch ev.Type {
	case countdown.EventTick:
		m.metrics.Tick()
	case countdown.EventStepAdvanced:
		m.metrics.Tick()
		m.metrics.StepAdvanced()
		m.notify(b, false, stepMessage(b.recipe, ev.Snapshot.CurrentStepIndex))
	case countdown.EventCompleted:
		m.metrics.Tick()
		m.metrics.BrewCompleted()
		m.notify(b, true, fmt.Sprintf("%s is done. Enjoy your coffee.", b.recipe.Name))
		m.log.Info("brew %s completed in %ds", b.id, ev.Snapshot.TotalTimeElapsed)
	}

	b.publish(Event{
		BrewID: b.id,
		Type:   ev.Type.String(),
		Brew:   b.viewFrom(ev.Snapshot),
		At:     now,
	})
}

func (m *Manager) notify(b *brew, urgent bool, msg string) {
	if m.notifier == nil {
		return
	}
	ctx := context.Background()
	var err error
	if urgent {
		err = m.notifier.NotifyUrgent(ctx, msg)
	} else {
		err = m.notifier.Notify(ctx, msg)
	}
	if err != nil {
		m.log.Warn("brew %s: notify: %v", b.id, err)
	}
}

func stepMessage(r *domain.Recipe, index int) string {
	if index < 0 || index >= len(r.Steps) {
		return fmt.Sprintf("Step %d.", index+1)
	}
	s := r.Steps[index]
	return fmt.Sprintf("Step %d of %d: %s (%s)", index+1, len(r.Steps), s.Description, countdown.FormatClock(s.Time))
}
