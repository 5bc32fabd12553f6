// Package countdown implements the brewing step sequencer: a pausable,
// resumable one-second countdown through an ordered list of timed steps.
package countdown

import (
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Status is the observable state of an engine.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusCompleted
)

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText lets Status serialize as its name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for c := StatusIdle; c <= StatusCompleted; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// EventType classifies engine events.
type EventType int

const (
	EventStarted EventType = iota
	EventPaused
	EventReset
	EventTick
	EventStepAdvanced
	EventCompleted
)

// String returns a human-readable event type.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventPaused:
		return "paused"
	case EventReset:
		return "reset"
	case EventTick:
		return "tick"
	case EventStepAdvanced:
		return "step"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after a state change has been committed.
type Event struct {
	Type     EventType
	Snapshot Snapshot
}

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	CurrentStepIndex int     `json:"currentStepIndex"`
	TimeRemaining    int     `json:"timeRemaining"`
	TotalTimeElapsed int     `json:"totalTimeElapsed"`
	IsRunning        bool    `json:"isRunning"`
	Status           Status  `json:"status"`
	Progress         float64 `json:"progress"`
	StepCount        int     `json:"stepCount"`
}

// Option configures the engine.
type Option func(*Engine)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithTickInterval sets the wall-clock length of one tick. The countdown
// still counts in whole steps of one second; this only changes how fast
// they are delivered.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.interval = d
	}
}

// Engine drives a countdown through a fixed step sequence. All methods are
// safe for concurrent use; ticks are serialized with the public operations.
type Engine struct {
	clock    Clock
	interval time.Duration
	steps    []domain.Step

	mu        sync.Mutex
	index     int
	remaining int
	elapsed   int
	running   bool
	completed bool
	closed    bool

	// timer is the single armed tick; gen identifies it so a tick that lost
	// the race against Pause/Reset/Close can recognise itself as stale.
	timer Timer
	gen   uint64

	onComplete  func(Snapshot)
	subscribers map[int]func(Event)
	nextSubID   int

	// pending holds committed events in commit order. One goroutine at a
	// time drains it, so observers never see an older snapshot after a
	// newer one.
	pending    []delivery
	delivering bool
}

type delivery struct {
	ev         Event
	subs       []func(Event)
	onComplete func(Snapshot)
}

// New creates an engine for the given steps. The steps are copied; the
// engine does not start until Start is called.
func New(steps []domain.Step, opts ...Option) *Engine {
	e := &Engine{
		clock:       SystemClock,
		interval:    time.Second,
		steps:       append([]domain.Step(nil), steps...),
		subscribers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resetLocked()
	return e
}

// Steps returns a copy of the step sequence.
func (e *Engine) Steps() []domain.Step {
	return append([]domain.Step(nil), e.steps...)
}

// SetOnComplete replaces the completion callback. Pass nil to clear it.
func (e *Engine) SetOnComplete(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onComplete = fn
}

// Subscribe registers fn for every committed event and returns a function
// that removes it.
func (e *Engine) Subscribe(fn func(Event)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subscribers, id)
	}
}

// Start begins ticking. It is a no-op while already running, after
// completion, or once the engine is closed.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running || e.completed || e.closed {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.armLocked()
	e.enqueueLocked(EventStarted, nil)
	e.mu.Unlock()

	e.flush()
}

// Resume continues a paused countdown. It has the same effect as Start;
// the distinction only matters to callers choosing a label.
func (e *Engine) Resume() {
	e.Start()
}

// Pause stops ticking and freezes the counters. No tick runs after Pause
// returns. It is a no-op unless running.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.disarmLocked()
	e.enqueueLocked(EventPaused, nil)
	e.mu.Unlock()

	e.flush()
}

// Reset returns the engine to its post-construction state, keeping the
// step sequence.
func (e *Engine) Reset() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.disarmLocked()
	e.resetLocked()
	e.enqueueLocked(EventReset, nil)
	e.mu.Unlock()

	e.flush()
}

// Close releases the timer and drops all observers. The engine is inert
// afterwards. Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disarmLocked()
	e.running = false
	e.closed = true
	e.onComplete = nil
	e.subscribers = make(map[int]func(Event))
	e.pending = nil
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// CurrentStepIndex returns the 0-based index of the current step.
func (e *Engine) CurrentStepIndex() int {
	return e.Snapshot().CurrentStepIndex
}

// TimeRemaining returns the seconds left in the current step.
func (e *Engine) TimeRemaining() int {
	return e.Snapshot().TimeRemaining
}

// TotalTimeElapsed returns the seconds ticked since the last reset.
func (e *Engine) TotalTimeElapsed() int {
	return e.Snapshot().TotalTimeElapsed
}

// IsRunning reports whether the countdown is ticking.
func (e *Engine) IsRunning() bool {
	return e.Snapshot().IsRunning
}

// Status returns the current state-machine state.
func (e *Engine) Status() Status {
	return e.Snapshot().Status
}

// Progress returns the percentage of the current step that has elapsed.
func (e *Engine) Progress() float64 {
	return e.Snapshot().Progress
}

// tick runs one second of countdown. gen is the generation the timer was
// armed with; a mismatch means the run was paused, reset or closed after
// the timer fired, and the tick is dropped.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if !e.running || gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.timer = nil

	evType := EventTick
	next := e.remaining - 1
	switch {
	case next > 0:
		e.remaining = next
		e.elapsed++
	case e.index >= e.lastIndex():
		e.remaining = 0
		e.running = false
		e.completed = true
		e.elapsed++
		e.gen++
		evType = EventCompleted
	default:
		e.index++
		e.remaining = e.steps[e.index].Time
		e.elapsed++
		evType = EventStepAdvanced
	}

	var onComplete func(Snapshot)
	if evType == EventCompleted {
		onComplete = e.onComplete
	}
	e.enqueueLocked(evType, onComplete)
	e.mu.Unlock()

	e.flush()
	if evType == EventCompleted {
		return
	}

	// Arm the next tick only after this tick has been handed to observers.
	e.mu.Lock()
	if e.running && gen == e.gen && e.timer == nil {
		e.armLocked()
	}
	e.mu.Unlock()
}

// enqueueLocked queues an event carrying the current snapshot for the
// current observers. Caller holds e.mu.
func (e *Engine) enqueueLocked(t EventType, onComplete func(Snapshot)) {
	e.pending = append(e.pending, delivery{
		ev:         Event{Type: t, Snapshot: e.snapshotLocked()},
		subs:       e.subscribersLocked(),
		onComplete: onComplete,
	})
}

// flush delivers queued events in commit order. If another call is already
// delivering, including one further up this goroutine's stack when an
// observer calls back into the engine, flush returns at once and that call
// delivers the new events after the current one.
func (e *Engine) flush() {
	e.mu.Lock()
	if e.delivering {
		e.mu.Unlock()
		return
	}
	e.delivering = true
	for len(e.pending) > 0 {
		d := e.pending[0]
		e.pending = e.pending[1:]
		e.mu.Unlock()

		publish(d.subs, d.ev)
		if d.onComplete != nil {
			d.onComplete(d.ev.Snapshot)
		}

		e.mu.Lock()
	}
	e.delivering = false
	e.mu.Unlock()
}

// armLocked schedules the next tick. Caller holds e.mu.
func (e *Engine) armLocked() {
	e.disarmLocked()
	gen := e.gen
	e.timer = e.clock.AfterFunc(e.interval, func() { e.tick(gen) })
}

// disarmLocked stops the armed tick, if any, and invalidates in-flight
// ticks. Caller holds e.mu.
func (e *Engine) disarmLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

// resetLocked restores the initial counters. Caller holds e.mu.
func (e *Engine) resetLocked() {
	e.index = 0
	e.remaining = 0
	if len(e.steps) > 0 {
		e.remaining = e.steps[0].Time
	}
	e.elapsed = 0
	e.running = false
	e.completed = false
}

func (e *Engine) lastIndex() int {
	if len(e.steps) == 0 {
		return 0
	}
	return len(e.steps) - 1
}

func (e *Engine) statusLocked() Status {
	switch {
	case e.running:
		return StatusRunning
	case e.completed:
		return StatusCompleted
	case e.elapsed > 0:
		return StatusPaused
	default:
		return StatusIdle
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	stepTime := 0
	if len(e.steps) > 0 {
		stepTime = e.steps[e.index].Time
	}
	return Snapshot{
		CurrentStepIndex: e.index,
		TimeRemaining:    e.remaining,
		TotalTimeElapsed: e.elapsed,
		IsRunning:        e.running,
		Status:           e.statusLocked(),
		Progress:         StepProgress(stepTime, e.remaining),
		StepCount:        len(e.steps),
	}
}

func (e *Engine) subscribersLocked() []func(Event) {
	if len(e.subscribers) == 0 {
		return nil
	}
	out := make([]func(Event), 0, len(e.subscribers))
	for id := 0; id < e.nextSubID; id++ {
		if fn, ok := e.subscribers[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func publish(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
