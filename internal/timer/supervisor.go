// Package timer implements the background supervisor that watches open
// brews: it nudges brews left paused and releases the timers of brews
// nobody is using any more.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/countdown"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Brews is the part of the brew manager the supervisor needs.
type Brews interface {
	List() []brew.Info
	CloseIfIdle(id string, idleSince time.Time) (bool, error)
}

var _ Brews = (*brew.Manager)(nil)

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor checks brews.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithNudgeAfter sets how long a brew may sit paused before a reminder,
// and the minimum gap between reminders.
func WithNudgeAfter(d time.Duration) Option {
	return func(s *Supervisor) {
		s.nudgeAfter = d
	}
}

// WithReapAfter sets how long a brew that is not running may sit untouched
// before it is closed.
func WithReapAfter(d time.Duration) Option {
	return func(s *Supervisor) {
		s.reapAfter = d
	}
}

// WithNow replaces the clock used for idle checks.
func WithNow(now func() time.Time) Option {
	return func(s *Supervisor) {
		s.now = now
	}
}

// Supervisor runs in the background and keeps open brews tidy.
type Supervisor struct {
	brews        Brews
	notifier     domain.Notifier
	log          *logger.Logger
	tickInterval time.Duration
	nudgeAfter   time.Duration
	reapAfter    time.Duration
	now          func() time.Time

	nudged map[string]time.Time // brew ID -> last nudge

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a supervisor with the given dependencies and options.
func New(brews Brews, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		brews:        brews,
		notifier:     notifier,
		log:          log,
		tickInterval: 30 * time.Second,
		nudgeAfter:   2 * time.Minute,
		reapAfter:    30 * time.Minute,
		now:          time.Now,
		nudged:       make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background supervisor loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("brew supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.done = make(chan struct{})

	go s.loop(childCtx, s.done)

	s.log.Info("brew supervisor started (tick=%s, nudge=%s, reap=%s)", s.tickInterval, s.nudgeAfter, s.reapAfter)
}

// Stop shuts the loop down and waits for it to exit.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	done := s.done
	s.mu.Unlock()

	<-done
	s.log.Info("brew supervisor stopped")
}

// loop is the main tick loop.
func (s *Supervisor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one cycle over every open brew.
func (s *Supervisor) tick(ctx context.Context) {
	now := s.now()
	seen := make(map[string]bool)

	for _, info := range s.brews.List() {
		seen[info.ID] = true
		idle := now.Sub(info.LastActivity)

		if info.Status != countdown.StatusRunning && s.reapAfter > 0 && idle >= s.reapAfter {
			closed, err := s.brews.CloseIfIdle(info.ID, now.Add(-s.reapAfter))
			if err != nil {
				s.log.Debug("supervisor: closing brew %s: %v", info.ID, err)
				continue
			}
			if !closed {
				s.log.Debug("supervisor: brew %s became active, keeping it", info.ID)
				continue
			}
			delete(s.nudged, info.ID)
			s.log.Info("supervisor: closed %s brew %s after %s idle", info.Status, info.ID, idle.Round(time.Second))
			continue
		}

		if info.Status == countdown.StatusPaused && s.nudgeAfter > 0 && idle >= s.nudgeAfter {
			s.nudge(ctx, info, now, idle)
		}
	}

	for id := range s.nudged {
		if !seen[id] {
			delete(s.nudged, id)
		}
	}
}

// nudge reminds the user about a paused brew, at most once per nudgeAfter.
func (s *Supervisor) nudge(ctx context.Context, info brew.Info, now time.Time, idle time.Duration) {
	if last, ok := s.nudged[info.ID]; ok && now.Sub(last) < s.nudgeAfter {
		return
	}
	s.nudged[info.ID] = now

	msg := fmt.Sprintf("[Brew] %s has been paused for %s.", info.RecipeName, formatIdle(idle))
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Error("supervisor: nudge notify: %v", err)
	}
}

// formatIdle returns a human-friendly duration rounded to whole minutes
// once there is at least one.
func formatIdle(d time.Duration) string {
	d = d.Round(time.Second)
	totalSec := int(d.Seconds())
	if totalSec < 60 {
		if totalSec == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", totalSec)
	}
	m := (totalSec + 30) / 60
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
