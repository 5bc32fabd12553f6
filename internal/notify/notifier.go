package notify

import (
	"context"
	"errors"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Notifier = Multi(nil)
	_ domain.Notifier = (*Chiming)(nil)
	_ domain.Notifier = Nop{}
	_ domain.Notifier = (*Log)(nil)
)

// Multi fans a notification out to every notifier. All are tried; the
// errors are joined.
type Multi []domain.Notifier

// Notify delivers message to every notifier.
func (m Multi) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyUrgent delivers an urgent message to every notifier.
func (m Multi) NotifyUrgent(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyUrgent(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cues is the part of a chime the notifier needs.
type Cues interface {
	Step()
	Done()
}

// Chiming wraps a text notifier and plays a cue for every message: the
// step cue for normal ones, the completion cue for urgent ones.
type Chiming struct {
	text domain.Notifier
	cues Cues
}

// NewChiming creates a notifier that both prints and chimes.
func NewChiming(text domain.Notifier, cues Cues) *Chiming {
	return &Chiming{text: text, cues: cues}
}

// Notify prints the message and queues the step cue.
func (n *Chiming) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	n.cues.Step()
	return nil
}

// NotifyUrgent prints the message and queues the completion cue.
func (n *Chiming) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	n.cues.Done()
	return nil
}

// Log records notifications in the application log, urgent ones at warn
// level.
type Log struct {
	log *logger.Logger
}

// NewLog creates a notifier writing to log.
func NewLog(log *logger.Logger) *Log {
	return &Log{log: log}
}

// Notify logs message at info level.
func (n *Log) Notify(_ context.Context, message string) error {
	n.log.Info("notify: %s", message)
	return nil
}

// NotifyUrgent logs message at warn level.
func (n *Log) NotifyUrgent(_ context.Context, message string) error {
	n.log.Warn("notify: %s", message)
	return nil
}

// Nop drops every notification.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, string) error { return nil }

// NotifyUrgent does nothing.
func (Nop) NotifyUrgent(context.Context, string) error { return nil }
