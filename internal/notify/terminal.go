// Package notify delivers brew notifications to the terminal, to the
// chime, or to several notifiers at once.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*Terminal)(nil)

// Terminal writes notifications as coloured lines. Colours degrade to
// whatever the output supports, including none.
type Terminal struct {
	out    *termenv.Output
	log    *logger.Logger
	now    func() time.Time
	mu     sync.Mutex
	stamps bool
}

// TerminalOption configures a Terminal notifier.
type TerminalOption func(*Terminal)

// WithTimestamps prefixes every line with the local time.
func WithTimestamps(now func() time.Time) TerminalOption {
	return func(t *Terminal) {
		t.stamps = true
		if now != nil {
			t.now = now
		}
	}
}

// NewTerminal creates a notifier writing to w. If w is nil, os.Stdout
// is used.
func NewTerminal(w io.Writer, log *logger.Logger, opts ...TerminalOption) *Terminal {
	if w == nil {
		w = os.Stdout
	}
	t := &Terminal{
		out: termenv.NewOutput(w),
		log: log,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Notify prints a normal notification in bold cyan.
func (t *Terminal) Notify(ctx context.Context, message string) error {
	t.log.Debug("notify: %s", message)
	return t.print(t.out.String(message).Foreground(t.out.Color("6")).Bold())
}

// NotifyUrgent prints an urgent notification in bold red.
func (t *Terminal) NotifyUrgent(ctx context.Context, message string) error {
	t.log.Debug("notify-urgent: %s", message)
	return t.print(t.out.String(message).Foreground(t.out.Color("1")).Bold())
}

func (t *Terminal) print(s termenv.Style) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prefix := ""
	if t.stamps {
		prefix = t.out.String(t.now().Format("15:04:05") + " ").Faint().String()
	}
	_, err := fmt.Fprintln(t.out, prefix+s.String())
	return err
}
