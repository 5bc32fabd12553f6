package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/logger"
)

type recorder struct {
	normal, urgent []string
	err            error
}

func (r *recorder) Notify(_ context.Context, msg string) error {
	r.normal = append(r.normal, msg)
	return r.err
}

func (r *recorder) NotifyUrgent(_ context.Context, msg string) error {
	r.urgent = append(r.urgent, msg)
	return r.err
}

type cueCounter struct{ step, done int }

func (c *cueCounter) Step() { c.step++ }
func (c *cueCounter) Done() { c.done++ }

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 1, 1, 8, 30, 5, 0, time.Local)
	n := NewTerminal(&buf, logger.NewNop(), WithTimestamps(func() time.Time { return now }))

	require.NoError(t, n.Notify(context.Background(), "Step 2 of 3: Pour"))
	require.NoError(t, n.NotifyUrgent(context.Background(), "Done"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	// A bytes.Buffer is not a terminal, so no escape codes are written.
	assert.Equal(t, "08:30:05 Step 2 of 3: Pour", lines[0])
	assert.Equal(t, "08:30:05 Done", lines[1])
}

func TestMulti(t *testing.T) {
	a := &recorder{}
	b := &recorder{err: errors.New("boom")}
	c := &recorder{}
	m := Multi{a, b, c}

	err := m.Notify(context.Background(), "hi")
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, []string{"hi"}, a.normal)
	assert.Equal(t, []string{"hi"}, c.normal, "later notifiers still run")

	assert.Error(t, m.NotifyUrgent(context.Background(), "now"))
	assert.Equal(t, []string{"now"}, c.urgent)

	assert.NoError(t, Multi{a}.Notify(context.Background(), "ok"))
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(logger.New(logger.LevelNormal, &buf))

	require.NoError(t, n.Notify(context.Background(), "Step 2 of 3: Pour"))
	require.NoError(t, n.NotifyUrgent(context.Background(), "Brew complete"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=INFO")
	assert.Contains(t, lines[0], "notify: Step 2 of 3: Pour")
	assert.Contains(t, lines[1], "level=WARN")
	assert.Contains(t, lines[1], "notify: Brew complete")
}

func TestTerminalAndLogFanOut(t *testing.T) {
	var out, logs bytes.Buffer
	m := Multi{
		NewTerminal(&out, logger.NewNop()),
		NewLog(logger.New(logger.LevelNormal, &logs)),
	}

	require.NoError(t, m.NotifyUrgent(context.Background(), "Done"))
	assert.Equal(t, "Done\n", out.String())
	assert.Contains(t, logs.String(), "notify: Done")
}

func TestChiming(t *testing.T) {
	text := &recorder{}
	cues := &cueCounter{}
	n := NewChiming(text, cues)

	require.NoError(t, n.Notify(context.Background(), "step"))
	require.NoError(t, n.NotifyUrgent(context.Background(), "done"))
	assert.Equal(t, 1, cues.step)
	assert.Equal(t, 1, cues.done)

	text.err = errors.New("closed")
	assert.Error(t, n.Notify(context.Background(), "lost"))
	assert.Equal(t, 1, cues.step, "no cue when the text notifier fails")
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Notify(context.Background(), "x"))
	assert.NoError(t, Nop{}.NotifyUrgent(context.Background(), "x"))
}
