package chime

import (
	"fmt"
	"os"
	"sync"

	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Option configures a Chime.
type Option func(*Chime)

// WithVolume sets the synthesized cue volume in [0, 1].
func WithVolume(v float64) Option {
	return func(c *Chime) {
		c.volume = v
	}
}

// WithDoneWAV replaces the completion cue with the PCM of a WAV file.
func WithDoneWAV(path string) Option {
	return func(c *Chime) {
		c.doneWAV = path
	}
}

// Chime queues cues and plays them one at a time in the background so
// callers on the countdown path never wait for audio.
type Chime struct {
	sink    Sink
	log     *logger.Logger
	volume  float64
	doneWAV string

	step []byte
	done []byte

	mu     sync.Mutex
	closed bool
	queue  chan []byte
	wg     sync.WaitGroup
}

// New creates a chime playing through sink and starts its playback loop.
func New(sink Sink, log *logger.Logger, opts ...Option) (*Chime, error) {
	c := &Chime{
		sink:   sink,
		log:    log,
		volume: 0.4,
		queue:  make(chan []byte, 4),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.step = Synth(StepCue, c.volume)
	c.done = Synth(DoneCue, c.volume)
	if c.doneWAV != "" {
		data, err := os.ReadFile(c.doneWAV)
		if err != nil {
			return nil, fmt.Errorf("reading chime: %w", err)
		}
		pcm, err := ExtractPCM(data)
		if err != nil {
			return nil, fmt.Errorf("chime %s: %w", c.doneWAV, err)
		}
		c.done = pcm
	}

	c.wg.Add(1)
	go c.run()
	return c, nil
}

// Step queues the step-change cue.
func (c *Chime) Step() {
	c.enqueue(c.step)
}

// Done queues the completion cue.
func (c *Chime) Done() {
	c.enqueue(c.done)
}

// Close stops accepting cues and waits for queued ones to finish.
func (c *Chime) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.queue)
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Chime) enqueue(pcm []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.queue <- pcm:
	default:
		c.log.Debug("chime: queue full, dropping cue")
	}
}

func (c *Chime) run() {
	defer c.wg.Done()
	for pcm := range c.queue {
		if err := c.sink.Play(pcm); err != nil {
			c.log.Warn("chime: playback failed: %v", err)
		}
	}
}
