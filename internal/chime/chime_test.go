package chime

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/logger"
)

type recordingSink struct {
	mu     sync.Mutex
	played [][]byte
	err    error
}

func (s *recordingSink) Play(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.played = append(s.played, pcm)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.played)
}

func TestSynthLength(t *testing.T) {
	pcm := Synth([]Note{{Freq: 440, Dur: 100 * time.Millisecond}, {Dur: 50 * time.Millisecond}}, 0.5)
	assert.Len(t, pcm, (SampleRate/10+SampleRate/20)*2)

	// The silent tail is all zeros.
	tail := pcm[len(pcm)-SampleRate/20*2:]
	assert.Equal(t, make([]byte, len(tail)), tail)
}

func TestSynthStartsSilent(t *testing.T) {
	pcm := Synth(StepCue, 1)
	assert.Zero(t, int16(binary.LittleEndian.Uint16(pcm[0:2])), "fade-in starts at zero")
}

func TestChimePlaysQueuedCues(t *testing.T) {
	sink := &recordingSink{}
	c, err := New(sink, logger.NewNop())
	require.NoError(t, err)

	c.Step()
	c.Done()
	c.Close()

	require.Equal(t, 2, sink.count())
	assert.Equal(t, Synth(StepCue, 0.4), sink.played[0])
	assert.Equal(t, Synth(DoneCue, 0.4), sink.played[1])

	// After Close cues are dropped.
	c.Step()
	c.Close()
	assert.Equal(t, 2, sink.count())
}

func TestChimeSurvivesPlaybackErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("no device")}
	c, err := New(sink, logger.NewNop())
	require.NoError(t, err)
	c.Done()
	c.Close()
	assert.Equal(t, 1, sink.count())
}

func wav(pcm []byte) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+len(pcm)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, uint16(ChannelCount))
	_ = binary.Write(&b, binary.LittleEndian, uint32(SampleRate))
	_ = binary.Write(&b, binary.LittleEndian, uint32(SampleRate*2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func TestExtractPCM(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	got, err := ExtractPCM(wav(pcm))
	require.NoError(t, err)
	assert.Equal(t, pcm, got)

	_, err = ExtractPCM([]byte("short"))
	assert.Error(t, err)
	_, err = ExtractPCM(bytes.Repeat([]byte("x"), 64))
	assert.Error(t, err)
}

func TestDoneWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "done.wav")
	require.NoError(t, os.WriteFile(path, wav([]byte{9, 9}), 0o644))

	sink := &recordingSink{}
	c, err := New(sink, logger.NewNop(), WithDoneWAV(path))
	require.NoError(t, err)
	c.Done()
	c.Close()
	assert.Equal(t, []byte{9, 9}, sink.played[0])

	_, err = New(sink, logger.NewNop(), WithDoneWAV(filepath.Join(t.TempDir(), "missing.wav")))
	assert.Error(t, err)
}
