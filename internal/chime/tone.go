// Package chime plays short audio cues for step changes and completed
// brews: synthesized tones or a user-supplied WAV, played through oto.
package chime

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// Audio format shared by synthesis and playback.
const (
	SampleRate   = 24000
	ChannelCount = 1
)

// Note is one tone of a cue.
type Note struct {
	Freq float64 // Hz; 0 is silence
	Dur  time.Duration
}

// Cues played by default.
var (
	StepCue = []Note{{Freq: 880, Dur: 120 * time.Millisecond}}
	DoneCue = []Note{
		{Freq: 660, Dur: 140 * time.Millisecond},
		{Freq: 0, Dur: 40 * time.Millisecond},
		{Freq: 880, Dur: 140 * time.Millisecond},
		{Freq: 0, Dur: 40 * time.Millisecond},
		{Freq: 1320, Dur: 260 * time.Millisecond},
	}
)

// Synth renders notes as signed 16-bit little-endian mono PCM. Each tone
// gets a short linear fade in and out to avoid clicks.
func Synth(notes []Note, volume float64) []byte {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	var out []byte
	for _, n := range notes {
		samples := int(n.Dur.Seconds() * SampleRate)
		fade := SampleRate / 200 // 5ms
		if fade > samples/2 {
			fade = samples / 2
		}
		buf := make([]byte, samples*2)
		for i := 0; i < samples; i++ {
			v := 0.0
			if n.Freq > 0 {
				v = math.Sin(2 * math.Pi * n.Freq * float64(i) / SampleRate)
				switch {
				case i < fade:
					v *= float64(i) / float64(fade)
				case i >= samples-fade:
					v *= float64(samples-i) / float64(fade)
				}
			}
			s := int16(v * volume * math.MaxInt16)
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
		}
		out = append(out, buf...)
	}
	return out
}

// ExtractPCM strips the WAV/RIFF header and returns raw PCM data.
func ExtractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}

	// Verify RIFF header.
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	// Walk chunks to find the "data" chunk.
	pos := 12
	for pos < len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		if chunkID == "data" {
			start := pos + 8
			end := start + chunkSize
			if end > len(wav) {
				end = len(wav)
			}
			return wav[start:end], nil
		}

		pos += 8 + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return nil, errors.New("data chunk not found in WAV")
}
