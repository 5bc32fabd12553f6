package countdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepProgress(t *testing.T) {
	tests := []struct {
		name      string
		stepTime  int
		remaining int
		want      float64
	}{
		{"untouched", 30, 30, 0},
		{"half", 30, 15, 50},
		{"done", 30, 0, 100},
		{"zero length", 0, 0, 0},
		{"clamped high", 10, -5, 100},
		{"clamped low", 10, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, StepProgress(tt.stepTime, tt.remaining), 0.001)
		})
	}
}

func TestTotalProgress(t *testing.T) {
	assert.Zero(t, TotalProgress(10, 0))
	assert.InDelta(t, 50.0, TotalProgress(90, 180), 0.001)
	assert.Equal(t, 100.0, TotalProgress(200, 180))
}

func TestFormatClock(t *testing.T) {
	tests := map[int]string{
		0:    "00:00",
		5:    "00:05",
		59:   "00:59",
		60:   "01:00",
		135:  "02:15",
		3600: "60:00",
		-3:   "00:00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatClock(in), "FormatClock(%d)", in)
	}
}

func TestStatusText(t *testing.T) {
	for s := StatusIdle; s <= StatusCompleted; s++ {
		b, err := s.MarshalText()
		assert.NoError(t, err)
		var got Status
		assert.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, s, got)
	}
	var s Status
	assert.Error(t, s.UnmarshalText([]byte("boiling")))
}
