package brew

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input  string
		action string
		ok     bool
	}{
		{"start", ActionStart, true},
		{"  Let's go ", ActionStart, true},
		{"pause", ActionPause, true},
		{"hold on", ActionPause, true},
		{"RESUME", ActionResume, true},
		{"continue", ActionResume, true},
		{"reset", ActionReset, true},
		{"start over", ActionReset, true},
		{"", "", false},
		{"skip", "", false},
		{"pause please", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			action, ok := ParseCommand(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.action, action)
		})
	}
}
