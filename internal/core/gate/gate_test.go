package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		threshold  float64
		want       Decision
	}{
		{"below", 0.91, 0.94, Escalate},
		{"equal", 0.94, 0.94, Skip},
		{"above", 0.99, 0.94, Skip},
		{"negative", -0.2, 0.94, Escalate},
		{"threshold -1 never escalates", -1, -1, Skip},
		{"threshold 1 escalates all but identical", 0.9999, 1, Escalate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.similarity, tt.threshold))
		})
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "escalate", Escalate.String())
}
