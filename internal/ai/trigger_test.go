package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTrigger(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"@AI tell me a joke", true},
		{"@ai", true},
		{"@aiden is here", true},
		{"hey ai, what time is it", true},
		{"HEY AI", true},
		{"well, Hey Ai what's up", true},
		{"hello there", false},
		{"ping @ai", false},
		{"hey aI", true},
		{"heyai", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTrigger(tt.content))
		})
	}
}
