package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{
			name:     "trims whitespace",
			input:    []string{" broker-1:9092", "broker-2:9092 "},
			expected: []string{"broker-1:9092", "broker-2:9092"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"broker-2:9092", "broker-1:9092", "broker-2:9092"},
			expected: []string{"broker-2:9092", "broker-1:9092"},
		},
		{
			name:     "drops empty entries from trailing commas",
			input:    []string{"broker-1:9092", "", "  "},
			expected: []string{"broker-1:9092"},
		},
		{
			name:     "only separators",
			input:    []string{"", " "},
			expected: []string{},
		},
		{
			name:     "preserves case",
			input:    []string{"Broker", "broker"},
			expected: []string{"Broker", "broker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
