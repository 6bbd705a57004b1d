package dedupe

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValues(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name     string
		input    []uuid.UUID
		expected []uuid.UUID
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []uuid.UUID{}, expected: []uuid.UUID{}},
		{name: "no duplicates", input: []uuid.UUID{a, b}, expected: []uuid.UUID{a, b}},
		{name: "keeps first occurrence", input: []uuid.UUID{b, a, b, a}, expected: []uuid.UUID{b, a}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Values(tt.input))
		})
	}
}

func TestTrimmed(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: []string{}},
		{name: "trims whitespace", input: []string{"  foo  ", "bar  "}, expected: []string{"foo", "bar"}},
		{name: "removes blanks", input: []string{"foo", "", "  ", "bar"}, expected: []string{"foo", "bar"}},
		{name: "dedupes after trimming", input: []string{" foo", "foo ", "bar"}, expected: []string{"foo", "bar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Trimmed(tt.input))
		})
	}
}
