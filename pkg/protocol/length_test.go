package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextLength(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"Hello", 5},
		{"こんにちは", 5},
		{"😀", 2},
		{"a😀b", 4},
		{"𠮷野家\n", 5},
		{"\xff", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TextLength(tt.text), "%q", tt.text)
	}
}
