package trader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPan(t *testing.T) {
	tests := []struct {
		pan  string
		want bool
	}{
		{"ABCDE1234F", true},
		{"abcde1234f", true}, // normalized to uppercase before matching
		{"AbCdE1234f", true},
		{" ABCDE1234F ", false}, // whitespace is not stripped
		{"ABCD1234F", false},    // 4 letters, not 5
		{"ABCDE12345", false},  // trailing digit instead of letter
		{"ABCDE123F", false},   // 3 digits
		{"ABCDE1234FX", false}, // too long
		{"", false},
		{"1234567890", false},
	}

	for _, tt := range tests {
		t.Run(tt.pan, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPan(tt.pan))
		})
	}
}

func TestNormalizePan(t *testing.T) {
	assert.Equal(t, "ABCDE1234F", NormalizePan("abcde1234f"))
}
