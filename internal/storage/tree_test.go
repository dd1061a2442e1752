package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareKeys(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"10", "2", 1},
		{"-3", "1", -1},
		{"7", "7", 0},
		{"9", "a", -1},
		{"a", "9", 1},
		{"abc", "abd", -1},
		{"01", "1", 1},
		{"01", "2", 1},
		{"+1", "0", 1},
		{"01", "+1", 1},
		{"2147483648", "9", 1},
		{"2147483647", "9", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareKeys(tt.a, tt.b))
		})
	}
}
