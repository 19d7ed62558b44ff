package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundDecimal(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		want     float64
	}{
		{3.14159, 2, 3.14},
		{33.3333, 2, 33.33},
		{66.6666, 2, 66.67},
		{-0.12345, 3, -0.123},
		{0.4, 0, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundDecimal(tt.value, tt.decimals), 1e-12)
	}
}

func TestRemoveEmptyStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, RemoveEmptyStrings([]string{"", "a", "", "b"}))
	assert.Nil(t, RemoveEmptyStrings([]string{"", ""}))
}

func TestSplitTrim(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: nil},
		{raw: " a , ,b ", want: []string{"a", "b"}},
		{raw: ",", want: nil},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitTrim(tc.raw, ","))
		})
	}
}
