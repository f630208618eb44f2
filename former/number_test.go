package former

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"30", 30, true},
		{" 30 ", 30, true},
		{"30.", 30, true},
		{"3.5", 3.5, true},
		{"-2", -2, true},
		{"+7", 7, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"12abc", 12, true},
		{"4, 5", 4, true},
		{"1.2.3", 1.2, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{".", 0, false},
		{"1e999", 0, false},
		{"NaN", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseNumberRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := rapid.Float64().Draw(t, "f")
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Skip("not a JSON number")
		}
		got, ok := parseNumber(strconv.FormatFloat(f, 'g', -1, 64))
		if !ok || got != f {
			t.Fatalf("parseNumber(%v) = %v, %v", f, got, ok)
		}
	})
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Alice", cleanString(`Alice"`))
	assert.Equal(t, "a b", cleanString(` a b " rest"`))
	assert.Equal(t, "no quote ", cleanString("no quote "))
	assert.Equal(t, "", cleanString(`"`))
}
