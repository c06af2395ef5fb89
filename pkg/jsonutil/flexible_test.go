package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsArray(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"wrapped results object", `{"count": 2, "results": [{"a":1},{"b":2}]}`, 2},
		{"bare array", `[{"a":1}]`, 1},
		{"empty results", `{"results": []}`, 0},
		{"object without results", `{"count": 3}`, 0},
		{"scalar", `42`, 0},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResultsArray(json.RawMessage(tt.raw))
			require.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFlexibleNumber(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		absent bool
	}{
		{"plain number", `172`, 172, false},
		{"decimal number", `1.6895`, 1.6895, false},
		{"numeric string", `"77"`, 77, false},
		{"numeric string with spaces", `" 20 "`, 20, false},
		{"empty string", `""`, 0, true},
		{"null", `null`, 0, true},
		{"non-numeric string", `"unknown"`, 0, true},
		{"missing", ``, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleNumber(json.RawMessage(tt.raw))
			if tt.absent {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestFlexibleString(t *testing.T) {
	assert.Nil(t, FlexibleString(json.RawMessage(`null`)))
	assert.Nil(t, FlexibleString(json.RawMessage(`""`)))
	assert.Nil(t, FlexibleString(nil))

	got := FlexibleString(json.RawMessage(`"blond"`))
	require.NotNil(t, got)
	assert.Equal(t, "blond", *got)

	got = FlexibleString(json.RawMessage(`42`))
	require.NotNil(t, got)
	assert.Equal(t, "42", *got)
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, StringList(json.RawMessage(`["a","b"]`)))
	assert.Empty(t, StringList(json.RawMessage(`null`)))
	assert.Empty(t, StringList(json.RawMessage(`"not-a-list"`)))
	assert.Empty(t, StringList(nil))
}
