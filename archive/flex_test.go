package archive

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexNumber(t *testing.T) {
	tests := map[string]float64{
		`12`:        12,
		`12.9`:      12.9,
		`"42"`:      42,
		`" 7.5 "`:   7.5,
		`null`:      0,
		`"nope"`:    0,
		`"0:01:02"`: 0,
		`["3", 4]`:  3,
		`[]`:        0,
		`true`:      0,
	}
	for input, want := range tests {
		var n FlexNumber
		require.NoError(t, json.Unmarshal([]byte(input), &n), input)
		assert.Equal(t, want, float64(n), input)
	}
}

func TestFlexString(t *testing.T) {
	tests := map[string]string{
		`"hello"`:        "hello",
		`["one", "two"]`: "one\ntwo",
		`null`:           "",
		`[]`:             "",
	}
	for input, want := range tests {
		var s FlexString
		require.NoError(t, json.Unmarshal([]byte(input), &s), input)
		assert.Equal(t, want, s.String(), input)
	}
}
