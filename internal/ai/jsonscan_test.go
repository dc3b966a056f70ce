package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare", in: `[{"role":"a"}]`, want: `[{"role":"a"}]`},
		{name: "prose around", in: "Sure! Here you go:\n[1,2]\nHope it helps [really].", want: `[1,2]`},
		{name: "skips invalid bracket", in: "[note] result: [\"x\"]", want: `["x"]`},
		{name: "nested", in: `x [[1],[2]] y`, want: `[[1],[2]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := FirstJSONArray(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestFirstJSONArrayErrors(t *testing.T) {
	_, err := FirstJSONArray("no brackets here")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = FirstJSONArray("[unterminated")
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestFirstJSONObjectNestedAndMultiple(t *testing.T) {
	raw, err := FirstJSONObject(`Result: {"a": {"b": 1}} and also {"c": 2}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {"b": 1}}`, string(raw))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences("  {\"a\":1}  "))
}
