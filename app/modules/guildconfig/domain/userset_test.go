package guilddomain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSet_AddAndLen(t *testing.T) {
	s := NewUserSet()
	s.Add("a")
	s.Add("b")
	s.Add("a")
	s.Add("")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
	assert.Equal(t, []string{"a", "b"}, s.Members())
}

func TestUserSet_MarshalsAsSortedArray(t *testing.T) {
	s := NewUserSet()
	s.Add("c")
	s.Add("a")
	s.Add("b")

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","c"]`, string(raw))
}

func TestUserSet_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "array shape", raw: `["a","b","c"]`, want: []string{"a", "b", "c"}},
		{name: "legacy object shape", raw: `{"a":true,"b":1,"c":null}`, want: []string{"a", "b", "c"}},
		{name: "empty array", raw: `[]`, want: []string{}},
		{name: "malformed resets to empty", raw: `"not a set"`, want: []string{}},
		{name: "null resets to empty", raw: `null`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s UserSet
			err := json.Unmarshal([]byte(tt.raw), &s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Members())
		})
	}
}

func TestUserSet_RoundTrip(t *testing.T) {
	s := NewUserSet()
	s.Add("a")
	s.Add("b")

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var back UserSet
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, s.Members(), back.Members())
}

func TestUserSet_Clone(t *testing.T) {
	s := NewUserSet()
	s.Add("a")

	c := s.Clone()
	c.Add("b")

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, c.Len())
}
