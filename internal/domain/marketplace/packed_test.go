package marketplace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackedSet_ZeroValue(t *testing.T) {
	var s PackedSet
	assert.False(t, s.Has("x"))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.IDs())
}

func TestPackedSet_ToggleReturnsNewSet(t *testing.T) {
	original := NewPackedSet("a", "b")

	toggled := original.Toggle("b", "c")

	assert.Equal(t, []string{"a", "c"}, toggled.IDs())
	assert.Equal(t, []string{"a", "b"}, original.IDs(), "receiver must not change")
}

func TestPackedSet_SetPacked(t *testing.T) {
	s := NewPackedSet("a")

	s2 := s.SetPacked(true, "a", "b", "")
	assert.Equal(t, []string{"a", "b"}, s2.IDs())

	s3 := s2.SetPacked(false, "a", "zzz")
	assert.Equal(t, []string{"b"}, s3.IDs())
}

func TestPackedSet_JSON(t *testing.T) {
	data, err := json.Marshal(NewPackedSet("p2", "p1"))
	require.NoError(t, err)
	assert.JSONEq(t, `["p1","p2"]`, string(data))

	var decoded PackedSet
	require.NoError(t, json.Unmarshal([]byte(`["x","y","x"]`), &decoded))
	assert.Equal(t, 2, decoded.Len())
	assert.True(t, decoded.Has("y"))

	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &decoded))
}
