package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldsPopAndClone(t *testing.T) {
	f := Fields{}
	f.Set("username", "bob")
	f.Set("role_ids", []int64{1, 2})

	clone := f.Clone()
	v, ok := clone.Pop("username")
	assert.True(t, ok)
	assert.Equal(t, "bob", v)
	assert.False(t, clone.Has("username"))

	// the original payload keeps the field the clone popped
	assert.True(t, f.Has("username"))

	ids, ok := f.Int64s("role_ids")
	assert.True(t, ok)
	assert.Equal(t, []int64{1, 2}, ids)

	_, ok = f.Int64s("missing")
	assert.False(t, ok)
}

func TestFieldsNamesDeterministic(t *testing.T) {
	f := Fields{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, f.Names())
}

func TestFieldsPresenceVsEmpty(t *testing.T) {
	f := Fields{}
	f.Set("role_ids", []int64{})

	ids, ok := f.Int64s("role_ids")
	assert.True(t, ok, "explicitly empty list is present")
	assert.Empty(t, ids)
	assert.False(t, f.Has("permission_ids"))
}
