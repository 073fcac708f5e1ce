package collections_test

import (
	"testing"

	"bennypowers.dev/chtl/internal/collections"
	"github.com/stretchr/testify/assert"
)

func TestNewSet(t *testing.T) {
	t.Run("empty set", func(t *testing.T) {
		s := collections.NewSet[string]()
		assert.NotNil(t, s)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("duplicate initial values", func(t *testing.T) {
		s := collections.NewSet("a.chtl", "b.chtl", "a.chtl")
		assert.Equal(t, 2, s.Len(), "duplicates should be deduplicated")
		assert.True(t, s.Has("a.chtl"))
		assert.True(t, s.Has("b.chtl"))
	})
}

func TestSetRemove(t *testing.T) {
	s := collections.NewSet("a", "b")
	s.Remove("a", "missing")
	assert.False(t, s.Has("a"))
	assert.True(t, s.Has("b"))
}

func TestSetWith(t *testing.T) {
	parent := collections.NewSet("main.chtl")
	child := parent.With("lib.chtl")

	assert.True(t, child.Has("main.chtl"))
	assert.True(t, child.Has("lib.chtl"))
	assert.False(t, parent.Has("lib.chtl"), "With must not mutate the receiver")
}

func TestSetString(t *testing.T) {
	s := collections.NewSet("c", "a", "b")
	assert.Equal(t, "[a b c]", s.String())
}
