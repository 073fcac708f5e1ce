package resolver_test

import (
	"testing"

	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyGraph(t *testing.T) {
	t.Run("edges in both directions", func(t *testing.T) {
		g := resolver.NewDependencyGraph()
		g.AddDependency("Style Child", "Style Base")
		g.AddDependency("Style Other", "Style Base")
		g.AddNode("Style Lonely")

		assert.Equal(t, []string{"Style Base"}, g.GetDependencies("Style Child"))
		assert.Equal(t, []string{"Style Child", "Style Other"}, g.GetDependents("Style Base"))
		assert.Empty(t, g.GetDependencies("Style Lonely"))
		assert.Empty(t, g.GetDependents("Style Missing"))
		assert.Equal(t, []string{"Style Child", "Style Base", "Style Other", "Style Lonely"}, g.Nodes())
	})

	t.Run("adding a node twice keeps its first position", func(t *testing.T) {
		g := resolver.NewDependencyGraph()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("a")
		assert.Equal(t, []string{"a", "b"}, g.Nodes())
	})
}

func TestFindCycle(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  []string
	}{
		{"acyclic chain", [][2]string{{"c", "b"}, {"b", "a"}}, nil},
		{"diamond", [][2]string{{"d", "b"}, {"d", "c"}, {"b", "a"}, {"c", "a"}}, nil},
		{"self", [][2]string{{"a", "a"}}, []string{"a", "a"}},
		{"three", [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, []string{"a", "b", "c", "a"}},
		{"cycle behind a tail", [][2]string{{"x", "a"}, {"a", "b"}, {"b", "a"}}, []string{"a", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := resolver.NewDependencyGraph()
			for _, e := range tt.edges {
				g.AddDependency(e[0], e[1])
			}
			assert.Equal(t, tt.want, g.FindCycle())
			assert.Equal(t, tt.want != nil, g.HasCycle())
		})
	}
}

func TestTopologicalSort(t *testing.T) {
	t.Run("parents first", func(t *testing.T) {
		g := resolver.NewDependencyGraph()
		g.AddDependency("grandchild", "child")
		g.AddDependency("child", "base")
		g.AddDependency("mixin-user", "mixin")
		g.AddDependency("child", "mixin")

		order, err := g.TopologicalSort()
		require.NoError(t, err)
		require.Len(t, order, 5)

		index := make(map[string]int)
		for i, n := range order {
			index[n] = i
		}
		assert.Less(t, index["base"], index["child"])
		assert.Less(t, index["mixin"], index["child"])
		assert.Less(t, index["child"], index["grandchild"])
		assert.Less(t, index["mixin"], index["mixin-user"])
	})

	t.Run("deterministic", func(t *testing.T) {
		build := func() *resolver.DependencyGraph {
			g := resolver.NewDependencyGraph()
			g.AddDependency("b", "a")
			g.AddNode("c")
			g.AddDependency("d", "c")
			return g
		}
		first, err := build().TopologicalSort()
		require.NoError(t, err)
		second, err := build().TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, []string{"a", "b", "c", "d"}, first)
	})

	t.Run("cycle", func(t *testing.T) {
		g := resolver.NewDependencyGraph()
		g.AddDependency("Style A", "Style B")
		g.AddDependency("Style B", "Style A")

		_, err := g.TopologicalSort()
		require.ErrorIs(t, err, compileerr.ErrCircularInheritance)
		var cycle *compileerr.CircularInheritanceError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, "Style A", cycle.Name)
		assert.Equal(t, []string{"Style A", "Style B", "Style A"}, cycle.Chain)
	})
}
