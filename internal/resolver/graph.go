// Package resolver holds the inheritance graph and the property and body
// merge algorithms used when templates inherit from each other.
package resolver

import (
	"fmt"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
)

// DependencyGraph is a directed graph of template inheritance. Nodes are
// visited in insertion order so results are deterministic.
type DependencyGraph struct {
	// adjacency list: template name -> templates it inherits from
	dependencies map[string][]string
	// reverse lookup: template name -> templates inheriting from it
	dependents map[string][]string
	nodes      map[string]bool
	order      []string
}

// NewDependencyGraph creates an empty graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
		nodes:        make(map[string]bool),
	}
}

// AddNode adds a node without edges
func (g *DependencyGraph) AddNode(name string) {
	if !g.nodes[name] {
		g.nodes[name] = true
		g.order = append(g.order, name)
	}
}

// AddDependency records that node inherits from dep
func (g *DependencyGraph) AddDependency(node, dep string) {
	g.AddNode(node)
	g.AddNode(dep)
	g.dependencies[node] = append(g.dependencies[node], dep)
	g.dependents[dep] = append(g.dependents[dep], node)
}

// Nodes returns every node in insertion order
func (g *DependencyGraph) Nodes() []string {
	return g.order
}

// GetDependencies returns the templates the given template inherits from
func (g *DependencyGraph) GetDependencies(name string) []string {
	if deps, ok := g.dependencies[name]; ok {
		return deps
	}
	return []string{}
}

// GetDependents returns the templates inheriting from the given template
func (g *DependencyGraph) GetDependents(name string) []string {
	if deps, ok := g.dependents[name]; ok {
		return deps
	}
	return []string{}
}

// HasCycle returns true if the graph contains a circular dependency
func (g *DependencyGraph) HasCycle() bool {
	return g.FindCycle() != nil
}

// FindCycle returns the cycle path if one exists, or nil if no cycle.
// The path starts and ends with the same node.
func (g *DependencyGraph) FindCycle() []string {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	for _, node := range g.order {
		if cycle := g.findCycleDFS(node, visited, recStack, nil); cycle != nil {
			return cycle
		}
	}
	return nil
}

func (g *DependencyGraph) findCycleDFS(node string, visited, recStack map[string]bool, path []string) []string {
	if recStack[node] {
		// node is on the path because it was appended right after recStack was set
		cycleStart := -1
		for i, n := range path {
			if n == node {
				cycleStart = i
				break
			}
		}
		if cycleStart == -1 {
			panic(fmt.Sprintf("cycle detection invariant violated: node %q in recStack but not in path %v", node, path))
		}
		cycle := append([]string{}, path[cycleStart:]...)
		return append(cycle, node)
	}
	if visited[node] {
		return nil
	}

	visited[node] = true
	recStack[node] = true
	path = append(path, node)

	for _, dep := range g.dependencies[node] {
		if cycle := g.findCycleDFS(dep, visited, recStack, path); cycle != nil {
			return cycle
		}
	}

	recStack[node] = false
	return nil
}

// TopologicalSort returns templates in inheritance order (parents first).
// A cycle yields a CircularInheritanceError naming its first member.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, compileerr.NewCircularInheritanceError(cycle[0], cycle, ast.Pos{})
	}

	visited := make(map[string]bool)
	result := make([]string, 0, len(g.order))
	for _, node := range g.order {
		if !visited[node] {
			g.topologicalSortDFS(node, visited, &result)
		}
	}
	return result, nil
}

func (g *DependencyGraph) topologicalSortDFS(node string, visited map[string]bool, stack *[]string) {
	visited[node] = true
	for _, dep := range g.dependencies[node] {
		if !visited[dep] {
			g.topologicalSortDFS(dep, visited, stack)
		}
	}
	*stack = append(*stack, node)
}
