package depgraph

import (
	"fmt"
	"slices"
	"strings"
)

// FindCycles enumerates cycles with a depth-first search from every
// unvisited node. When an edge reaches a node on the current recursion stack,
// the path from that node's first position through the repeat is emitted,
// e.g. [a b c a].
//
// The path is copied for every recursive call, so the same cycle can appear
// more than once when reached from different entry points. Use
// DeduplicateCycles when unique cycles are needed.
func (g *Graph) FindCycles() [][]string {
	visited := make(map[string]bool, len(g.order))
	stack := make(map[string]bool)
	cycles := [][]string{}

	var dfs func(id string, path []string)
	dfs = func(id string, path []string) {
		visited[id] = true
		stack[id] = true
		path = append(path, id)

		for _, dep := range g.forward[id].items {
			if stack[dep] {
				start := slices.Index(path, dep)
				cycles = append(cycles, append(slices.Clone(path[start:]), dep))
				continue
			}
			if !visited[dep] {
				dfs(dep, slices.Clone(path))
			}
		}

		stack[id] = false
	}

	for _, id := range g.order {
		if !visited[id] {
			dfs(id, nil)
		}
	}
	return cycles
}

// DeduplicateCycles drops cycles that are rotations of an earlier one.
// Input order is kept.
func DeduplicateCycles(cycles [][]string) [][]string {
	seen := make(map[string]struct{}, len(cycles))
	out := make([][]string, 0, len(cycles))
	for _, c := range cycles {
		key := cycleKey(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// cycleKey rotates an open cycle so that its smallest id comes first.
func cycleKey(cycle []string) string {
	open := cycle
	if len(open) > 1 && open[0] == open[len(open)-1] {
		open = open[:len(open)-1]
	}
	if len(open) == 0 {
		return ""
	}
	minIdx := 0
	for i, id := range open {
		if id < open[minIdx] {
			minIdx = i
		}
	}
	rotated := append(slices.Clone(open[minIdx:]), open[:minIdx]...)
	return strings.Join(rotated, "\x00")
}

// TopologicalSort orders the nodes with Kahn's algorithm so that for every
// edge u -> v, u comes before v. The in-degree of a node is the size of its
// reverse adjacency. ok is false when a cycle prevents a complete order.
func (g *Graph) TopologicalSort() (order []string, ok bool) {
	inDegree := make(map[string]int, len(g.order))
	queue := make([]string, 0, len(g.order))
	for _, id := range g.order {
		inDegree[id] = g.reverse[id].len()
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order = make([]string, 0, len(g.order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, dep := range g.forward[id].items {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) < len(g.order) {
		return nil, false
	}
	return order, true
}

// FindAllPaths returns every simple path from source to target. The result
// is empty when either endpoint is unknown.
func (g *Graph) FindAllPaths(source, target string) [][]string {
	paths := [][]string{}
	if !g.HasNode(source) || !g.HasNode(target) {
		return paths
	}

	onPath := make(map[string]bool)
	var dfs func(id string, path []string)
	dfs = func(id string, path []string) {
		path = append(path, id)
		if id == target {
			paths = append(paths, slices.Clone(path))
			return
		}

		onPath[id] = true
		for _, dep := range g.forward[id].items {
			if !onPath[dep] {
				dfs(dep, path)
			}
		}
		onPath[id] = false
	}

	dfs(source, nil)
	return paths
}

// ImpactedModules returns every node that transitively depends on id, in
// breadth-first order. id itself is never part of the result.
func (g *Graph) ImpactedModules(id string) []string {
	impacted := []string{}
	if !g.HasNode(id) {
		return impacted
	}

	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dependent := range g.reverse[current].items {
			if seen[dependent] {
				continue
			}
			seen[dependent] = true
			impacted = append(impacted, dependent)
			queue = append(queue, dependent)
		}
	}
	return impacted
}

// Path formats a node sequence as "a -> b -> c".
func Path(ids []string) string {
	return strings.Join(ids, " -> ")
}

// String renders the edge list, one "source -> target" per line.
func (g *Graph) String() string {
	var sb strings.Builder
	for _, id := range g.order {
		for _, dep := range g.forward[id].items {
			fmt.Fprintf(&sb, "%s -> %s\n", id, dep)
		}
	}
	return sb.String()
}
