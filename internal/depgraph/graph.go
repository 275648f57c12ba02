package depgraph

import "maps"

// Attrs is the optional data attached to a node. The "layer" key is used by
// CalculateLayerCohesion and ToDot.
type Attrs map[string]any

// LayerAttr is the attribute key holding a node's layer classification.
const LayerAttr = "layer"

// set is an insertion-ordered set of node ids.
type set struct {
	index map[string]struct{}
	items []string
}

func newSet() *set {
	return &set{index: make(map[string]struct{})}
}

func (s *set) add(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.items = append(s.items, id)
	return true
}

func (s *set) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *set) len() int {
	return len(s.items)
}

// Graph is a directed graph with mirrored forward and reverse adjacency.
type Graph struct {
	order   []string
	attrs   map[string]Attrs
	forward map[string]*set
	reverse map[string]*set
	edges   int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		attrs:   make(map[string]Attrs),
		forward: make(map[string]*set),
		reverse: make(map[string]*set),
	}
}

// AddNode adds a node with the given id. If the node already exists the call
// does nothing; existing attributes are not replaced.
func (g *Graph) AddNode(id string, attrs Attrs) {
	if _, ok := g.forward[id]; ok {
		return
	}

	g.order = append(g.order, id)
	g.attrs[id] = maps.Clone(attrs)
	g.forward[id] = newSet()
	g.reverse[id] = newSet()
}

// AddEdge records that source depends on target. Missing endpoints are added
// as nodes without attributes. Adding the same edge twice has no effect.
func (g *Graph) AddEdge(source, target string) {
	g.AddNode(source, nil)
	g.AddNode(target, nil)

	if g.forward[source].add(target) {
		g.reverse[target].add(source)
		g.edges++
	}
}

// HasNode reports whether id is part of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.forward[id]
	return ok
}

// HasEdge reports whether source depends directly on target.
func (g *Graph) HasEdge(source, target string) bool {
	fwd, ok := g.forward[source]
	return ok && fwd.has(target)
}

// Nodes returns all node ids in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// Attrs returns a copy of the attributes of id, or nil for unknown nodes.
func (g *Graph) Attrs(id string) Attrs {
	return maps.Clone(g.attrs[id])
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Dependencies returns the ids id depends on. Unknown and leaf nodes yield an
// empty slice.
func (g *Graph) Dependencies(id string) []string {
	if s, ok := g.forward[id]; ok {
		return append([]string{}, s.items...)
	}
	return []string{}
}

// Dependents returns the ids that depend on id. Unknown nodes yield an empty
// slice.
func (g *Graph) Dependents(id string) []string {
	if s, ok := g.reverse[id]; ok {
		return append([]string{}, s.items...)
	}
	return []string{}
}

// layerOf returns the layer tag of id: the "layer" attribute when it is a
// non-empty string, otherwise the id prefix before the first "/".
func (g *Graph) layerOf(id string) string {
	if l, ok := g.attrs[id][LayerAttr].(string); ok && l != "" {
		return l
	}
	for i := 0; i < len(id); i++ {
		if id[i] == '/' {
			return id[:i]
		}
	}
	return id
}
