// Package layergraph assembles a serializable graph of layers, modules and
// validated dependencies, and renders it as Graphviz DOT or Mermaid.
package layergraph

import (
	"slices"

	"github.com/vk/heacheck/internal/layer"
)

// NodeKind distinguishes layer nodes from module nodes.
type NodeKind string

const (
	KindLayer  NodeKind = "layer"
	KindModule NodeKind = "module"
)

// Node is a layer or a module inside a layer.
type Node struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Layer layer.Type `json:"layer"`
	Kind  NodeKind   `json:"kind"`
}

// Edge is a dependency between two nodes, carrying the validation outcome.
type Edge struct {
	From   string               `json:"from"`
	To     string               `json:"to"`
	Type   layer.DependencyType `json:"type"`
	Valid  bool                 `json:"valid"`
	Reason string               `json:"reason,omitempty"`
}

// Graph is the serializable form of a Builder.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Metrics summarises a Builder's graph.
type Metrics struct {
	Nodes        int `json:"nodes"`
	Edges        int `json:"edges"`
	ValidEdges   int `json:"validEdges"`
	InvalidEdges int `json:"invalidEdges"`
	Cycles       int `json:"cycles"`
}

// Builder accumulates nodes and edges. It is not safe for concurrent use.
type Builder struct {
	nodes []Node
	index map[string]int
	edges []Edge
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// ModuleID returns the node id of a module: "layerName:moduleName".
func ModuleID(layerName, moduleName string) string {
	return layerName + ":" + moduleName
}

// AddLayer adds a node for cfg, keyed by its name.
func (b *Builder) AddLayer(cfg layer.Config) {
	b.addNode(Node{ID: cfg.Name, Label: cfg.Name, Layer: cfg.Type, Kind: KindLayer})
}

// AddModule adds a node for a module inside layerName.
func (b *Builder) AddModule(layerName, moduleName string, layerType layer.Type) {
	b.addNode(Node{
		ID:    ModuleID(layerName, moduleName),
		Label: moduleName,
		Layer: layerType,
		Kind:  KindModule,
	})
}

func (b *Builder) addNode(n Node) {
	if _, ok := b.index[n.ID]; ok {
		return
	}
	b.index[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
}

// AddDependency adds an edge for a validated dependency.
func (b *Builder) AddDependency(info layer.DependencyInfo) {
	b.edges = append(b.edges, Edge{
		From:   info.From,
		To:     info.To,
		Type:   info.Type,
		Valid:  info.Valid,
		Reason: info.Reason,
	})
}

// Graph returns a copy of the accumulated nodes and edges.
func (b *Builder) Graph() Graph {
	return Graph{
		Nodes: append([]Node{}, b.nodes...),
		Edges: append([]Edge{}, b.edges...),
	}
}

// Metrics counts nodes, edges by validity, and cycles. Cycles are found
// with the same path-copying depth-first search as depgraph.Graph.FindCycles,
// so a cycle reachable from several entry points is counted more than once.
func (b *Builder) Metrics() Metrics {
	m := Metrics{Nodes: len(b.nodes), Edges: len(b.edges)}
	for _, e := range b.edges {
		if e.Valid {
			m.ValidEdges++
		} else {
			m.InvalidEdges++
		}
	}
	m.Cycles = len(b.findCycles())
	return m
}

func (b *Builder) findCycles() [][]string {
	adjacency := make(map[string][]string)
	var order []string
	seen := make(map[string]bool)
	track := func(id string) {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, n := range b.nodes {
		track(n.ID)
	}
	for _, e := range b.edges {
		track(e.From)
		track(e.To)
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	visited := make(map[string]bool)
	stack := make(map[string]bool)
	var cycles [][]string

	var dfs func(id string, path []string)
	dfs = func(id string, path []string) {
		visited[id] = true
		stack[id] = true
		path = append(path, id)

		for _, next := range adjacency[id] {
			if stack[next] {
				start := slices.Index(path, next)
				cycles = append(cycles, append(slices.Clone(path[start:]), next))
				continue
			}
			if !visited[next] {
				dfs(next, slices.Clone(path))
			}
		}
		stack[id] = false
	}

	for _, id := range order {
		if !visited[id] {
			dfs(id, nil)
		}
	}
	return cycles
}
