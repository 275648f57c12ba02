package depgraph

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultHotspotThreshold is the fan-out at which IdentifyHotspots reports a node.
const DefaultHotspotThreshold = 3

// Metrics holds per-node coupling counts and the graph's cyclomatic complexity.
type Metrics struct {
	FanIn                map[string]int `json:"fanIn"`
	FanOut               map[string]int `json:"fanOut"`
	CyclomaticComplexity int            `json:"cyclomaticComplexity"`
}

// CalculateMetrics computes fan-in (size of the reverse adjacency), fan-out
// (size of the forward adjacency) for every node, and the cyclomatic
// complexity E - N + 2.
func (g *Graph) CalculateMetrics() Metrics {
	m := Metrics{
		FanIn:  make(map[string]int, len(g.order)),
		FanOut: make(map[string]int, len(g.order)),
	}
	for _, id := range g.order {
		m.FanIn[id] = g.reverse[id].len()
		m.FanOut[id] = g.forward[id].len()
	}
	m.CyclomaticComplexity = g.edges - len(g.order) + 2
	return m
}

// CalculateLayerCohesion groups nodes by layer and returns, per layer, the
// share of edges leaving the layer's nodes that stay inside the layer. A
// layer with a single node, or whose nodes have no outgoing edges, has
// cohesion 1.
func (g *Graph) CalculateLayerCohesion() map[string]float64 {
	groups := g.layerGroups()
	cohesion := make(map[string]float64, len(groups))
	for l, members := range groups {
		if len(members) < 2 {
			cohesion[l] = 1
			continue
		}

		internal, total := 0, 0
		for _, id := range members {
			for _, dep := range g.forward[id].items {
				total++
				if g.layerOf(dep) == l {
					internal++
				}
			}
		}

		if total == 0 {
			cohesion[l] = 1
			continue
		}
		cohesion[l] = float64(internal) / float64(total)
	}
	return cohesion
}

func (g *Graph) layerGroups() map[string][]string {
	groups := make(map[string][]string)
	for _, id := range g.order {
		l := g.layerOf(id)
		groups[l] = append(groups[l], id)
	}
	return groups
}

// AbstractAttr is the attribute key marking a node as part of its layer's
// public surface. Nodes count as abstract when it holds true.
const AbstractAttr = "abstract"

// LayerCoupling holds the package metrics of one layer.
//
// Afferent (Ca) counts edges pointing at the layer's nodes and Efferent (Ce)
// the edges leaving them, edges between members included. Coupling is the
// share of efferent edges that leave the layer. Stability is Ce/(Ca+Ce):
// 0 is maximally stable, 1 maximally unstable. Abstractness is the share of
// members marked with AbstractAttr.
type LayerCoupling struct {
	Afferent     int     `json:"afferent"`
	Efferent     int     `json:"efferent"`
	Coupling     float64 `json:"coupling"`
	Stability    float64 `json:"stability"`
	Abstractness float64 `json:"abstractness"`
}

// CalculateLayerCoupling groups nodes by layer like CalculateLayerCohesion
// and computes LayerCoupling for every group. A layer without edges has
// coupling and stability 0.
func (g *Graph) CalculateLayerCoupling() map[string]LayerCoupling {
	groups := g.layerGroups()
	out := make(map[string]LayerCoupling, len(groups))
	for l, members := range groups {
		var c LayerCoupling
		external, abstract := 0, 0
		for _, id := range members {
			c.Afferent += g.reverse[id].len()
			c.Efferent += g.forward[id].len()
			for _, dep := range g.forward[id].items {
				if g.layerOf(dep) != l {
					external++
				}
			}
			if v, ok := g.attrs[id][AbstractAttr].(bool); ok && v {
				abstract++
			}
		}
		if c.Efferent > 0 {
			c.Coupling = float64(external) / float64(c.Efferent)
		}
		if c.Afferent+c.Efferent > 0 {
			c.Stability = float64(c.Efferent) / float64(c.Afferent+c.Efferent)
		}
		c.Abstractness = float64(abstract) / float64(len(members))
		out[l] = c
	}
	return out
}

// IdentifyHotspots returns the nodes whose fan-out is at least threshold,
// highest fan-out first. Ties keep insertion order.
func (g *Graph) IdentifyHotspots(threshold int) []string {
	hotspots := []string{}
	for _, id := range g.order {
		if g.forward[id].len() >= threshold {
			hotspots = append(hotspots, id)
		}
	}
	slices.SortStableFunc(hotspots, func(a, b string) int {
		return g.forward[b].len() - g.forward[a].len()
	})
	return hotspots
}

var layerColors = map[string]string{
	"core":           "#ffcccc",
	"shared":         "#ccffcc",
	"themes":         "#ccccff",
	"infrastructure": "#ffffcc",
}

const defaultColor = "white"

// ToDot renders the graph in Graphviz DOT syntax. Nodes are filled with the
// colour of their "layer" attribute.
func (g *Graph) ToDot() string {
	var sb strings.Builder
	sb.WriteString("digraph Dependencies {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=filled];\n\n")

	for _, id := range g.order {
		color := defaultColor
		if l, ok := g.attrs[id][LayerAttr].(string); ok {
			if c, ok := layerColors[l]; ok {
				color = c
			}
		}
		fmt.Fprintf(&sb, "  %q [fillcolor=%q];\n", id, color)
	}

	sb.WriteString("\n")
	for _, id := range g.order {
		for _, dep := range g.forward[id].items {
			fmt.Fprintf(&sb, "  %q -> %q;\n", id, dep)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
