package layergraph

import (
	"fmt"
	"strings"

	"github.com/vk/heacheck/internal/layer"
)

// ToDot renders the graph in Graphviz DOT syntax with one cluster per layer
// type. Valid edges are solid black, invalid ones dashed red.
func (b *Builder) ToDot() string {
	var sb strings.Builder
	sb.WriteString("digraph HEA {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box];\n")

	var layers []layer.Type
	byLayer := make(map[layer.Type][]Node)
	for _, n := range b.nodes {
		if _, ok := byLayer[n.Layer]; !ok {
			layers = append(layers, n.Layer)
		}
		byLayer[n.Layer] = append(byLayer[n.Layer], n)
	}

	for _, l := range layers {
		fmt.Fprintf(&sb, "\n  subgraph cluster_%s {\n", clusterID(string(l)))
		fmt.Fprintf(&sb, "    label=%q;\n", string(l))
		for _, n := range byLayer[l] {
			fmt.Fprintf(&sb, "    %q [label=%q];\n", n.ID, n.Label)
		}
		sb.WriteString("  }\n")
	}

	if len(b.edges) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range b.edges {
		if e.Valid {
			fmt.Fprintf(&sb, "  %q -> %q [color=black, style=solid];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&sb, "  %q -> %q [color=red, style=dashed, tooltip=%q];\n", e.From, e.To, e.Reason)
	}

	sb.WriteString("}\n")
	return sb.String()
}

func clusterID(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, s)
}

// ToMermaid renders the graph as a Mermaid flowchart. Valid edges use -->,
// invalid ones -.->.
func (b *Builder) ToMermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range b.nodes {
		fmt.Fprintf(&sb, "  %s[\"%s\"]\n", MermaidID(n.ID), MermaidLabel(n.Label))
	}
	for _, e := range b.edges {
		arrow := "-->"
		if !e.Valid {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", MermaidID(e.From), arrow, MermaidID(e.To))
	}
	return sb.String()
}

var (
	mermaidReplacer = strings.NewReplacer(":", "_", "-", "_")
	labelReplacer   = strings.NewReplacer("#", "#35;", `"`, "#quot;", "\n", " ")
)

// MermaidLabel escapes s for use inside a quoted Mermaid node label using
// Mermaid entity codes.
func MermaidLabel(s string) string {
	return labelReplacer.Replace(s)
}

// MermaidID makes a node id usable as a bare Mermaid identifier.
func MermaidID(id string) string {
	return mermaidReplacer.Replace(id)
}
