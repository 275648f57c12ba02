package layergraph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/heacheck/internal/layer"
)

func sampleBuilder() *Builder {
	v := layer.New()
	core := layer.Config{Name: "core", Type: layer.Core}
	shared := layer.Config{Name: "shared", Type: layer.Shared}
	users := layer.Config{Name: "user-mgmt", Type: layer.Themes}
	db := layer.Config{Name: "db", Type: layer.Infrastructure}

	b := NewBuilder()
	for _, c := range []layer.Config{core, shared, users, db} {
		b.AddLayer(c)
	}
	b.AddModule("user-mgmt", "session", layer.Themes)
	b.AddDependency(v.ValidateDependencies(shared, core))
	b.AddDependency(v.ValidateDependencies(users, shared))
	b.AddDependency(v.ValidateDependencies(db, users))
	return b
}

func TestBuilder_Graph(t *testing.T) {
	b := sampleBuilder()
	b.AddLayer(layer.Config{Name: "core", Type: layer.Core}) // duplicate ignored

	g := b.Graph()
	require.Len(t, g.Nodes, 5)
	assert.Equal(t, Node{ID: "user-mgmt:session", Label: "session", Layer: layer.Themes, Kind: KindModule}, g.Nodes[4])
	require.Len(t, g.Edges, 3)
	assert.False(t, g.Edges[2].Valid)
	assert.Equal(t, "Themes and Infrastructure layers cannot depend on each other", g.Edges[2].Reason)

	g.Nodes[0].Label = "mutated"
	assert.Equal(t, "core", b.Graph().Nodes[0].Label, "Graph returns a copy")

	data, err := json.Marshal(b.Graph())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"user-mgmt:session"`)
}

func TestBuilder_Metrics(t *testing.T) {
	b := sampleBuilder()
	assert.Equal(t, Metrics{Nodes: 5, Edges: 3, ValidEdges: 2, InvalidEdges: 1, Cycles: 0}, b.Metrics())

	b.AddDependency(layer.DependencyInfo{From: "core", To: "shared", Type: layer.DependencyImport, Reason: "Core layer cannot depend on other layers"})
	m := b.Metrics()
	assert.Equal(t, 1, m.Cycles)
	assert.Equal(t, 2, m.InvalidEdges)
}

func TestBuilder_MetricsEdgesWithoutNodes(t *testing.T) {
	b := NewBuilder()
	b.AddDependency(layer.DependencyInfo{From: "a", To: "b", Valid: true})
	b.AddDependency(layer.DependencyInfo{From: "b", To: "a", Valid: true})
	assert.Equal(t, 1, b.Metrics().Cycles)
}

func TestToDot(t *testing.T) {
	dot := sampleBuilder().ToDot()

	require.True(t, strings.HasPrefix(dot, "digraph HEA {\n"))
	for _, l := range []string{"core", "shared", "themes", "infrastructure"} {
		assert.Contains(t, dot, "subgraph cluster_"+l+" {")
		assert.Contains(t, dot, `label="`+l+`";`)
	}
	assert.Equal(t, 1, strings.Count(dot, "subgraph cluster_themes"), "module shares its layer's cluster")
	assert.Contains(t, dot, `"user-mgmt:session" [label="session"];`)
	assert.Contains(t, dot, `"shared" -> "core" [color=black, style=solid];`)
	assert.Contains(t, dot, `"db" -> "user-mgmt" [color=red, style=dashed`)
}

func TestToMermaid(t *testing.T) {
	mmd := sampleBuilder().ToMermaid()

	assert.True(t, strings.HasPrefix(mmd, "graph TD\n"))
	assert.Contains(t, mmd, `  user_mgmt_session["session"]`)
	assert.Contains(t, mmd, "  shared --> core\n")
	assert.Contains(t, mmd, "  user_mgmt --> shared\n")
	assert.Contains(t, mmd, "  db -.-> user_mgmt\n")
	assert.NotContains(t, mmd, "user-mgmt:")
}

func TestMermaidLabel(t *testing.T) {
	assert.Equal(t, "session", MermaidLabel("session"))
	assert.Equal(t, "say #quot;hi#quot;", MermaidLabel(`say "hi"`))
	assert.Equal(t, "#35;1 café", MermaidLabel("#1 café"))
	assert.Equal(t, "a b", MermaidLabel("a\nb"))

	b := NewBuilder()
	b.AddModule("ui", `odd"name`, layer.Themes)
	mmd := b.ToMermaid()
	assert.Contains(t, mmd, `["odd#quot;name"]`)
	assert.NotContains(t, mmd, `\"`)
}

func TestMermaidID(t *testing.T) {
	assert.Equal(t, "my_layer_sub_mod", MermaidID("my-layer:sub-mod"))
	assert.Equal(t, "plain", MermaidID("plain"))
}
