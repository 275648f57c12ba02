package report

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/jstemmer/go-junit-report/v2/junit"
	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/heacheck/internal/depgraph"
)

// richReport extends sampleReport with manifests, layer metrics and a
// finding that belongs to no layer.
func richReport() *Report {
	r := &Report{
		RunID:     "run-1",
		Version:   "1.2.3",
		Root:      "/proj",
		Layers:    []string{"core", "ui"},
		Manifests: map[string]string{"core": "core/layer.hcl", "ui": "ui/layer.yaml"},
	}
	r.Add(
		New(KindLayerViolation, "core -> ui", "Core layer cannot depend on other layers"),
		New(KindHotspot, "ui:app", "Fan-out 4 reaches the hotspot threshold 3"),
		New(KindPipeDependency, "stages", "Pipe 'report' depends on unregistered pipe 'x'"),
	)
	r.Analysis.Cohesion = map[string]float64{"core": 1, "ui": 0.25}
	r.Analysis.Coupling = map[string]depgraph.LayerCoupling{
		"core": {Afferent: 3},
		"ui":   {Efferent: 4, Coupling: 0.75, Stability: 1, Abstractness: 0.5},
	}
	r.Finalize()
	return r
}

func TestReport_LayerOf(t *testing.T) {
	r := richReport()
	assert.Equal(t, "core", r.LayerOf("core"))
	assert.Equal(t, "ui", r.LayerOf("ui:app"))
	assert.Equal(t, "core", r.LayerOf("core:utils -> ui:app"))
	assert.Equal(t, "", r.LayerOf("stages"))
	assert.Equal(t, "", r.LayerOf(""))
}

func TestWrite_Dispatch(t *testing.T) {
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, format, richReport()))
			assert.NotEmpty(t, buf.String())
		})
	}

	var buf bytes.Buffer
	assert.ErrorContains(t, Write(&buf, "html", richReport()), `unknown report format "html"`)
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, richReport()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# HEA Architecture Report\n"))
	assert.Contains(t, out, "- **Score**: 78/100 (Grade: C)\n")
	assert.Contains(t, out, "- **Errors**: 2\n")
	assert.Contains(t, out, "- **Warnings**: 1\n")
	assert.Contains(t, out, "- **layer-violation** (high): Core layer cannot depend on other layers\n  - Location: `core -> ui`\n")
	assert.Contains(t, out, "| core | 100.0% | 0.0% | 0.0% | 0.0% |\n")
	assert.Contains(t, out, "| ui | 25.0% | 75.0% | 100.0% | 50.0% |\n")
	assert.Less(t, strings.Index(out, "| core |"), strings.Index(out, "| ui |"), "layers are sorted")
	assert.Contains(t, out, "## Suggestions\n")
}

func TestWriteMarkdown_Clean(t *testing.T) {
	r := &Report{Root: "/proj"}
	r.Finalize()

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, r))
	assert.Contains(t, buf.String(), "(Grade: A)")
	assert.NotContains(t, buf.String(), "## Violations")
	assert.NotContains(t, buf.String(), "## Layer Metrics")
}

func TestWriteJUnit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, richReport()))

	var suites junit.Testsuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	require.Len(t, suites.Suites, 1)
	suite := suites.Suites[0]
	assert.Equal(t, "HEA Architecture", suite.Name)
	assert.Equal(t, 3, suite.Tests)
	assert.Equal(t, 2, suite.Failures)

	cases := make(map[string]junit.Testcase)
	for _, tc := range suite.Testcases {
		cases[tc.Name] = tc
	}

	core := cases["core"]
	require.NotNil(t, core.Failure)
	assert.Equal(t, "layer-violation", core.Failure.Type)
	assert.Equal(t, "Core layer cannot depend on other layers", core.Failure.Message)
	assert.Equal(t, "HEA.Layers.core.layer.hcl", core.Classname)

	ui := cases["ui"]
	assert.Nil(t, ui.Failure, "a hotspot is only a warning")
	require.NotNil(t, ui.SystemOut)
	assert.Contains(t, ui.SystemOut.Data, "hotspot")

	project := cases[wiringCase]
	require.NotNil(t, project.Failure)
	assert.Equal(t, "pipe-dependency", project.Failure.Type)
}

func TestWriteJUnit_CleanProjectHasNoFailures(t *testing.T) {
	r := &Report{Layers: []string{"core"}}
	r.Finalize()

	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, r))

	var suites junit.Testsuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	require.Len(t, suites.Suites, 1)
	assert.Equal(t, 1, suites.Suites[0].Tests)
	assert.Equal(t, 0, suites.Suites[0].Failures)
}

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, richReport()))

	log, err := sarif.FromBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	run := log.Runs[0]

	assert.Equal(t, "heacheck", run.Tool.Driver.Name)
	require.NotNil(t, run.Tool.Driver.Version)
	assert.Equal(t, "1.2.3", *run.Tool.Driver.Version)
	assert.Len(t, run.Tool.Driver.Rules, len(kindDescriptions))

	require.Len(t, run.Results, 3)
	first := run.Results[0]
	assert.Equal(t, "layer-violation", *first.RuleID)
	assert.Equal(t, "error", *first.Level)
	assert.Equal(t, "Core layer cannot depend on other layers", *first.Message.Text)
	require.Len(t, first.Locations, 1)
	require.NotNil(t, first.Locations[0].PhysicalLocation)
	assert.Equal(t, "core/layer.hcl", *first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, "core -> ui", *first.Locations[0].LogicalLocations[0].FullyQualifiedName)

	assert.Equal(t, "note", *run.Results[1].Level, "hotspots are low severity")
	assert.Nil(t, run.Results[2].Locations[0].PhysicalLocation, "stage wiring has no manifest")
}
