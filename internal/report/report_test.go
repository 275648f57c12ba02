package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		kinds []Kind
		want  int
	}{
		{name: "no violations", want: 100},
		{name: "one of each severity", kinds: []Kind{KindGraphCycle, KindLayerViolation, KindUnknownImport, KindHotspot}, want: 63},
		{name: "floors at zero", kinds: []Kind{KindCircularDependency, KindCircularDependency, KindCircularDependency, KindCircularDependency, KindCircularDependency, KindCircularDependency}, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var vs []Violation
			for _, k := range tc.kinds {
				vs = append(vs, New(k, "", ""))
			}
			assert.Equal(t, tc.want, Score(vs))
		})
	}
}

func TestGrade(t *testing.T) {
	assert.Equal(t, "A", Grade(100))
	assert.Equal(t, "A", Grade(90))
	assert.Equal(t, "B", Grade(89))
	assert.Equal(t, "C", Grade(70))
	assert.Equal(t, "D", Grade(60))
	assert.Equal(t, "F", Grade(0))
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, Critical, SeverityOf(KindCircularDependency))
	assert.Equal(t, High, SeverityOf(KindMissingStructure))
	assert.Equal(t, Low, SeverityOf(KindHotspot))
	assert.Equal(t, Medium, SeverityOf(Kind("something-else")))
}

func TestSuggestions(t *testing.T) {
	assert.Empty(t, Suggestions(nil))

	got := Suggestions([]Violation{
		New(KindHotspot, "a", ""),
		New(KindCircularDependency, "b", ""),
		New(KindCircularDependency, "c", ""),
	})
	assert.Equal(t, []string{
		"Consider restructuring layers to eliminate circular dependencies",
		"Use dependency injection or events to break circular references",
		"Break down modules with high fan-out into smaller, focused modules",
	}, got)
}

func sampleReport() *Report {
	r := &Report{RunID: "run-1", Root: "/proj", Layers: []string{"core", "ui"}}
	r.Add(
		New(KindLayerViolation, "core -> ui", "Core layer cannot depend on other layers"),
		New(KindHotspot, "ui:app", "Fan-out 4 reaches the hotspot threshold 3"),
	)
	r.Finalize()
	return r
}

func TestReport_Finalize(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, 88, r.Score)
	assert.Equal(t, "B", r.Grade)
	assert.True(t, r.HasErrors())
	assert.Len(t, r.Errors(), 1)
	assert.Len(t, r.Warnings(), 1)

	empty := &Report{}
	empty.Finalize()
	assert.Equal(t, 100, empty.Score)
	assert.False(t, empty.HasErrors())
	assert.NotNil(t, empty.Violations)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["runId"])
	assert.EqualValues(t, 88, decoded["score"])
	violations := decoded["violations"].([]any)
	require.Len(t, violations, 2)
	first := violations[0].(map[string]any)
	assert.Equal(t, "layer-violation", first["type"])
	assert.Equal(t, "high", first["severity"])
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "HEA Architecture Report")
	assert.Contains(t, out, "Score: 88 (B)")
	assert.Contains(t, out, "Errors (1):")
	assert.Contains(t, out, "[high] layer-violation: Core layer cannot depend on other layers (core -> ui)")
	assert.Contains(t, out, "Warnings (1):")
	assert.Contains(t, out, "Suggestions:")
	assert.NotContains(t, out, "\x1b[", "a buffer is not a terminal")
}

func TestWriteText_Clean(t *testing.T) {
	r := &Report{Root: "/proj"}
	r.Finalize()

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	assert.Contains(t, buf.String(), "No violations found.")
	assert.NotContains(t, buf.String(), "Suggestions:")
}
