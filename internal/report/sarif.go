package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

// toolName is the SARIF driver name.
const toolName = "heacheck"

var kindDescriptions = []struct {
	kind Kind
	text string
}{
	{KindCircularDependency, "Layers must not depend on each other in a cycle"},
	{KindLayerViolation, "Dependencies and imports must follow the layer hierarchy"},
	{KindUnknownImport, "Imports must resolve to a declared layer"},
	{KindMissingStructure, "Layers need a pipe directory and index files"},
	{KindPipeDependency, "Pipes must depend only on registered pipes in allowed layers"},
	{KindGraphCycle, "Modules must not import each other in a cycle"},
	{KindHotspot, "Modules should not fan out to many targets"},
}

// sarifLevel maps a severity to a SARIF result level.
func sarifLevel(s Severity) string {
	switch s {
	case Critical, High:
		return "error"
	case Medium:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes r as a SARIF 2.1.0 log with one rule per violation
// kind. Results point at the manifest of the layer they concern when it is
// known, and always carry the violation location as a logical location.
func WriteSARIF(w io.Writer, r *Report) error {
	log, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF log: %w", err)
	}

	version := r.Version
	if version == "" {
		version = "dev"
	}
	run := sarif.NewRun(sarif.Tool{Driver: sarif.NewVersionedDriver(toolName, version)})
	for _, d := range kindDescriptions {
		run.AddRule(string(d.kind)).
			WithDescription(d.text).
			WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(sarifLevel(SeverityOf(d.kind))))
	}

	for _, v := range r.Violations {
		res := run.CreateResultForRule(string(v.Kind)).
			WithLevel(sarifLevel(v.Severity)).
			WithMessage(sarif.NewTextMessage(v.Message))

		loc := sarif.NewLocation()
		if file := r.Manifests[r.LayerOf(v.Location)]; file != "" {
			loc.WithPhysicalLocation(sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(file)))
		}
		if v.Location != "" {
			loc.AddLogicalLocations(sarif.NewLogicalLocation().
				WithFullyQualifiedName(v.Location).
				WithKind("module"))
		}
		res.AddLocation(loc)
	}

	log.AddRun(run)
	if err := log.PrettyWrite(w); err != nil {
		return fmt.Errorf("failed to encode SARIF log: %w", err)
	}
	_, err = io.WriteString(w, "\n")
	return err
}
