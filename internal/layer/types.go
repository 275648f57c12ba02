package layer

import (
	"math"
	"strings"
)

// Type is the classification of a layer.
type Type string

const (
	Core           Type = "core"
	Shared         Type = "shared"
	Themes         Type = "themes"
	Infrastructure Type = "infrastructure"
)

// Types lists the known layer types in hierarchy order.
var Types = []Type{Core, Shared, Themes, Infrastructure}

// unknownLevel ranks unmapped types below everything else.
const unknownLevel = math.MaxInt

var hierarchy = map[Type]int{
	Core:           0,
	Shared:         1,
	Themes:         2,
	Infrastructure: 2,
}

// Level returns the hierarchy level of t. Unknown types report math.MaxInt.
func (t Type) Level() int {
	if lvl, ok := hierarchy[t]; ok {
		return lvl
	}
	return unknownLevel
}

// Known reports whether t is one of the four layer types.
func (t Type) Known() bool {
	_, ok := hierarchy[t]
	return ok
}

// ParseType converts a case-insensitive name into a Type. The second return
// value is false for names outside the known set.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Known()
}

// ModuleConfig is a module declared inside a layer together with the import
// specifiers it uses.
type ModuleConfig struct {
	Name    string   `json:"name" yaml:"name"`
	Imports []string `json:"imports,omitempty" yaml:"imports"`
}

// Config describes one physical layer or module. Name is unique within a
// validation run.
type Config struct {
	Name         string         `json:"name"`
	Type         Type           `json:"type"`
	Path         string         `json:"path"`
	Dependencies []Type         `json:"dependencies"`
	Exports      []string       `json:"exports"`
	Version      string         `json:"version"`
	Modules      []ModuleConfig `json:"modules,omitempty"`
}

// DependencyType is the kind of a dependency edge.
type DependencyType string

const (
	// DependencyImport is a runtime dependency: a module import or a
	// layer's declared dependency on a layer type.
	DependencyImport DependencyType = "import"
	DependencyExport DependencyType = "export"
	// DependencyPipe links two registered pipes.
	DependencyPipe DependencyType = "pipe"
	// DependencyTypeRef is a type-only import.
	DependencyTypeRef DependencyType = "type"
)

// DependencyInfo is the result of validating the edge From -> To. Reason is
// set iff Valid is false.
type DependencyInfo struct {
	From   string         `json:"from"`
	To     string         `json:"to"`
	Type   DependencyType `json:"type"`
	Valid  bool           `json:"valid"`
	Reason string         `json:"reason,omitempty"`
}

// StructureResult is the outcome of ValidateStructure.
type StructureResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// CircularResult is the outcome of CheckCircularDependencies.
type CircularResult struct {
	HasCircular bool       `json:"hasCircular"`
	Cycles      [][]string `json:"cycles"`
}

// ImportResult is the outcome of ValidateImport.
type ImportResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
