package layer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultIndexFiles are the entry-point file names accepted by ValidateStructure.
var DefaultIndexFiles = []string{"index.ts", "index.js"}

// Validator applies the HEA layering rules. The zero value is not usable;
// create one with New.
type Validator struct {
	indexFiles []string
}

// Option configures a Validator.
type Option func(*Validator)

// WithIndexFiles overrides the entry-point file names checked by
// ValidateStructure. The first name is used in error messages.
func WithIndexFiles(names ...string) Option {
	return func(v *Validator) {
		if len(names) > 0 {
			v.indexFiles = slices.Clone(names)
		}
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{indexFiles: slices.Clone(DefaultIndexFiles)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateDependencies checks whether from may depend on to. The first
// matching rule decides the outcome.
func (v *Validator) ValidateDependencies(from, to Config) DependencyInfo {
	info := DependencyInfo{
		From: from.Name,
		To:   to.Name,
		Type: DependencyImport,
	}

	switch {
	case from.Type == Core && to.Type != Core:
		info.Reason = "Core layer cannot depend on other layers"
	case from.Type == Shared && to.Type != Core && to.Type != Shared:
		info.Reason = "Shared layer can only depend on Core layer"
	case isThemesInfraPair(from.Type, to.Type):
		info.Reason = "Themes and Infrastructure layers cannot depend on each other"
	case from.Type.Level() < to.Type.Level():
		info.Reason = fmt.Sprintf("%s cannot depend on %s (violates hierarchy)", from.Type, to.Type)
	default:
		info.Valid = true
	}

	return info
}

func isThemesInfraPair(a, b Type) bool {
	return (a == Themes && b == Infrastructure) || (a == Infrastructure && b == Themes)
}

// ValidateStructure checks the on-disk layout of a layer directory: a pipe
// subdirectory, a top-level index file and a pipe index file. All checks
// run; the result lists every failure. Filesystem errors other than a
// missing entry are returned unchanged.
func (v *Validator) ValidateStructure(layerPath string) (StructureResult, error) {
	var errs []string

	pipeDir := filepath.Join(layerPath, "pipe")
	ok, err := isDir(pipeDir)
	if err != nil {
		return StructureResult{}, err
	}
	if !ok {
		errs = append(errs, fmt.Sprintf("Missing pipe directory: %s", pipeDir))
	}

	ok, err = v.hasIndex(layerPath)
	if err != nil {
		return StructureResult{}, err
	}
	if !ok {
		errs = append(errs, fmt.Sprintf("Missing %s in %s", v.indexFiles[0], layerPath))
	}

	ok, err = v.hasIndex(pipeDir)
	if err != nil {
		return StructureResult{}, err
	}
	if !ok {
		errs = append(errs, fmt.Sprintf("Missing pipe/%s in %s", v.indexFiles[0], layerPath))
	}

	return StructureResult{Valid: len(errs) == 0, Errors: errs}, nil
}

func (v *Validator) hasIndex(dir string) (bool, error) {
	for _, name := range v.indexFiles {
		ok, err := isFile(filepath.Join(dir, name))
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// CheckCircularDependencies looks for cycles among layers, where a declared
// dependency on type T is an edge to every layer of type T, including the
// declaring layer itself. Two layers of the same type that both depend on
// that type therefore form a cycle even if neither names the other.
//
// The traversal keeps a global visited set and a path-local recursion
// stack. The path is copied for every recursive call, so a cycle can be
// reported more than once when reached from different entry points. Each
// cycle runs from the first occurrence of the repeated layer and ends with
// the repeated layer.
func (v *Validator) CheckCircularDependencies(layers map[string]Config) CircularResult {
	names := sortedNames(layers)
	visited := make(map[string]bool, len(layers))
	stack := make(map[string]bool, len(layers))
	cycles := [][]string{}

	var dfs func(name string, path []string)
	dfs = func(name string, path []string) {
		visited[name] = true
		stack[name] = true
		path = append(path, name)

		for _, depType := range layers[name].Dependencies {
			for _, target := range names {
				if layers[target].Type != depType {
					continue
				}
				if stack[target] {
					start := slices.Index(path, target)
					cycle := append(slices.Clone(path[start:]), target)
					cycles = append(cycles, cycle)
					continue
				}
				if !visited[target] {
					dfs(target, slices.Clone(path))
				}
			}
		}

		stack[name] = false
	}

	for _, name := range names {
		if !visited[name] {
			dfs(name, nil)
		}
	}

	return CircularResult{HasCircular: len(cycles) > 0, Cycles: cycles}
}

// ValidateImport resolves an import specifier to a target layer and
// validates the dependency from fromLayer to it.
//
//	@core/...          first core layer
//	@shared/...        first shared layer
//	@themes/<name>/... the layer registered as <name>
//
// "First" follows layer name order.
func (v *Validator) ValidateImport(importPath string, fromLayer Config, layers map[string]Config) ImportResult {
	target, ok := ResolveImport(importPath, layers)
	if !ok {
		return ImportResult{Valid: false, Reason: "Unknown import target"}
	}

	info := v.ValidateDependencies(fromLayer, target)
	return ImportResult{Valid: info.Valid, Reason: info.Reason}
}

// ResolveImport returns the layer an import specifier points at.
func ResolveImport(importPath string, layers map[string]Config) (Config, bool) {
	switch {
	case strings.HasPrefix(importPath, "@core/"):
		return firstOfType(layers, Core)
	case strings.HasPrefix(importPath, "@shared/"):
		return firstOfType(layers, Shared)
	case strings.HasPrefix(importPath, "@themes/"):
		rest := strings.TrimPrefix(importPath, "@themes/")
		name, _, _ := strings.Cut(rest, "/")
		if name == "" {
			return Config{}, false
		}
		cfg, ok := layers[name]
		return cfg, ok
	}
	return Config{}, false
}

func firstOfType(layers map[string]Config, t Type) (Config, bool) {
	for _, name := range sortedNames(layers) {
		if layers[name].Type == t {
			return layers[name], true
		}
	}
	return Config{}, false
}

func sortedNames(layers map[string]Config) []string {
	names := make([]string, 0, len(layers))
	for name := range layers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
