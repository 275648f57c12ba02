package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/heacheck/internal/layer"
)

type hclRoot struct {
	Layers []*hclLayer `hcl:"layer,block"`
}

type hclLayer struct {
	Name         string       `hcl:"name,label"`
	Type         string       `hcl:"type"`
	Version      string       `hcl:"version,optional"`
	Dependencies []string     `hcl:"dependencies,optional"`
	Exports      []string     `hcl:"exports,optional"`
	Modules      []*hclModule `hcl:"module,block"`
}

type hclModule struct {
	Name    string   `hcl:"name,label"`
	Imports []string `hcl:"imports,optional"`
}

// typeEvalContext lets manifests name layer types without quotes.
func typeEvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(layer.Types))
	for _, t := range layer.Types {
		vars[string(t)] = cty.StringVal(string(t))
	}
	return &hcl.EvalContext{Variables: vars}
}

func decodeHCL(parser *hclparse.Parser, path string) ([]rawLayer, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, typeEvalContext(), &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	out := make([]rawLayer, 0, len(root.Layers))
	for _, l := range root.Layers {
		raw := rawLayer{
			Name:         l.Name,
			Type:         l.Type,
			Version:      l.Version,
			Dependencies: l.Dependencies,
			Exports:      l.Exports,
		}
		for _, m := range l.Modules {
			raw.Modules = append(raw.Modules, layer.ModuleConfig{Name: m.Name, Imports: m.Imports})
		}
		out = append(out, raw)
	}
	return out, nil
}
