package manifest

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/heacheck/internal/ctxlog"
	"github.com/vk/heacheck/internal/fsutil"
	"github.com/vk/heacheck/internal/layer"
)

var (
	// DefaultIncludes selects manifest files anywhere under the root.
	DefaultIncludes = []string{"**/layer.{hcl,yaml,yml}"}

	// DefaultExcludes skips vendored, VCS and build output directories.
	DefaultExcludes = []string{"**/node_modules/**", "**/.git/**", "**/dist/**"}
)

// rawLayer is the format-independent shape both decoders produce.
type rawLayer struct {
	Name         string               `yaml:"name"`
	Type         string               `yaml:"type"`
	Version      string               `yaml:"version"`
	Dependencies []string             `yaml:"dependencies"`
	Exports      []string             `yaml:"exports"`
	Modules      []layer.ModuleConfig `yaml:"modules"`
}

// Loader discovers and decodes manifests.
type Loader struct {
	includes []string
	excludes []string
}

// NewLoader creates a Loader. Empty includes fall back to DefaultIncludes and
// nil excludes to DefaultExcludes; pass an empty non-nil slice to disable
// excludes.
func NewLoader(includes, excludes []string) *Loader {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	if excludes == nil {
		excludes = DefaultExcludes
	}
	return &Loader{includes: includes, excludes: excludes}
}

// Result holds the decoded layers and the manifest each one came from.
type Result struct {
	Layers map[string]layer.Config
	Files  map[string]string
}

// Names returns the layer names in sorted order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Layers))
	for n := range r.Layers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Load finds every manifest under root and decodes it. A layer name declared
// twice yields an error wrapping ErrDuplicateLayer.
func (l *Loader) Load(ctx context.Context, root string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Manifest discovery started.", "root", root, "includes", l.includes, "excludes", l.excludes)

	files, err := fsutil.FindFiles(root, l.includes, l.excludes)
	if err != nil {
		return nil, fmt.Errorf("failed to discover manifests under %s: %w", root, err)
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	res := &Result{
		Layers: make(map[string]layer.Config),
		Files:  make(map[string]string),
	}
	parser := hclparse.NewParser()
	for _, file := range files {
		cfgs, err := decodeFile(parser, file)
		if err != nil {
			return nil, err
		}
		for _, cfg := range cfgs {
			if prev, dup := res.Files[cfg.Name]; dup {
				return nil, fmt.Errorf("%w: layer %q is declared in %s and %s", ErrDuplicateLayer, cfg.Name, prev, file)
			}
			res.Layers[cfg.Name] = cfg
			res.Files[cfg.Name] = file
			logger.Debug("Layer loaded.", "layer", cfg.Name, "type", cfg.Type, "file", file)
		}
	}

	logger.Info("Manifests loaded.", "files", len(files), "layers", len(res.Layers))
	return res, nil
}

// LoadFile decodes a single manifest.
func LoadFile(path string) ([]layer.Config, error) {
	return decodeFile(hclparse.NewParser(), path)
}

func decodeFile(parser *hclparse.Parser, path string) ([]layer.Config, error) {
	var (
		raws []rawLayer
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl":
		raws, err = decodeHCL(parser, path)
	case ".yaml", ".yml":
		raws, err = decodeYAML(path)
	default:
		return nil, fmt.Errorf("%w: unsupported manifest extension %q in %s", ErrInvalidManifest, ext, path)
	}
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	cfgs := make([]layer.Config, 0, len(raws))
	for _, raw := range raws {
		cfg, err := raw.toConfig(dir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func (r rawLayer) toConfig(dir string) (layer.Config, error) {
	if strings.TrimSpace(r.Name) == "" {
		return layer.Config{}, fmt.Errorf("%w: layer name is required", ErrInvalidManifest)
	}
	t, ok := layer.ParseType(r.Type)
	if !ok {
		return layer.Config{}, fmt.Errorf("%w: layer %q has unknown type %q", ErrInvalidManifest, r.Name, r.Type)
	}

	deps := make([]layer.Type, 0, len(r.Dependencies))
	for _, d := range r.Dependencies {
		dt, ok := layer.ParseType(d)
		if !ok {
			return layer.Config{}, fmt.Errorf("%w: layer %q depends on unknown type %q", ErrInvalidManifest, r.Name, d)
		}
		deps = append(deps, dt)
	}

	for _, m := range r.Modules {
		if strings.TrimSpace(m.Name) == "" {
			return layer.Config{}, fmt.Errorf("%w: layer %q has a module without a name", ErrInvalidManifest, r.Name)
		}
	}

	exports := r.Exports
	if exports == nil {
		exports = []string{}
	}
	return layer.Config{
		Name:         r.Name,
		Type:         t,
		Path:         dir,
		Dependencies: deps,
		Exports:      exports,
		Version:      r.Version,
		Modules:      r.Modules,
	}, nil
}
