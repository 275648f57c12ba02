package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/heacheck/internal/ctxlog"
	"github.com/vk/heacheck/internal/depgraph"
	"github.com/vk/heacheck/internal/layer"
	"github.com/vk/heacheck/internal/layergraph"
	"github.com/vk/heacheck/internal/manifest"
	"github.com/vk/heacheck/internal/pipe"
	"github.com/vk/heacheck/internal/report"
)

// Stage names. Each stage is registered as a pipe under its name.
const (
	StageLoad         = "load"
	StageStructure    = "structure"
	StageDependencies = "dependencies"
	StageImports      = "imports"
	StageCircular     = "circular"
	StageGraphs       = "graphs"
	StageAnalyse      = "analyse"
	StageReport       = "report"
)

// runState is threaded through every stage of one check run.
type runState struct {
	cfg       *Config
	validator *layer.Validator

	layers map[string]layer.Config
	names  []string

	layerDeps []layer.DependencyInfo
	imports   []layer.DependencyInfo

	builder *layergraph.Builder
	graph   *depgraph.Graph

	report *report.Report
}

type stage = pipe.Pipe[*runState, *runState]

func requireLayers(st *runState) pipe.ValidationResult {
	if st.layers == nil {
		return pipe.Invalid(pipe.FieldError{Field: "layers", Message: "manifests have not been loaded", Code: "NOT_LOADED"})
	}
	return pipe.Valid()
}

func requireGraphs(st *runState) pipe.ValidationResult {
	if st.builder == nil || st.graph == nil {
		return pipe.Invalid(pipe.FieldError{Field: "graph", Message: "graphs have not been built", Code: "NOT_BUILT"})
	}
	return pipe.Valid()
}

// newStageRegistry registers the check stages. The layer of each stage only
// serves the layering check of the stage wiring itself.
func newStageRegistry(skipStructure bool) *pipe.Registry {
	reg := pipe.NewRegistry()
	add := func(name string, l layer.Type, desc string, exec pipe.Executor[*runState, *runState], v pipe.Validator[*runState], deps ...string) {
		b := pipe.NewBuilder[*runState, *runState]().
			WithName(name).
			WithVersion(Version).
			WithLayer(string(l)).
			WithDescription(desc).
			WithExecutor(exec)
		if v != nil {
			b.WithValidator(v)
		}
		for _, d := range deps {
			b.WithDependency(d)
		}
		reg.MustRegister(name, b.MustBuild())
	}

	add(StageLoad, layer.Core, "Discover and decode layer manifests", loadStage, nil)
	add(StageDependencies, layer.Shared, "Validate declared layer dependencies", dependenciesStage, requireLayers, StageLoad)
	add(StageImports, layer.Shared, "Validate module imports", importsStage, requireLayers, StageLoad)
	add(StageCircular, layer.Shared, "Detect circular layer dependencies", circularStage, requireLayers, StageLoad)
	add(StageGraphs, layer.Shared, "Build the layer and module graphs", graphsStage, requireLayers, StageDependencies, StageImports)
	add(StageAnalyse, layer.Themes, "Analyse the module graph", analyseStage, requireGraphs, StageGraphs, StageCircular)

	reportDeps := []string{StageAnalyse}
	if !skipStructure {
		add(StageStructure, layer.Shared, "Check required layer files", structureStage, requireLayers, StageLoad)
		reportDeps = append(reportDeps, StageStructure)
	}
	add(StageReport, layer.Themes, "Score the findings", reportStage, requireGraphs, reportDeps...)

	return reg
}

func loadStage(ctx context.Context, st *runState) (*runState, error) {
	res, err := manifest.NewLoader(st.cfg.Includes, st.cfg.Excludes).Load(ctx, st.cfg.Root)
	if err != nil {
		return nil, err
	}
	st.layers = res.Layers
	st.names = res.Names()
	st.report.Layers = st.names
	st.report.Manifests = make(map[string]string, len(res.Files))
	for name, file := range res.Files {
		if rel, err := filepath.Rel(st.cfg.Root, file); err == nil {
			file = rel
		}
		st.report.Manifests[name] = filepath.ToSlash(file)
	}
	return st, nil
}

func structureStage(ctx context.Context, st *runState) (*runState, error) {
	logger := ctxlog.FromContext(ctx)
	for _, name := range st.names {
		cfg := st.layers[name]
		res, err := st.validator.ValidateStructure(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to check structure of layer %s: %w", name, err)
		}
		for _, msg := range res.Errors {
			st.report.Add(report.New(report.KindMissingStructure, name, msg))
		}
		logger.Debug("Layer structure checked.", "layer", name, "valid", res.Valid)
	}
	return st, nil
}

func layersOfType(st *runState, t layer.Type, except string) []layer.Config {
	var out []layer.Config
	for _, name := range st.names {
		if cfg := st.layers[name]; cfg.Type == t && name != except {
			out = append(out, cfg)
		}
	}
	return out
}

func dependenciesStage(_ context.Context, st *runState) (*runState, error) {
	for _, name := range st.names {
		from := st.layers[name]
		for _, dt := range from.Dependencies {
			targets := layersOfType(st, dt, name)
			if len(targets) == 0 {
				// No layer of that type exists; still judge the declaration.
				info := st.validator.ValidateDependencies(from, layer.Config{Name: string(dt), Type: dt})
				if !info.Valid {
					st.report.Add(report.New(report.KindLayerViolation, name+" -> "+string(dt), info.Reason))
				}
				continue
			}
			for _, to := range targets {
				info := st.validator.ValidateDependencies(from, to)
				st.layerDeps = append(st.layerDeps, info)
				if !info.Valid {
					st.report.Add(report.New(report.KindLayerViolation, info.From+" -> "+info.To, info.Reason))
				}
			}
		}
	}
	return st, nil
}

func importsStage(_ context.Context, st *runState) (*runState, error) {
	for _, name := range st.names {
		from := st.layers[name]
		for _, m := range from.Modules {
			src := layergraph.ModuleID(name, m.Name)
			for _, imp := range m.Imports {
				res := st.validator.ValidateImport(imp, from, st.layers)
				target, ok := layer.ResolveImport(imp, st.layers)
				if !ok {
					st.report.Add(report.New(report.KindUnknownImport, src, fmt.Sprintf("%s: %s", res.Reason, imp)))
					continue
				}
				info := layer.DependencyInfo{
					From:   src,
					To:     importTarget(imp, target),
					Type:   layer.DependencyImport,
					Valid:  res.Valid,
					Reason: res.Reason,
				}
				st.imports = append(st.imports, info)
				if !info.Valid {
					st.report.Add(report.New(report.KindLayerViolation, info.From+" -> "+info.To,
						fmt.Sprintf("%s (import %s)", info.Reason, imp)))
				}
			}
		}
	}
	return st, nil
}

// importTarget returns the module node an import points at when the segment
// after the layer prefix names a module of target, and the layer node
// otherwise.
func importTarget(importPath string, target layer.Config) string {
	_, rest, _ := strings.Cut(importPath, "/")
	if strings.HasPrefix(importPath, "@themes/") {
		_, rest, _ = strings.Cut(rest, "/")
	}
	seg, _, _ := strings.Cut(rest, "/")
	for _, m := range target.Modules {
		if m.Name == seg {
			return layergraph.ModuleID(target.Name, seg)
		}
	}
	return target.Name
}

func circularStage(_ context.Context, st *runState) (*runState, error) {
	res := st.validator.CheckCircularDependencies(st.layers)
	for _, cycle := range res.Cycles {
		st.report.Add(report.New(report.KindCircularDependency, cycle[0],
			"Circular dependency detected: "+depgraph.Path(cycle)))
	}
	return st, nil
}

// pipeModule is the module name of a layer's public gateway. It counts as
// abstract in the layer metrics.
const pipeModule = "pipe"

func graphsStage(ctx context.Context, st *runState) (*runState, error) {
	b := layergraph.NewBuilder()
	g := depgraph.New()
	for _, name := range st.names {
		cfg := st.layers[name]
		attrs := depgraph.Attrs{depgraph.LayerAttr: string(cfg.Type)}
		b.AddLayer(cfg)
		g.AddNode(name, attrs)
		for _, m := range cfg.Modules {
			b.AddModule(name, m.Name, cfg.Type)
			mattrs := attrs
			if m.Name == pipeModule {
				mattrs = depgraph.Attrs{depgraph.LayerAttr: string(cfg.Type), depgraph.AbstractAttr: true}
			}
			g.AddNode(layergraph.ModuleID(name, m.Name), mattrs)
		}
	}
	for _, info := range st.layerDeps {
		b.AddDependency(info)
	}
	for _, info := range st.imports {
		b.AddDependency(info)
		g.AddEdge(info.From, info.To)
	}
	st.builder, st.graph = b, g

	ctxlog.FromContext(ctx).Debug("Graphs built.", "nodes", g.NodeCount(), "module_edges", g.EdgeCount())
	return st, nil
}

func analyseStage(_ context.Context, st *runState) (*runState, error) {
	g := st.graph
	metrics := g.CalculateMetrics()
	hotspots := g.IdentifyHotspots(st.cfg.HotspotThreshold)
	for _, id := range hotspots {
		st.report.Add(report.New(report.KindHotspot, id,
			fmt.Sprintf("Fan-out %d reaches the hotspot threshold %d", metrics.FanOut[id], st.cfg.HotspotThreshold)))
	}
	for _, cycle := range depgraph.DeduplicateCycles(g.FindCycles()) {
		st.report.Add(report.New(report.KindGraphCycle, cycle[0], "Import cycle detected: "+depgraph.Path(cycle)))
	}

	st.report.Analysis.Complexity = metrics
	st.report.Analysis.Cohesion = g.CalculateLayerCohesion()
	st.report.Analysis.Coupling = g.CalculateLayerCoupling()
	st.report.Analysis.Hotspots = hotspots
	if order, ok := g.TopologicalSort(); ok {
		st.report.Analysis.Order = order
	}
	return st, nil
}

func reportStage(ctx context.Context, st *runState) (*runState, error) {
	st.report.Analysis.Graph = st.builder.Metrics()
	st.report.Finalize()
	ctxlog.FromContext(ctx).Info("Check complete.",
		"layers", len(st.names),
		"errors", len(st.report.Errors()),
		"warnings", len(st.report.Warnings()),
		"score", st.report.Score,
	)
	return st, nil
}
