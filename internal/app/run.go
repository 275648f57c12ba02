package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/vk/heacheck/internal/ctxlog"
	"github.com/vk/heacheck/internal/depgraph"
	"github.com/vk/heacheck/internal/layergraph"
	"github.com/vk/heacheck/internal/report"
	"github.com/vk/heacheck/internal/watch"
)

// ErrViolations is returned by Run when the report contains errors.
var ErrViolations = errors.New("architecture violations found")

// Graph output formats accepted by WriteGraph.
const (
	FormatDot       = "dot"
	FormatMermaid   = "mermaid"
	FormatModuleDot = "module-dot"
)

// Result is the outcome of one check run. Graph and Modules are nil when the
// stage wiring was rejected before any stage ran.
type Result struct {
	Report  *report.Report
	Graph   *layergraph.Builder
	Modules *depgraph.Graph
}

// planStages validates the stage registry and returns the execution order.
// Wiring problems come back as pipe-dependency violations.
func (a *App) planStages() ([]string, []report.Violation) {
	var vs []report.Violation
	for _, msg := range a.stages.ValidateDependencies().Errors {
		vs = append(vs, report.New(report.KindPipeDependency, "stages", msg))
	}
	for _, info := range a.stages.ValidateLayering(a.validator) {
		if !info.Valid {
			vs = append(vs, report.New(report.KindPipeDependency, info.From+" -> "+info.To, info.Reason))
		}
	}
	if len(vs) > 0 {
		return nil, vs
	}

	g := depgraph.New()
	for _, name := range a.stages.List() {
		g.AddNode(name, nil)
		meta, _ := a.stages.Metadata(name)
		for _, dep := range meta.Dependencies {
			g.AddEdge(dep, name)
		}
	}
	order, ok := g.TopologicalSort()
	if !ok {
		for _, cycle := range depgraph.DeduplicateCycles(g.FindCycles()) {
			vs = append(vs, report.New(report.KindPipeDependency, cycle[0], "Stage dependency cycle: "+depgraph.Path(cycle)))
		}
		return nil, vs
	}
	return order, nil
}

// Check runs every registered stage once, in dependency order, and returns
// the findings. Errors are reserved for failures to perform the check, such
// as unreadable manifests.
func (a *App) Check(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "run_id", runID)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Check started.", "root", a.config.Root)

	st := &runState{
		cfg:       a.config,
		validator: a.validator,
		report:    &report.Report{RunID: runID, Version: Version, Root: a.config.Root},
	}

	order, violations := a.planStages()
	if len(violations) > 0 {
		logger.Error("Stage wiring is invalid.", "violations", len(violations))
		st.report.Add(violations...)
		st.report.Finalize()
		return &Result{Report: st.report}, nil
	}
	logger.Debug("Stage order resolved.", "order", order)

	for _, name := range order {
		h, _ := a.stages.Get(name)
		s, ok := h.(*stage)
		if !ok {
			return nil, fmt.Errorf("stage %s has unexpected type %T", name, h)
		}
		logger.Debug("Running stage.", "stage", name)
		if _, err := s.Execute(ctx, st); err != nil {
			return nil, fmt.Errorf("stage %s failed: %w", name, err)
		}
	}
	if st.report.Grade == "" {
		st.report.Finalize()
	}

	return &Result{Report: st.report, Graph: st.builder, Modules: st.graph}, nil
}

// Run checks the root once, writes the report and any requested graph files,
// and returns ErrViolations when the report has errors. In watch mode it
// keeps re-checking on every change until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if !a.config.Watch {
		return a.runOnce(ctx)
	}

	if err := a.runOnce(ctx); err != nil && !errors.Is(err, ErrViolations) {
		a.logger.Error("Check failed.", "error", err)
	}

	cfg := watch.DefaultConfig()
	cfg.Debounce = a.config.Debounce
	cfg.Ignore = append(cfg.Ignore, a.config.Excludes...)
	for _, p := range []string{a.config.DotPath, a.config.MermaidPath} {
		if p != "" {
			cfg.Outputs = append(cfg.Outputs, p)
		}
	}
	w, err := watch.New(a.config.Root, cfg)
	if err != nil {
		return err
	}
	return w.Run(ctx, func(ctx context.Context, batch []watch.Event) {
		a.logger.Info("Change detected, re-running checks.", "events", len(batch), "first", batch[0].Path)
		if err := a.runOnce(ctx); err != nil && !errors.Is(err, ErrViolations) {
			a.logger.Error("Check failed.", "error", err)
		}
	})
}

func (a *App) runOnce(ctx context.Context) error {
	res, err := a.Check(ctx)
	if err != nil {
		return err
	}
	if err := a.writeOutputs(res); err != nil {
		return err
	}
	if res.Report.HasErrors() {
		return ErrViolations
	}
	return nil
}

func (a *App) writeOutputs(res *Result) error {
	if err := report.Write(a.outW, a.config.Output, res.Report); err != nil {
		return err
	}

	if res.Graph == nil {
		return nil
	}
	if a.config.DotPath != "" {
		if err := writeFile(a.config.DotPath, res.Graph.ToDot()); err != nil {
			return err
		}
	}
	if a.config.MermaidPath != "" {
		if err := writeFile(a.config.MermaidPath, res.Graph.ToMermaid()); err != nil {
			return err
		}
	}
	return nil
}

// writeFile leaves path untouched when it already holds content.
func writeFile(path, content string) error {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, []byte(content)) {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteGraph checks the root and writes one rendering of the graph to the
// output writer.
func (a *App) WriteGraph(ctx context.Context, format string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	res, err := a.Check(ctx)
	if err != nil {
		return err
	}
	if res.Graph == nil {
		return fmt.Errorf("graph unavailable: %d stage wiring violations", len(res.Report.Violations))
	}

	var out string
	switch format {
	case FormatDot:
		out = res.Graph.ToDot()
	case FormatMermaid:
		out = res.Graph.ToMermaid()
	case FormatModuleDot:
		out = res.Modules.ToDot()
	default:
		return fmt.Errorf("unknown graph format %q", format)
	}
	_, err = fmt.Fprint(a.outW, out)
	return err
}
