package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vk/heacheck/internal/depgraph"
	"github.com/vk/heacheck/internal/layergraph"
)

// Analysis carries the graph figures of a run.
type Analysis struct {
	Graph      layergraph.Metrics                `json:"graph"`
	Complexity depgraph.Metrics                  `json:"complexity"`
	Cohesion   map[string]float64                `json:"cohesion"`
	Coupling   map[string]depgraph.LayerCoupling `json:"coupling"`
	Hotspots   []string                          `json:"hotspots"`
	Order      []string                          `json:"order,omitempty"`
}

// Report is the outcome of one check run. Manifests maps each layer to its
// manifest file, relative to Root.
type Report struct {
	RunID       string            `json:"runId"`
	Version     string            `json:"version,omitempty"`
	Root        string            `json:"root"`
	Layers      []string          `json:"layers"`
	Manifests   map[string]string `json:"manifests,omitempty"`
	Violations  []Violation       `json:"violations"`
	Score       int               `json:"score"`
	Grade       string            `json:"grade"`
	Suggestions []string          `json:"suggestions"`
	Analysis    Analysis          `json:"analysis"`
}

// Add appends violations.
func (r *Report) Add(vs ...Violation) {
	r.Violations = append(r.Violations, vs...)
}

// Finalize computes the score, grade and suggestions from the violations.
func (r *Report) Finalize() {
	if r.Violations == nil {
		r.Violations = []Violation{}
	}
	r.Score = Score(r.Violations)
	r.Grade = Grade(r.Score)
	r.Suggestions = Suggestions(r.Violations)
}

// Errors returns the violations that fail the run.
func (r *Report) Errors() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.IsError() {
			out = append(out, v)
		}
	}
	return out
}

// Warnings returns the low severity violations.
func (r *Report) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if !v.IsError() {
			out = append(out, v)
		}
	}
	return out
}

// LayerOf returns the layer a violation location refers to, or "" when the
// location names no known layer. Locations have the forms "layer",
// "layer:module" and "from -> to"; the source side is used.
func (r *Report) LayerOf(location string) string {
	from, _, _ := strings.Cut(location, " -> ")
	name, _, _ := strings.Cut(from, ":")
	if slices.Contains(r.Layers, name) {
		return name
	}
	return ""
}

// HasErrors reports whether any violation fails the run.
func (r *Report) HasErrors() bool {
	return slices.ContainsFunc(r.Violations, Violation.IsError)
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

type styles struct {
	title, ok, warn, bad, dim lipgloss.Style
	severity                  map[Severity]lipgloss.Style
}

func newStyles(w io.Writer) styles {
	re := lipgloss.NewRenderer(w)
	s := styles{
		title: re.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		ok:    re.NewStyle().Foreground(lipgloss.Color("42")),
		warn:  re.NewStyle().Foreground(lipgloss.Color("214")),
		bad:   re.NewStyle().Foreground(lipgloss.Color("196")),
		dim:   re.NewStyle().Foreground(lipgloss.Color("241")),
	}
	s.severity = map[Severity]lipgloss.Style{
		Critical: s.bad.Bold(true),
		High:     s.bad,
		Medium:   s.warn,
		Low:      s.dim,
	}
	return s
}

func (s styles) grade(g string) lipgloss.Style {
	switch g {
	case "A", "B":
		return s.ok
	case "C", "D":
		return s.warn
	default:
		return s.bad
	}
}

// WriteText writes a human readable summary of r. Colours are applied only
// when w is a terminal that supports them.
func WriteText(w io.Writer, r *Report) error {
	s := newStyles(w)
	var b strings.Builder

	fmt.Fprintln(&b, s.title.Render("HEA Architecture Report"))
	fmt.Fprintf(&b, "%s %s\n", s.dim.Render("Root:"), r.Root)
	fmt.Fprintf(&b, "%s %d\n", s.dim.Render("Layers:"), len(r.Layers))
	fmt.Fprintf(&b, "%s %d nodes, %d edges (%d invalid), %d cycles\n",
		s.dim.Render("Graph:"), r.Analysis.Graph.Nodes, r.Analysis.Graph.Edges,
		r.Analysis.Graph.InvalidEdges, r.Analysis.Graph.Cycles)
	fmt.Fprintf(&b, "%s %s\n", s.dim.Render("Score:"),
		s.grade(r.Grade).Render(fmt.Sprintf("%d (%s)", r.Score, r.Grade)))

	errs, warns := r.Errors(), r.Warnings()
	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(&b, s.ok.Render("No violations found."))
	}
	if len(errs) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.bad.Render(fmt.Sprintf("Errors (%d):", len(errs))))
		writeViolations(&b, s, errs)
	}
	if len(warns) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.warn.Render(fmt.Sprintf("Warnings (%d):", len(warns))))
		writeViolations(&b, s, warns)
	}
	if len(r.Suggestions) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.title.Render("Suggestions:"))
		for _, sg := range r.Suggestions {
			fmt.Fprintf(&b, "  - %s\n", sg)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeViolations(b *strings.Builder, s styles, vs []Violation) {
	for _, v := range vs {
		sev := s.severity[v.Severity].Render(fmt.Sprintf("[%s]", v.Severity))
		fmt.Fprintf(b, "  %s %s: %s", sev, v.Kind, v.Message)
		if v.Location != "" {
			fmt.Fprintf(b, " %s", s.dim.Render("("+v.Location+")"))
		}
		b.WriteByte('\n')
	}
}
