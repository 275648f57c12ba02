// Package report collects check violations, scores them and renders the
// result as styled text, JSON, Markdown, JUnit XML or SARIF.
package report

// Severity ranks a violation.
type Severity string

const (
	Critical Severity = "critical"
	High     Severity = "high"
	Medium   Severity = "medium"
	Low      Severity = "low"
)

// penalty is the score deduction per violation of each severity.
var penalty = map[Severity]int{
	Critical: 20,
	High:     10,
	Medium:   5,
	Low:      2,
}

// Kind names the check that produced a violation.
type Kind string

const (
	KindCircularDependency Kind = "circular-dependency"
	KindLayerViolation     Kind = "layer-violation"
	KindUnknownImport      Kind = "unknown-import"
	KindMissingStructure   Kind = "missing-structure"
	KindPipeDependency     Kind = "pipe-dependency"
	KindGraphCycle         Kind = "graph-cycle"
	KindHotspot            Kind = "hotspot"
)

var kindSeverity = map[Kind]Severity{
	KindCircularDependency: Critical,
	KindLayerViolation:     High,
	KindUnknownImport:      Medium,
	KindMissingStructure:   High,
	KindPipeDependency:     High,
	KindGraphCycle:         Critical,
	KindHotspot:            Low,
}

// SeverityOf returns the default severity of k. Unknown kinds are Medium.
func SeverityOf(k Kind) Severity {
	if s, ok := kindSeverity[k]; ok {
		return s
	}
	return Medium
}

// Violation is one finding.
type Violation struct {
	Kind     Kind     `json:"type"`
	Severity Severity `json:"severity"`
	Location string   `json:"location"`
	Message  string   `json:"message"`
}

// New builds a violation with the default severity of k.
func New(k Kind, location, message string) Violation {
	return Violation{Kind: k, Severity: SeverityOf(k), Location: location, Message: message}
}

// IsError reports whether v fails a run. Low severity findings are warnings.
func (v Violation) IsError() bool {
	return v.Severity != Low
}

// Score starts at 100 and deducts per violation: 20 critical, 10 high,
// 5 medium, 2 low. It never goes below 0.
func Score(vs []Violation) int {
	score := 100
	for _, v := range vs {
		score -= penalty[v.Severity]
	}
	return max(score, 0)
}

// Grade maps a score to a letter.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

var kindSuggestions = []struct {
	kind Kind
	text []string
}{
	{KindCircularDependency, []string{
		"Consider restructuring layers to eliminate circular dependencies",
		"Use dependency injection or events to break circular references",
	}},
	{KindGraphCycle, []string{
		"Break module import cycles by extracting the shared code into a lower layer",
	}},
	{KindLayerViolation, []string{
		"Move shared code down the hierarchy so higher layers depend on lower ones only",
		"Themes and infrastructure should communicate through core or shared contracts",
	}},
	{KindUnknownImport, []string{
		"Use @core/, @shared/ or @themes/<name>/ import prefixes that resolve to declared layers",
	}},
	{KindMissingStructure, []string{
		"Add pipe/index.ts gateways to layers",
		"Export child modules through the pipe gateway",
	}},
	{KindPipeDependency, []string{
		"Register every pipe a stage depends on before running it",
	}},
	{KindHotspot, []string{
		"Break down modules with high fan-out into smaller, focused modules",
	}},
}

// Suggestions returns advice for every kind present in vs, in a fixed order.
func Suggestions(vs []Violation) []string {
	present := make(map[Kind]bool, len(vs))
	for _, v := range vs {
		present[v.Kind] = true
	}
	out := []string{}
	for _, s := range kindSuggestions {
		if present[s.kind] {
			out = append(out, s.text...)
		}
	}
	return out
}
