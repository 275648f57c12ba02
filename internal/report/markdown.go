package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

// WriteMarkdown writes r as a Markdown document with a summary, the
// violations, a per-layer metrics table and the suggestions.
func WriteMarkdown(w io.Writer, r *Report) error {
	var b strings.Builder

	b.WriteString("# HEA Architecture Report\n\n")
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Root**: `%s`\n", r.Root)
	fmt.Fprintf(&b, "- **Score**: %d/100 (Grade: %s)\n", r.Score, r.Grade)
	fmt.Fprintf(&b, "- **Layers**: %d\n", len(r.Layers))
	fmt.Fprintf(&b, "- **Errors**: %d\n", len(r.Errors()))
	fmt.Fprintf(&b, "- **Warnings**: %d\n", len(r.Warnings()))
	b.WriteString("\n")

	if len(r.Violations) > 0 {
		b.WriteString("## Violations\n\n")
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", v.Kind, v.Severity, v.Message)
			if v.Location != "" {
				fmt.Fprintf(&b, "  - Location: `%s`\n", v.Location)
			}
		}
		b.WriteString("\n")
	}

	if len(r.Analysis.Coupling) > 0 {
		b.WriteString("## Layer Metrics\n\n")
		b.WriteString("| Layer | Cohesion | Coupling | Stability | Abstractness |\n")
		b.WriteString("|-------|----------|----------|-----------|--------------|\n")
		for _, l := range slices.Sorted(maps.Keys(r.Analysis.Coupling)) {
			c := r.Analysis.Coupling[l]
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				cellEscaper.Replace(l), percent(r.Analysis.Cohesion[l]),
				percent(c.Coupling), percent(c.Stability), percent(c.Abstractness))
		}
		b.WriteString("\n")
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("## Suggestions\n\n")
		for _, s := range r.Suggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
