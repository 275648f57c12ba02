package report

import (
	"fmt"
	"io"
)

// Output formats accepted by Write.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatJUnit    = "junit"
	FormatSARIF    = "sarif"
)

// Formats lists every output format in the order shown in help texts.
var Formats = []string{FormatText, FormatJSON, FormatMarkdown, FormatJUnit, FormatSARIF}

// Write renders r to w in the named format.
func Write(w io.Writer, format string, r *Report) error {
	switch format {
	case FormatText:
		return WriteText(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatMarkdown:
		return WriteMarkdown(w, r)
	case FormatJUnit:
		return WriteJUnit(w, r)
	case FormatSARIF:
		return WriteSARIF(w, r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
