// Package render writes conversion results as text tables, JSON or
// user-supplied pongo2 templates.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/flosch/pongo2"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/convert"
)

// Format is an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatTemplate Format = "template"
)

// ParseFormat parses an output format. Empty selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatTemplate:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (valid: text, json, template)", s)
}

// Options controls result rendering.
type Options struct {
	Format Format
	// Template is the pongo2 template file for FormatTemplate.
	Template string
	// Preview prefixes colours with an ANSI swatch in text output.
	Preview bool
}

// Results writes conversion results in the requested format.
func Results(w io.Writer, results []convert.Result, opts Options) error {
	switch opts.Format {
	case FormatText, "":
		_, err := io.WriteString(w, resultsTable(results, opts.Preview).Render())
		return err
	case FormatJSON:
		return JSON(w, results)
	case FormatTemplate:
		return Template(w, opts.Template, pongo2.Context{
			"results": results,
			"count":   len(results),
			"failed":  countFailed(results),
		})
	}
	return fmt.Errorf("unknown output format %q", opts.Format)
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Template renders the pongo2 template file at path with ctx.
func Template(w io.Writer, path string, ctx pongo2.Context) error {
	if path == "" {
		return fmt.Errorf("template output requires a template file")
	}
	tpl, err := pongo2.FromFile(path)
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", path, err)
	}
	if err := tpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("failed to render template %s: %w", path, err)
	}
	return nil
}

func resultsTable(results []convert.Result, preview bool) *Table {
	named := false
	for _, r := range results {
		if r.Name != "" {
			named = true
			break
		}
	}

	headers := []string{"Input", "Method", "Munsell", "Renotation", "Hex", "xyY", "Status"}
	if named {
		headers = append([]string{"Name"}, headers...)
	}
	t := NewTable(headers...)

	for _, r := range results {
		cells := []string{
			r.Input,
			string(r.Method),
			r.Notation,
			renotationCell(r),
			hexCell(r, preview),
			xyyCell(r),
			status(r),
		}
		if named {
			cells = append([]string{r.Name}, cells...)
		}
		t.AddRow(cells...)
	}
	return t
}

func renotationCell(r convert.Result) string {
	if r.Renotation == nil {
		return ""
	}
	if r.RenotationDeltaE != nil {
		return fmt.Sprintf("%s (dE %.1f)", r.Renotation, *r.RenotationDeltaE)
	}
	return r.Renotation.String()
}

func hexCell(r convert.Result, preview bool) string {
	if r.RGB == nil {
		return ""
	}
	if preview {
		return colour.FormatColourWithPreview(*r.RGB, 2)
	}
	return r.Hex
}

func xyyCell(r convert.Result) string {
	if r.XYY == nil {
		return ""
	}
	return fmt.Sprintf("%.4f %.4f %.4f", r.XYY.X, r.XYY.Y, r.XYY.L)
}

func status(r convert.Result) string {
	switch {
	case r.Err != nil:
		return "error: " + r.Err.Error()
	case r.Error != "":
		return "error: " + r.Error
	case !r.InGamut:
		return "out of gamut"
	}
	return "ok"
}

func countFailed(results []convert.Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil || r.Error != "" {
			n++
		}
	}
	return n
}
