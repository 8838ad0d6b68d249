package render

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Table lays out rows in aligned columns. Cell widths ignore ANSI colour
// escapes so swatches do not skew the layout.
type Table struct {
	headers  []string
	rows     [][]string
	padding  int
	numeric  map[int]bool
	noHeader bool
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		padding: 2,
		numeric: make(map[int]bool),
	}
}

// AlignRight right-aligns a column, for numbers.
func (t *Table) AlignRight(col int) *Table {
	t.numeric[col] = true
	return t
}

// HideHeader omits the header and separator lines.
func (t *Table) HideHeader() *Table {
	t.noHeader = true
	return t
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Render formats the table. Trailing spaces are trimmed from every line.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	if !t.noHeader {
		for i, h := range t.headers {
			widths[i] = visibleLen(h)
		}
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], visibleLen(cell))
		}
	}

	var b strings.Builder
	if !t.noHeader {
		t.writeLine(&b, t.headers, widths)
		sep := make([]string, len(widths))
		for i, w := range widths {
			sep[i] = strings.Repeat("-", w)
		}
		t.writeLine(&b, sep, widths)
	}
	for _, row := range t.rows {
		t.writeLine(&b, row, widths)
	}
	return b.String()
}

func (t *Table) writeLine(b *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		gap := strings.Repeat(" ", widths[i]-visibleLen(cell))
		if t.numeric[i] {
			parts[i] = gap + cell
		} else {
			parts[i] = cell + gap
		}
	}
	b.WriteString(strings.TrimRight(strings.Join(parts, strings.Repeat(" ", t.padding)), " "))
	b.WriteString("\n")
}

// visibleLen returns the number of runes in s once ANSI escapes are removed.
func visibleLen(s string) int {
	if strings.IndexByte(s, 0x1b) >= 0 {
		s = ansiPattern.ReplaceAllString(s, "")
	}
	return utf8.RuneCountInString(s)
}
