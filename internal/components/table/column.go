package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is an open field-name to value mapping, one per logical row
type Record map[string]any

// Align controls text alignment inside a cell
type Align string

const (
	AlignStart  Align = "start"
	AlignEnd    Align = "end"
	AlignCenter Align = "center"
)

// ParseAlign parses an alignment name. The empty string is AlignStart.
func ParseAlign(s string) (Align, error) {
	switch Align(s) {
	case "", AlignStart:
		return AlignStart, nil
	case AlignEnd:
		return AlignEnd, nil
	case AlignCenter:
		return AlignCenter, nil
	}
	return "", fmt.Errorf("invalid text alignment %q (want start, end or center)", s)
}

// Width is a column width: fixed units, a verbatim size string, or flexible (zero value)
type Width struct {
	units float64
	size  string
	fixed bool
}

// Px returns a fixed width. One unit is a CSS pixel in HTML and a cell in the terminal.
// A width of zero or less is flexible.
func Px(n float64) Width {
	if n <= 0 {
		return Width{}
	}
	return Width{units: n, fixed: true}
}

// Size returns a width passed through verbatim, e.g. "30%" or "12ch"
func Size(s string) Width {
	s = strings.TrimSpace(s)
	if s == "" {
		return Width{}
	}
	return Width{size: s}
}

// IsFlex reports whether the column shares remaining space with other flexible columns
func (w Width) IsFlex() bool {
	return !w.fixed && w.size == ""
}

// Units returns the fixed width and whether the width is fixed
func (w Width) Units() (float64, bool) {
	return w.units, w.fixed
}

// String returns the CSS width value, or "" for flexible widths
func (w Width) String() string {
	switch {
	case w.fixed:
		return strconv.FormatFloat(w.units, 'f', -1, 64) + "px"
	default:
		return w.size
	}
}

// RenderFunc renders a cell from its raw value, the full record and the row index
type RenderFunc[R any] func(value any, record R, rowIndex int) string

// Column describes how one field of R is shown. Columns are read-only once handed to a table.
type Column[R any] struct {
	// DataIndex names the source field. It is the lookup key for Record rows.
	DataIndex string
	Title     string

	// Value selects the field from a record. When nil and R is a Record,
	// the field is looked up by DataIndex.
	Value  func(R) any
	Render RenderFunc[R]

	Key              string
	Width            Width
	HeaderTextAlign  Align
	ContentTextAlign Align
}

// ID returns the column identity: explicit key, else data index, else position
func (c Column[R]) ID(position int) string {
	if c.Key != "" {
		return c.Key
	}
	if c.DataIndex != "" {
		return c.DataIndex
	}
	return strconv.Itoa(position)
}

// cellKey is the reconciliation key of a body cell
func (c Column[R]) cellKey() string {
	if c.Key != "" {
		return c.Key
	}
	return c.DataIndex
}

// RawValue returns the field value of record for this column
func (c Column[R]) RawValue(record R) any {
	if c.Value != nil {
		return c.Value(record)
	}
	switch r := any(record).(type) {
	case Record:
		return r[c.DataIndex]
	case map[string]any:
		return r[c.DataIndex]
	}
	return nil
}

// Content renders the cell content for record at rowIndex
func (c Column[R]) Content(record R, rowIndex int) string {
	value := c.RawValue(record)
	if c.Render != nil {
		return c.Render(value, record, rowIndex)
	}
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// Field returns a selector reading name from a Record
func Field(name string) func(Record) any {
	return func(r Record) any {
		return r[name]
	}
}

// RecordKey returns a row key function reading name from a Record.
// Rows without the field fall back to their index.
func RecordKey(name string) func(Record) string {
	return func(r Record) string {
		v, ok := r[name]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
}
