package table

import (
	"strconv"
	"strings"
)

// CellStyle is the size and alignment shared by header and body cells of a column
type CellStyle struct {
	Width     string // CSS width, empty for flexible columns
	Flex      int    // flex-grow, 0 when the column has a width
	TextAlign Align
}

// ColumnStyle derives a cell style from a column width and alignment
func ColumnStyle(w Width, align Align) CellStyle {
	style := CellStyle{
		Width:     w.String(),
		TextAlign: align,
	}
	if w.IsFlex() {
		style.Flex = 1
	}
	if style.TextAlign == "" {
		style.TextAlign = AlignStart
	}
	return style
}

// CSS renders the style as an inline style attribute value
func (s CellStyle) CSS() string {
	var parts []string
	if s.Width != "" {
		parts = append(parts, "width:"+s.Width)
	}
	if s.Flex > 0 {
		parts = append(parts, "flex:"+strconv.Itoa(s.Flex))
	}
	parts = append(parts, "text-align:"+string(s.TextAlign))
	return strings.Join(parts, ";")
}

// HeaderCell is one rendered header cell
type HeaderCell struct {
	Key   string
	Title string
	Style CellStyle
}

// Cell is one rendered body cell
type Cell struct {
	Key     string
	Content string
	Style   CellStyle
}

// RowNode is one materialized row, absolutely positioned inside the spacer
type RowNode struct {
	Key    string
	Index  int
	Top    float64
	Height float64
	Cells  []Cell
}

// Frame is a surface-neutral rendering of the header and the current window
type Frame struct {
	Header       []HeaderCell
	SpacerHeight float64
	RowHeight    float64
	Total        int
	Window       Window
	Rows         []RowNode
}

// Renderer turns columns, records and view state into frames
type Renderer[R any] struct {
	columns []Column[R]
	rowKey  func(R) string
}

// NewRenderer creates a renderer. rowKey may be nil, in which case rows are keyed by index.
func NewRenderer[R any](columns []Column[R], rowKey func(R) string) *Renderer[R] {
	return &Renderer[R]{
		columns: append([]Column[R](nil), columns...),
		rowKey:  rowKey,
	}
}

// Columns returns the renderer's columns
func (r *Renderer[R]) Columns() []Column[R] {
	return r.columns
}

// Header renders one header cell per column, in column order
func (r *Renderer[R]) Header() []HeaderCell {
	cells := make([]HeaderCell, len(r.columns))
	for i, col := range r.columns {
		cells[i] = HeaderCell{
			Key:   col.ID(i),
			Title: col.Title,
			Style: ColumnStyle(col.Width, col.HeaderTextAlign),
		}
	}
	return cells
}

// Frame renders the rows of state's window. Rows outside the window are never touched.
func (r *Renderer[R]) Frame(records []R, state ViewportState) Frame {
	rowHeight := state.RowHeight
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}

	start := min(max(state.StartIndex, 0), len(records))
	end := min(max(state.EndIndex, start), len(records))

	frame := Frame{
		Header:       r.Header(),
		SpacerHeight: float64(len(records)) * rowHeight,
		RowHeight:    rowHeight,
		Total:        len(records),
		Window:       Window{Start: start, End: end},
		Rows:         make([]RowNode, 0, end-start),
	}

	for i := start; i < end; i++ {
		frame.Rows = append(frame.Rows, r.row(records[i], i, rowHeight))
	}
	return frame
}

func (r *Renderer[R]) row(record R, index int, rowHeight float64) RowNode {
	key := ""
	if r.rowKey != nil {
		key = r.rowKey(record)
	}
	if key == "" {
		key = strconv.Itoa(index)
	}

	cells := make([]Cell, len(r.columns))
	for i, col := range r.columns {
		cells[i] = Cell{
			Key:     col.cellKey(),
			Content: col.Content(record, index),
			Style:   ColumnStyle(col.Width, col.ContentTextAlign),
		}
	}

	return RowNode{
		Key:    key,
		Index:  index,
		Top:    float64(index) * rowHeight,
		Height: rowHeight,
		Cells:  cells,
	}
}
