package table

import "math"

// DefaultRowCount is the number of rows assumed visible when none is requested
const DefaultRowCount = 10

// DefaultRowHeight is the placeholder row height used until the viewport is measured
const DefaultRowHeight = 1.0

// DefaultHTMLRowHeight is the placeholder row height, in CSS pixels, of a page not yet measured
const DefaultHTMLRowHeight = 10.0

// Window is the half-open range [Start, End) of row indices that are materialized
type Window struct {
	Start int
	End   int
}

// Len returns the number of rows in the window
func (w Window) Len() int {
	return w.End - w.Start
}

// Contains reports whether index is inside the window
func (w Window) Contains(index int) bool {
	return index >= w.Start && index < w.End
}

// DefaultBufferSize returns the buffer used on each side of the visible rows.
// It is one viewport worth of rows.
func DefaultBufferSize(rowCount int) int {
	return rowCount
}

// ComputeWindow maps a scroll offset to the buffered window of rows to render.
// The result always satisfies 0 <= Start <= End <= total.
func ComputeWindow(scrollOffset, rowHeight float64, rowCount, bufferSize, total int) Window {
	if total <= 0 {
		return Window{}
	}
	if rowHeight <= 0 || math.IsNaN(rowHeight) || math.IsInf(rowHeight, 0) {
		rowHeight = DefaultRowHeight
	}
	if rowCount < 1 {
		rowCount = DefaultRowCount
	}
	if bufferSize < 0 {
		bufferSize = 0
	}

	var rawStart int
	switch pos := math.Floor(scrollOffset / rowHeight); {
	case math.IsNaN(pos) || pos < 0:
		rawStart = 0
	case pos >= float64(total):
		rawStart = total
	default:
		rawStart = int(pos)
	}
	rawEnd := rawStart + rowCount

	return Window{
		Start: max(rawStart-bufferSize, 0),
		End:   min(rawEnd+bufferSize, total),
	}
}
