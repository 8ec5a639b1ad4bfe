package table

import (
	"github.com/oklog/ulid/v2"
)

// ViewportState is the mutable view state of one table instance
type ViewportState struct {
	RowHeight  float64
	StartIndex int
	EndIndex   int
}

// Window returns the state's row window
func (s ViewportState) Window() Window {
	return Window{Start: s.StartIndex, End: s.EndIndex}
}

// ScrollEvent reports a new scroll offset of the element identified by Target
type ScrollEvent struct {
	Target string
	Offset float64
}

// Viewport tracks the scroll container of one table instance and derives its row window.
// A Viewport is owned by a single surface and is not safe for concurrent use.
type Viewport struct {
	id               string
	rowCount         int
	bufferSize       int
	defaultRowHeight float64
	minRowHeight     float64

	state  ViewportState
	total  int
	offset float64
	height float64 // measured viewport height, 0 until mounted with a real size

	mounted bool

	onWindowChange func(Window)
}

// ViewportOption configures a Viewport
type ViewportOption func(*Viewport)

// WithBufferSize overrides the number of buffered rows on each side of the visible rows
func WithBufferSize(n int) ViewportOption {
	return func(v *Viewport) {
		if n >= 0 {
			v.bufferSize = n
		}
	}
}

// WithDefaultRowHeight sets the row height used before the viewport is measured
func WithDefaultRowHeight(h float64) ViewportOption {
	return func(v *Viewport) {
		if h > 0 {
			v.defaultRowHeight = h
		}
	}
}

// WithMinRowHeight sets a lower bound for the measured row height.
// The terminal uses one line so every row gets a line of its own.
func WithMinRowHeight(h float64) ViewportOption {
	return func(v *Viewport) {
		if h > 0 {
			v.minRowHeight = h
		}
	}
}

// WithID sets the identity scroll events must carry. By default a ULID is generated.
func WithID(id string) ViewportOption {
	return func(v *Viewport) {
		if id != "" {
			v.id = id
		}
	}
}

// NewViewport creates an unmounted viewport showing rowCount rows at once
func NewViewport(rowCount int, opts ...ViewportOption) *Viewport {
	if rowCount < 1 {
		rowCount = DefaultRowCount
	}
	v := &Viewport{
		id:               ulid.Make().String(),
		rowCount:         rowCount,
		bufferSize:       DefaultBufferSize(rowCount),
		defaultRowHeight: DefaultRowHeight,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.reset()
	return v
}

// ID returns the identity of the tracked scroll element
func (v *Viewport) ID() string { return v.id }

// RowCount returns the number of rows assumed visible at once
func (v *Viewport) RowCount() int { return v.rowCount }

// BufferSize returns the buffered rows on each side of the visible range
func (v *Viewport) BufferSize() int { return v.bufferSize }

// State returns a copy of the current view state
func (v *Viewport) State() ViewportState { return v.state }

// Window returns the current row window
func (v *Viewport) Window() Window { return v.state.Window() }

// Offset returns the last scroll offset
func (v *Viewport) Offset() float64 { return v.offset }

// Total returns the number of records the window is computed against
func (v *Viewport) Total() int { return v.total }

// IsMounted reports whether the viewport is attached
func (v *Viewport) IsMounted() bool { return v.mounted }

// Height returns the viewport height: the measured height, or rowCount rows of the current row height
func (v *Viewport) Height() float64 {
	if v.height > 0 {
		return v.height
	}
	return float64(v.rowCount) * v.state.RowHeight
}

// SpacerHeight returns the full virtual height of all records
func (v *Viewport) SpacerHeight() float64 {
	return float64(v.total) * v.state.RowHeight
}

// MaxOffset returns the largest scroll offset a native container would allow
func (v *Viewport) MaxOffset() float64 {
	return max(v.SpacerHeight()-v.Height(), 0)
}

// SetOnWindowChange sets a callback invoked whenever the row window moves
func (v *Viewport) SetOnWindowChange(callback func(Window)) {
	v.onWindowChange = callback
}

// Mount attaches the viewport and resolves the row height from the measured height.
// A height <= 0 means the element is not laid out yet and the default row height stays.
// Mount runs once; calling it again while mounted does nothing.
func (v *Viewport) Mount(height float64) {
	if v.mounted {
		return
	}
	v.reset()
	v.mounted = true
	if height > 0 {
		v.height = height
		v.state.RowHeight = v.measuredRowHeight(height)
	}
	v.recompute()
}

// Unmount detaches the viewport. Scroll events are ignored until the next Mount.
func (v *Viewport) Unmount() {
	v.mounted = false
	v.reset()
}

// Resize re-resolves the row height after the container changed size.
// The logical row at the top of the viewport stays at the top.
func (v *Viewport) Resize(height float64) bool {
	if !v.mounted || height <= 0 {
		return false
	}
	topRow := v.offset / v.state.RowHeight
	v.height = height
	v.state.RowHeight = v.measuredRowHeight(height)
	v.offset = topRow * v.state.RowHeight
	v.recompute()
	return true
}

// HandleScroll recomputes the window for a scroll event from the tracked element.
// Events from any other element, or received while unmounted, are ignored.
func (v *Viewport) HandleScroll(ev ScrollEvent) bool {
	if !v.mounted || ev.Target != v.id {
		return false
	}
	v.offset = ev.Offset
	v.recompute()
	return true
}

// SetTotal updates the number of records and recomputes the window at the current offset
func (v *Viewport) SetTotal(total int) {
	v.total = max(total, 0)
	if !v.mounted {
		v.state.EndIndex = min(v.rowCount, v.total)
		return
	}
	v.recompute()
}

// Stats returns a snapshot of the viewport for logging
func (v *Viewport) Stats() map[string]interface{} {
	return map[string]interface{}{
		"id":          v.id,
		"mounted":     v.mounted,
		"total":       v.total,
		"row_count":   v.rowCount,
		"buffer_size": v.bufferSize,
		"row_height":  v.state.RowHeight,
		"offset":      v.offset,
		"start":       v.state.StartIndex,
		"end":         v.state.EndIndex,
	}
}

func (v *Viewport) measuredRowHeight(height float64) float64 {
	return max(height/float64(v.rowCount), v.minRowHeight)
}

func (v *Viewport) reset() {
	v.offset = 0
	v.height = 0
	v.state = ViewportState{
		RowHeight:  v.defaultRowHeight,
		StartIndex: 0,
		EndIndex:   min(v.rowCount, v.total),
	}
}

func (v *Viewport) recompute() {
	prev := v.state.Window()
	w := ComputeWindow(v.offset, v.state.RowHeight, v.rowCount, v.bufferSize, v.total)
	v.state.StartIndex = w.Start
	v.state.EndIndex = w.End

	if w != prev && v.onWindowChange != nil {
		v.onWindowChange(w)
	}
}
