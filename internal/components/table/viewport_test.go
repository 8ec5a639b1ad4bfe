package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewportCreation(t *testing.T) {
	vp := NewViewport(10)
	vp.SetTotal(1000)

	require.NotEmpty(t, vp.ID())
	assert.False(t, vp.IsMounted())
	assert.Equal(t, 10, vp.RowCount())
	assert.Equal(t, 10, vp.BufferSize())

	state := vp.State()
	assert.Equal(t, DefaultRowHeight, state.RowHeight)
	assert.Equal(t, 0, state.StartIndex)
	assert.Equal(t, 10, state.EndIndex)
}

func TestViewportInitialWindowClampedToData(t *testing.T) {
	vp := NewViewport(10)
	vp.SetTotal(3)
	assert.Equal(t, Window{0, 3}, vp.Window())

	vp.SetTotal(0)
	assert.Equal(t, Window{0, 0}, vp.Window())
}

func TestViewportIDsAreUnique(t *testing.T) {
	a := NewViewport(10)
	b := NewViewport(10)
	assert.NotEqual(t, a.ID(), b.ID())

	c := NewViewport(10, WithID("content"))
	assert.Equal(t, "content", c.ID())
}

func TestViewportInvalidRowCount(t *testing.T) {
	vp := NewViewport(0)
	assert.Equal(t, DefaultRowCount, vp.RowCount())
}

func TestViewportMountResolvesRowHeight(t *testing.T) {
	vp := NewViewport(10)
	vp.SetTotal(1000)
	vp.Mount(200)

	assert.True(t, vp.IsMounted())
	assert.Equal(t, 20.0, vp.State().RowHeight)
	assert.Equal(t, Window{0, 20}, vp.Window())
	assert.Equal(t, 20000.0, vp.SpacerHeight())
	assert.Equal(t, 19800.0, vp.MaxOffset())
}

func TestViewportMountWithoutLayoutKeepsDefault(t *testing.T) {
	vp := NewViewport(10, WithDefaultRowHeight(10))
	vp.SetTotal(100)
	vp.Mount(0)

	assert.True(t, vp.IsMounted())
	assert.Equal(t, 10.0, vp.State().RowHeight)
	assert.Equal(t, 100.0, vp.Height())
}

func TestViewportMountRunsOnce(t *testing.T) {
	vp := NewViewport(10)
	vp.SetTotal(1000)
	vp.Mount(200)
	vp.Mount(500)

	assert.Equal(t, 20.0, vp.State().RowHeight)
}

func TestViewportScroll(t *testing.T) {
	vp := NewViewport(10)
	vp.SetTotal(1000)
	vp.Mount(200)

	handled := vp.HandleScroll(ScrollEvent{Target: vp.ID(), Offset: 200})
	require.True(t, handled)
	assert.Equal(t, Window{0, 30}, vp.Window())

	vp.HandleScroll(ScrollEvent{Target: vp.ID(), Offset: 4000})
	assert.Equal(t, Window{190, 220}, vp.Window())
	assert.Equal(t, 4000.0, vp.Offset())
}

func TestViewportIgnoresForeignTarget(t *testing.T) {
	vp := NewViewport(10)
	vp.SetTotal(1000)
	vp.Mount(200)

	handled := vp.HandleScroll(ScrollEvent{Target: "nested-scroller", Offset: 4000})
	assert.False(t, handled)
	assert.Equal(t, Window{0, 20}, vp.Window())
	assert.Equal(t, 0.0, vp.Offset())
}

func TestViewportIgnoresEventsWhenUnmounted(t *testing.T) {
	vp := NewViewport(10)
	vp.SetTotal(1000)

	assert.False(t, vp.HandleScroll(ScrollEvent{Target: vp.ID(), Offset: 4000}))

	vp.Mount(200)
	vp.HandleScroll(ScrollEvent{Target: vp.ID(), Offset: 4000})
	vp.Unmount()

	assert.False(t, vp.IsMounted())
	assert.False(t, vp.HandleScroll(ScrollEvent{Target: vp.ID(), Offset: 200}))

	// No state survives a remount
	assert.Equal(t, 0.0, vp.Offset())
	assert.Equal(t, DefaultRowHeight, vp.State().RowHeight)
	assert.Equal(t, Window{0, 10}, vp.Window())

	vp.Mount(400)
	assert.Equal(t, 40.0, vp.State().RowHeight)
	assert.Equal(t, Window{0, 20}, vp.Window())
}

func TestViewportResizeKeepsTopRow(t *testing.T) {
	vp := NewViewport(10)
	vp.SetTotal(1000)
	vp.Mount(200)
	vp.HandleScroll(ScrollEvent{Target: vp.ID(), Offset: 1000}) // row 50 at top

	require.True(t, vp.Resize(100))
	assert.Equal(t, 10.0, vp.State().RowHeight)
	assert.Equal(t, 500.0, vp.Offset())
	assert.Equal(t, Window{40, 70}, vp.Window())

	assert.False(t, vp.Resize(0))
	assert.Equal(t, 10.0, vp.State().RowHeight)
}

func TestViewportResizeRequiresMount(t *testing.T) {
	vp := NewViewport(10)
	assert.False(t, vp.Resize(100))
	assert.Equal(t, DefaultRowHeight, vp.State().RowHeight)
}

func TestViewportDataChange(t *testing.T) {
	vp := NewViewport(10)
	vp.SetTotal(1000)
	vp.Mount(200)
	vp.HandleScroll(ScrollEvent{Target: vp.ID(), Offset: 4000})

	// The offset now points past the data; the window clamps to the tail
	vp.SetTotal(195)
	assert.Equal(t, Window{185, 195}, vp.Window())

	vp.SetTotal(0)
	assert.Equal(t, Window{0, 0}, vp.Window())
}

func TestViewportWindowChangeCallback(t *testing.T) {
	vp := NewViewport(10)
	vp.SetTotal(1000)

	var windows []Window
	vp.SetOnWindowChange(func(w Window) {
		windows = append(windows, w)
	})

	vp.Mount(200)
	vp.HandleScroll(ScrollEvent{Target: vp.ID(), Offset: 10}) // same window
	vp.HandleScroll(ScrollEvent{Target: vp.ID(), Offset: 400})

	assert.Equal(t, []Window{{0, 20}, {10, 40}}, windows)
}

func TestViewportCustomBuffer(t *testing.T) {
	vp := NewViewport(10, WithBufferSize(2))
	vp.SetTotal(1000)
	vp.Mount(200)
	vp.HandleScroll(ScrollEvent{Target: vp.ID(), Offset: 200})

	assert.Equal(t, 2, vp.BufferSize())
	assert.Equal(t, Window{8, 22}, vp.Window())
}

func TestViewportStats(t *testing.T) {
	vp := NewViewport(5, WithID("v1"))
	vp.SetTotal(50)
	vp.Mount(10)

	stats := vp.Stats()
	assert.Equal(t, "v1", stats["id"])
	assert.Equal(t, 50, stats["total"])
	assert.Equal(t, 2.0, stats["row_height"])
	assert.Equal(t, 0, stats["start"])
	assert.Equal(t, 10, stats["end"])
}

func TestViewportMinRowHeight(t *testing.T) {
	vp := NewViewport(10, WithMinRowHeight(1))
	vp.SetTotal(100)
	vp.Mount(4)

	assert.Equal(t, 1.0, vp.State().RowHeight)
	assert.Equal(t, 4.0, vp.Height())
	assert.Equal(t, 96.0, vp.MaxOffset())

	require.True(t, vp.Resize(30))
	assert.Equal(t, 3.0, vp.State().RowHeight, "bound only applies when the measured height is smaller")
}
