package table

import (
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/HamStudy/vtable/internal/components/performance"
	"github.com/HamStudy/vtable/internal/components/style"
)

const (
	// wheelLines is how far one mouse wheel notch scrolls
	wheelLines = 3

	scrollbarTrack = "│"
	scrollbarThumb = "┃"
)

// ScrollMsg asks a table to scroll. Tables ignore messages targeting another viewport.
type ScrollMsg ScrollEvent

// Model is a virtualized terminal table over records of type R.
// Only the rows of the current window are rendered; one terminal line is one unit of scroll offset.
type Model[R any] struct {
	renderer *Renderer[R]
	viewport *Viewport
	records  []R

	width  int
	height int

	keys    KeyMap
	styles  *style.Manager
	monitor *performance.Monitor
}

// New creates a new table model showing rowCount rows per viewport.
// Rows are at least one line high; a viewport shorter than rowCount lines shows fewer rows.
func New[R any](columns []Column[R], rowCount int, opts ...ViewportOption) *Model[R] {
	return &Model[R]{
		renderer: NewRenderer(columns, nil),
		viewport: NewViewport(rowCount, append([]ViewportOption{WithMinRowHeight(1)}, opts...)...),
		keys:     DefaultKeyMap(),
		styles:   style.NewManager(),
	}
}

// SetRowKey sets the function returning a stable row identity
func (m *Model[R]) SetRowKey(rowKey func(R) string) {
	m.renderer = NewRenderer(m.renderer.Columns(), rowKey)
}

// SetStyles sets the style manager
func (m *Model[R]) SetStyles(styles *style.Manager) {
	if styles != nil {
		m.styles = styles
	}
}

// SetMonitor records render timings into monitor
func (m *Model[R]) SetMonitor(monitor *performance.Monitor) {
	m.monitor = monitor
}

// SetKeyMap replaces the scrolling key bindings
func (m *Model[R]) SetKeyMap(keys KeyMap) {
	m.keys = keys
}

// KeyMap returns the scrolling key bindings
func (m *Model[R]) KeyMap() KeyMap {
	return m.keys
}

// Viewport returns the table's viewport
func (m *Model[R]) Viewport() *Viewport {
	return m.viewport
}

// SetRecords replaces the data set and recomputes the window at the current offset
func (m *Model[R]) SetRecords(records []R) {
	m.records = records
	m.viewport.SetTotal(len(records))
	if m.viewport.IsMounted() && m.viewport.Offset() > m.viewport.MaxOffset() {
		m.ScrollTo(m.viewport.MaxOffset())
	}
}

// Records returns the data set
func (m *Model[R]) Records() []R {
	return m.records
}

// SetSize sets the table dimensions. The first call mounts the viewport.
func (m *Model[R]) SetSize(width, height int) {
	m.width = max(width, 0)
	m.height = max(height, 0)

	lines := float64(m.bodyHeight())
	if !m.viewport.IsMounted() {
		m.viewport.Mount(lines)
		return
	}
	m.viewport.Resize(lines)
}

// Unmount detaches the viewport, dropping the view state
func (m *Model[R]) Unmount() {
	m.viewport.Unmount()
}

// ScrollTo scrolls so that offset lines of the spacer are above the viewport
func (m *Model[R]) ScrollTo(offset float64) {
	offset = math.Max(0, math.Min(offset, m.viewport.MaxOffset()))
	m.viewport.HandleScroll(ScrollEvent{Target: m.viewport.ID(), Offset: offset})
}

// ScrollBy scrolls by a relative amount of lines
func (m *Model[R]) ScrollBy(delta float64) {
	m.ScrollTo(m.viewport.Offset() + delta)
}

// Frame renders the current window without drawing it
func (m *Model[R]) Frame() Frame {
	return m.renderer.Frame(m.records, m.viewport.State())
}

// Init implements tea.Model
func (m *Model[R]) Init() tea.Cmd {
	return nil
}

// Update handles scrolling input and resizes
func (m *Model[R]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	rowHeight := m.viewport.State().RowHeight

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case ScrollMsg:
		ev := ScrollEvent(msg)
		if ev.Target == m.viewport.ID() {
			m.ScrollTo(ev.Offset)
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			break
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.ScrollBy(-wheelLines)
		case tea.MouseButtonWheelDown:
			m.ScrollBy(wheelLines)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.ScrollBy(-rowHeight)
		case key.Matches(msg, m.keys.Down):
			m.ScrollBy(rowHeight)
		case key.Matches(msg, m.keys.PageUp):
			m.ScrollBy(-m.viewport.Height())
		case key.Matches(msg, m.keys.PageDown):
			m.ScrollBy(m.viewport.Height())
		case key.Matches(msg, m.keys.Top):
			m.ScrollTo(0)
		case key.Matches(msg, m.keys.Bottom):
			m.ScrollTo(m.viewport.MaxOffset())
		}
	}

	return m, nil
}

// View renders the header and the visible lines of the current window
func (m *Model[R]) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.monitor != nil {
		defer m.monitor.StartTimer("table.view")()
	}

	frame := m.Frame()
	contentWidth := max(m.width-1, 0) // last column is the scrollbar
	widths := m.columnWidths(contentWidth)

	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderHeader(frame, widths, contentWidth))

	body := m.bodyLines(frame, widths, contentWidth)
	bar := m.scrollbar(frame, len(body))
	for i, line := range body {
		lines = append(lines, line+bar[i])
	}

	return strings.Join(lines, "\n")
}

func (m *Model[R]) bodyHeight() int {
	return max(m.height-1, 0) // header takes one line
}

func (m *Model[R]) columnWidths(contentWidth int) []int {
	cols := m.renderer.Columns()
	widths := make([]Width, len(cols))
	for i, col := range cols {
		widths[i] = col.Width
	}
	return columnWidths(widths, contentWidth)
}

func (m *Model[R]) renderHeader(frame Frame, widths []int, contentWidth int) string {
	cells := make([]string, 0, len(frame.Header))
	for i, cell := range frame.Header {
		if widths[i] <= 0 {
			continue
		}
		cells = append(cells, fitCell(cell.Title, widths[i], cell.Style.TextAlign))
	}
	header := m.pad(strings.Join(cells, " "), contentWidth)
	return m.styles.Class(style.ClassHeader).Render(header) + " "
}

func (m *Model[R]) renderRow(row RowNode, widths []int, contentWidth int) string {
	cells := make([]string, 0, len(row.Cells))
	for i, cell := range row.Cells {
		if widths[i] <= 0 {
			continue
		}
		cells = append(cells, fitCell(cell.Content, widths[i], cell.Style.TextAlign))
	}
	return m.styles.Class(style.ClassRow).Render(m.pad(strings.Join(cells, " "), contentWidth))
}

// bodyLines maps each viewport line to spacer coordinates. A row's content is drawn on the
// line holding its top edge; the rest of the row is filler.
func (m *Model[R]) bodyLines(frame Frame, widths []int, contentWidth int) []string {
	height := m.bodyHeight()
	top := int(math.Floor(m.viewport.Offset()))

	lines := make([]string, height)
	drawn := make([]bool, height)
	for _, row := range frame.Rows {
		y := int(math.Floor(row.Top)) - top
		if y < 0 || y >= height || drawn[y] {
			continue
		}
		lines[y] = m.renderRow(row, widths, contentWidth)
		drawn[y] = true
	}

	blank := strings.Repeat(" ", contentWidth)
	filler := m.styles.Class(style.ClassContainer).Render(blank)
	for y := range lines {
		if drawn[y] {
			continue
		}
		if float64(top+y) < frame.SpacerHeight {
			lines[y] = filler
		} else {
			lines[y] = blank
		}
	}
	return lines
}

// scrollbar returns one cell per body line. The thumb covers viewport/spacer of the track.
func (m *Model[R]) scrollbar(frame Frame, height int) []string {
	bar := make([]string, height)
	track := m.styles.Class(style.ClassScrollbar).Render(scrollbarTrack)
	for i := range bar {
		bar[i] = track
	}
	if height == 0 || frame.SpacerHeight <= float64(height) {
		return bar
	}

	thumbLen := max(int(math.Round(float64(height)*float64(height)/frame.SpacerHeight)), 1)
	thumbPos := int(math.Round(m.viewport.Offset() / frame.SpacerHeight * float64(height)))
	thumbPos = max(min(thumbPos, height-thumbLen), 0)

	thumb := m.styles.Class(style.ClassThumb).Render(scrollbarThumb)
	for i := thumbPos; i < thumbPos+thumbLen; i++ {
		bar[i] = thumb
	}
	return bar
}

func (m *Model[R]) pad(line string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(line)
}
