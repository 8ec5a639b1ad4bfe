package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/HamStudy/vtable/internal/components/performance"
	"github.com/HamStudy/vtable/internal/components/style"
	"github.com/HamStudy/vtable/internal/components/table"
	"github.com/HamStudy/vtable/internal/core"
	"github.com/HamStudy/vtable/internal/source"
)

// KeyMap defines the application key bindings. Scrolling keys belong to the table.
type KeyMap struct {
	Help   key.Binding
	Quit   key.Binding
	Reload key.Binding

	table table.KeyMap
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "reload"),
		),
		table: table.DefaultKeyMap(),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return append(k.table.ShortHelp(), k.Reload, k.Help, k.Quit)
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return append(k.table.FullHelp(), []key.Binding{k.Reload, k.Help, k.Quit})
}

// ReloadMsg asks the app to load its source again. File watchers send it through tea.Program.Send.
type ReloadMsg struct{}

// loadedMsg carries the outcome of a source load
type loadedMsg struct {
	records []table.Record
	err     error
	at      time.Time
}

// App hosts a record table fed by a source, with a status line and help
type App struct {
	ctx    context.Context
	src    source.Source
	state  *core.State
	table  *table.Model[table.Record]
	keys   KeyMap
	help   help.Model
	styles  *style.Manager
	monitor *performance.Monitor
	logger  zerolog.Logger

	width  int
	height int
	ready  bool
}

// NewApp creates a new application instance
func NewApp(ctx context.Context, src source.Source, tbl *table.Model[table.Record], state *core.State, logger zerolog.Logger) *App {
	styles := style.NewManager()
	tbl.SetStyles(styles)
	monitor := performance.NewMonitor()
	tbl.SetMonitor(monitor)

	return &App{
		ctx:     ctx,
		src:     src,
		state:   state,
		table:   tbl,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		styles:  styles,
		monitor: monitor,
		logger:  logger,
	}
}

// SetTheme applies a theme to the table and status line
func (a *App) SetTheme(theme *style.Theme) {
	a.styles.SetTheme(theme)
}

// Table returns the hosted table
func (a *App) Table() *table.Model[table.Record] {
	return a.table
}

// Monitor returns the render timings collected since the last load
func (a *App) Monitor() *performance.Monitor {
	return a.monitor
}

// Init starts the first load
func (a *App) Init() tea.Cmd {
	return a.load()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Help):
			a.help.ShowAll = !a.help.ShowAll
			a.layout()
			return a, nil
		case key.Matches(msg, a.keys.Reload):
			return a, a.load()
		}

	case ReloadMsg:
		return a, a.load()

	case loadedMsg:
		a.state.RecordReload(len(msg.records), msg.err, msg.at)
		if msg.err != nil {
			a.logger.Error().Err(msg.err).Str("source", a.src.Describe()).Msg("reload failed")
			return a, nil
		}
		a.table.SetRecords(msg.records)
		a.logger.Debug().
			Int("records", len(msg.records)).
			Interface("viewport", a.table.Viewport().Stats()).
			Interface("timings", a.monitor.Summary()).
			Msg("records loaded")
		a.monitor.Reset()
		return a, nil
	}

	_, cmd := a.table.Update(msg)
	return a, cmd
}

// load reads the source off the event loop
func (a *App) load() tea.Cmd {
	ctx, src := a.ctx, a.src
	return func() tea.Msg {
		records, err := src.Load(ctx)
		return loadedMsg{records: records, err: err, at: time.Now()}
	}
}

// layout gives the table everything above the footer
func (a *App) layout() {
	if !a.ready {
		return
	}
	a.help.Width = a.width
	a.table.SetSize(a.width, max(a.height-a.footerHeight(), 0))
}

func (a *App) footerHeight() int {
	return 1 + lipgloss.Height(a.help.View(a.keys))
}

// View renders the application
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	var b strings.Builder
	if body := a.table.View(); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString(a.statusLine())
	b.WriteString("\n")
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

// statusLine shows the source, the visible rows and the last reload error
func (a *App) statusLine() string {
	snap := a.state.Snapshot()
	vp := a.table.Viewport()

	status := fmt.Sprintf("%s  %s", snap.Source, visibleRange(vp))
	if w := vp.Window(); w.Len() > 0 {
		status += fmt.Sprintf("  window [%d,%d)", w.Start, w.End)
	}

	line := a.styles.Class(style.ClassStatus).Render(status)
	if snap.LastError != nil {
		line += "  " + a.styles.Class(style.ClassError).Render("error: "+snap.LastError.Error())
	}
	return lipgloss.NewStyle().MaxWidth(a.width).Render(line)
}

// visibleRange describes the rows inside the viewport, 1-based
func visibleRange(vp *table.Viewport) string {
	total := vp.Total()
	if total == 0 {
		return "no records"
	}
	rowHeight := vp.State().RowHeight
	if rowHeight <= 0 {
		rowHeight = table.DefaultRowHeight
	}
	visible := vp.RowCount()
	if vp.IsMounted() {
		// rows may be clamped to one line, leaving fewer than RowCount on screen
		visible = min(visible, max(int(math.Floor(vp.Height()/rowHeight+1e-9)), 1))
	}
	first := int(vp.Offset()/rowHeight) + 1
	last := min(first+visible-1, total)
	first = min(first, total)
	return fmt.Sprintf("%d-%d of %d", first, last, total)
}
