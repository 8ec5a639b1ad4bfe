package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HamStudy/vtable/internal/components/table"
	"github.com/HamStudy/vtable/internal/core"
	"github.com/HamStudy/vtable/internal/source"
)

type fakeSource struct {
	records []table.Record
	err     error
	loads   int
}

func (f *fakeSource) Load(context.Context) ([]table.Record, error) {
	f.loads++
	return f.records, f.err
}

func (f *fakeSource) Describe() string { return "fake" }

var _ source.Source = (*fakeSource)(nil)

func rows(n int) []table.Record {
	records := make([]table.Record, n)
	for i := range records {
		records[i] = table.Record{"id": fmt.Sprintf("r%d", i), "name": fmt.Sprintf("row-%d", i)}
	}
	return records
}

func newTestApp(src *fakeSource) *App {
	tbl := table.New([]table.Column[table.Record]{
		{DataIndex: "id", Title: "ID", Width: table.Px(6)},
		{DataIndex: "name", Title: "Name"},
	}, 5)
	tbl.SetRowKey(table.RecordKey("id"))
	state := core.NewState(&core.Config{}, src.Describe())
	return NewApp(context.Background(), src, tbl, state, zerolog.Nop())
}

// run executes cmd and feeds its message back into the app
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	app.Update(cmd())
}

func TestAppLoadsOnInit(t *testing.T) {
	src := &fakeSource{records: rows(100)}
	app := newTestApp(src)

	assert.Equal(t, "Initializing...", app.View())

	run(t, app, app.Init())
	app.Update(tea.WindowSizeMsg{Width: 40, Height: 10})

	assert.Equal(t, 1, src.loads)
	assert.Len(t, app.Table().Records(), 100)

	view := app.View()
	assert.Contains(t, view, "row-0")
	assert.Contains(t, view, "fake  1-5 of 100")
	assert.NotContains(t, view, "row-50", "rows outside the window are not rendered")
}

func TestAppScrollUpdatesStatus(t *testing.T) {
	src := &fakeSource{records: rows(100)}
	app := newTestApp(src)
	run(t, app, app.Init())
	app.Update(tea.WindowSizeMsg{Width: 40, Height: 13})

	app.Update(tea.KeyMsg{Type: tea.KeyEnd})
	view := app.View()
	assert.Contains(t, view, "96-100 of 100")
	assert.Contains(t, view, "row-99")
}

func TestAppReloadKeepsLastErrorVisible(t *testing.T) {
	src := &fakeSource{records: rows(10)}
	app := newTestApp(src)
	run(t, app, app.Init())
	app.Update(tea.WindowSizeMsg{Width: 60, Height: 12})

	src.err = errors.New("permission denied")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	run(t, app, cmd)

	assert.Equal(t, 2, src.loads)
	assert.Len(t, app.Table().Records(), 10, "failed reload keeps the previous records")
	assert.Contains(t, app.View(), "error: permission denied")

	src.err = nil
	src.records = rows(3)
	_, cmd = app.Update(ReloadMsg{})
	run(t, app, cmd)
	assert.Len(t, app.Table().Records(), 3)
	assert.NotContains(t, app.View(), "error:")
}

func TestAppHelpToggleShrinksTable(t *testing.T) {
	app := newTestApp(&fakeSource{records: rows(50)})
	run(t, app, app.Init())
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	before := app.Table().Viewport().Height()

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.Less(t, app.Table().Viewport().Height(), before)
	assert.Contains(t, app.View(), "reload")
}

func TestAppQuit(t *testing.T) {
	app := newTestApp(&fakeSource{})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestAppEmptySource(t *testing.T) {
	app := newTestApp(&fakeSource{})
	run(t, app, app.Init())
	app.Update(tea.WindowSizeMsg{Width: 40, Height: 8})

	view := app.View()
	assert.Contains(t, view, "no records")
	assert.True(t, strings.Contains(view, "ID"), "header renders without data")
}

func TestAppShortTerminalStatus(t *testing.T) {
	app := newTestApp(&fakeSource{records: rows(100)})
	run(t, app, app.Init())
	app.Update(tea.WindowSizeMsg{Width: 40, Height: 6}) // 3 body lines for 5 rows

	view := app.View()
	assert.Contains(t, view, "1-3 of 100")
	assert.Contains(t, view, "row-2")
	assert.NotContains(t, view, "row-4")

	app.Update(tea.KeyMsg{Type: tea.KeyEnd})
	view = app.View()
	assert.Contains(t, view, "98-100 of 100")
	assert.Contains(t, view, "row-99")
}

func TestAppRecordsRenderTimings(t *testing.T) {
	app := newTestApp(&fakeSource{records: rows(20)})
	run(t, app, app.Init())
	app.Update(tea.WindowSizeMsg{Width: 40, Height: 10})

	app.View()
	app.View()
	metric := app.Monitor().GetMetric("table.view")
	require.NotNil(t, metric)
	assert.EqualValues(t, 2, metric.Count)

	_, cmd := app.Update(ReloadMsg{})
	run(t, app, cmd)
	assert.Nil(t, app.Monitor().GetMetric("table.view"), "timings restart after each load")
}
