package table

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, render func(*bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, render(&buf))
	return buf.String()
}

func TestFrameHTML(t *testing.T) {
	columns := []Column[Record]{
		{DataIndex: "name", Title: "Name"},
		{DataIndex: "age", Title: "Age", Width: Px(100), HeaderTextAlign: AlignEnd},
	}
	r := NewRenderer(columns, RecordKey("id"))
	frame := r.Frame(people(100), ViewportState{RowHeight: 20, StartIndex: 0, EndIndex: 3})

	html := renderString(t, func(buf *bytes.Buffer) error {
		return FrameHTML(frame, "content-1").Render(context.Background(), buf)
	})

	assert.True(t, strings.HasPrefix(html, `<section class="fancy_v_table_wrapper"><div class="thead">`))
	assert.Contains(t, html, `<div class="fancy_table_cell" data-key="name" style="flex:1;text-align:start">Name</div>`)
	assert.Contains(t, html, `<div class="fancy_table_cell" data-key="age" style="width:100px;text-align:end">Age</div>`)
	assert.Contains(t, html, `<div class="fancy_v_table_content" id="content-1"><div class="container" style="height:2000px">`)
	assert.Contains(t, html, `<div class="fancy_v_table_row" data-key="p2" data-index="2" style="height:20px;top:40px">`)
	assert.Equal(t, 3, strings.Count(html, `class="fancy_v_table_row"`))
	assert.True(t, strings.HasSuffix(html, `</div></div></section>`))
}

func TestHeaderAndBodyCellsShareMarkup(t *testing.T) {
	columns := []Column[Record]{{DataIndex: "name", Title: `A&B`, Width: Px(40), ContentTextAlign: AlignCenter, HeaderTextAlign: AlignCenter}}
	r := NewRenderer(columns, RecordKey("id"))
	frame := r.Frame([]Record{{"id": "x", "name": `A&B`}}, ViewportState{RowHeight: 10, StartIndex: 0, EndIndex: 1})

	html := renderString(t, func(buf *bytes.Buffer) error {
		return FrameHTML(frame, "content-1").Render(context.Background(), buf)
	})

	cell := `<div class="fancy_table_cell" data-key="name" style="width:40px;text-align:center">A&amp;B</div>`
	assert.Equal(t, 2, strings.Count(html, cell), "header and body cell render identically")
}

func TestBodyHTMLEscapesContent(t *testing.T) {
	columns := []Column[Record]{{DataIndex: "name", Title: "Name"}}
	r := NewRenderer(columns, nil)
	records := []Record{{"name": `<script>alert("x")</script>`}}
	frame := r.Frame(records, ViewportState{RowHeight: 10, StartIndex: 0, EndIndex: 1})

	html := renderString(t, func(buf *bytes.Buffer) error {
		return BodyHTML(frame).Render(context.Background(), buf)
	})

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestBodyHTMLEmptyWindow(t *testing.T) {
	r := NewRenderer([]Column[Record]{{DataIndex: "name", Title: "Name"}}, nil)
	frame := r.Frame(nil, ViewportState{RowHeight: 10})

	html := renderString(t, func(buf *bytes.Buffer) error {
		return BodyHTML(frame).Render(context.Background(), buf)
	})
	assert.Empty(t, html)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestFrameHTMLWriteError(t *testing.T) {
	r := NewRenderer([]Column[Record]{{DataIndex: "name", Title: "Name"}}, nil)
	frame := r.Frame(people(3), ViewportState{RowHeight: 10, StartIndex: 0, EndIndex: 3})

	err := FrameHTML(frame, "c").Render(context.Background(), failingWriter{})
	assert.Error(t, err)
}
