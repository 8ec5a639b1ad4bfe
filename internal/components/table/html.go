package table

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/HamStudy/vtable/internal/components/style"
)

// FrameHTML renders the whole table: header strip, scroll content element and spacer with the window's rows.
// contentID is the id of the scroll element; scroll events must name it as their target.
func FrameHTML(frame Frame, contentID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="fancy_v_table_wrapper">`)

		hw.raw(`<div class="` + style.ClassHeader + `">`)
		for _, cell := range frame.Header {
			hw.cell(cell.Key, cell.Style, cell.Title)
		}
		hw.raw(`</div>`)

		hw.raw(`<div class="` + style.ClassContent + `" id="`)
		hw.text(contentID)
		hw.raw(`"><div class="` + style.ClassContainer + `" style="height:` + px(frame.SpacerHeight) + `">`)
		if hw.err != nil {
			return hw.err
		}
		if err := BodyHTML(frame).Render(ctx, w); err != nil {
			return err
		}
		hw.raw(`</div></div></section>`)
		return hw.err
	})
}

// BodyHTML renders only the rows of the frame's window, each absolutely positioned at its top offset
func BodyHTML(frame Frame) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		for _, row := range frame.Rows {
			hw.raw(`<div class="` + style.ClassRow + `" data-key="`)
			hw.text(row.Key)
			hw.raw(`" data-index="` + strconv.Itoa(row.Index) + `" style="height:` + px(row.Height) + `;top:` + px(row.Top) + `">`)
			for _, cell := range row.Cells {
				hw.cell(cell.Key, cell.Style, cell.Content)
			}
			hw.raw(`</div>`)
		}
		return hw.err
	})
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// htmlWriter keeps the first write error so markup can be emitted without checking every call
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// cell writes one header or body cell
func (hw *htmlWriter) cell(key string, cs CellStyle, content string) {
	hw.raw(`<div class="` + style.ClassCell + `" data-key="`)
	hw.text(key)
	hw.raw(`" style="`)
	hw.text(cs.CSS())
	hw.raw(`">`)
	hw.text(content)
	hw.raw(`</div>`)
}
