package server

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/HamStudy/vtable/internal/components/table"
)

// pageContentID is the scroll element id before the socket assigns the viewport id
const pageContentID = "vtable-content"

const pageCSS = `
html, body { height: 100%; margin: 0; font-family: sans-serif; }
main { height: 100vh; display: flex; flex-direction: column; }
.status { padding: 4px 8px; font-size: 12px; color: #666; }
.fancy_v_table_wrapper { display: flex; flex-direction: column; height: 100%; min-height: 0; }
.thead {
  min-height: 54px;
  font-weight: 500;
  background: linear-gradient(0deg, rgba(0, 0, 0, 0.03), rgba(0, 0, 0, 0.03)), #ffffff;
  box-shadow: inset 0px -1px 0px rgba(0, 0, 0, 0.08);
  display: flex;
  align-items: center;
}
.fancy_v_table_content { height: 100%; min-height: 0; overflow-y: hidden; padding-right: 8px; }
.fancy_v_table_content:hover { padding-right: 0; overflow-y: auto; }
.fancy_v_table_content::-webkit-scrollbar { width: 8px; }
.fancy_v_table_content::-webkit-scrollbar-track { background-color: #e4e4e4; border-radius: 8px; }
.fancy_v_table_content::-webkit-scrollbar-thumb { background-color: #d4aa70; border-radius: 8px; }
.container { position: relative; }
.fancy_v_table_row {
  display: flex;
  align-items: center;
  position: absolute;
  left: 0;
  right: 0;
  border-bottom: 1px solid #eee;
}
.fancy_table_cell { padding-left: 8px; padding-right: 8px; overflow: hidden; white-space: nowrap; text-overflow: ellipsis; }
`

// pageJS keeps the socket informed of the content element's size and scroll position
// and swaps in the rows of each frame it receives.
const pageJS = `
(function () {
  var content = document.getElementById("` + pageContentID + `");
  var spacer = content.firstElementChild;
  var status = document.getElementById("vtable-status");
  var target = null;
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");

  function send(msg) {
    if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }

  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "hello") {
      target = msg.target;
      content.id = target;
      send({ type: "mount", target: target, height: content.clientHeight });
      new ResizeObserver(function () {
        send({ type: "resize", target: target, height: content.clientHeight });
      }).observe(content);
    } else if (msg.type === "frame") {
      spacer.style.height = msg.spacer + "px";
      spacer.innerHTML = msg.html;
      status.textContent = "rows " + msg.start + "-" + msg.end + " of " + msg.total;
    }
  };
  ws.onclose = function () { status.textContent = "disconnected"; };

  content.addEventListener("scroll", function () {
    if (target) send({ type: "scroll", target: target, offset: content.scrollTop });
  });
})();
`

// Page renders the full document with the first frame already in place
func Page(title string, frame table.Frame) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`+
			templ.EscapeString(title)+`</title><style>`+pageCSS+`</style></head><body><main>`); err != nil {
			return err
		}
		if err := table.FrameHTML(frame, pageContentID).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<div class="status" id="vtable-status"></div></main><script>`+pageJS+`</script></body></html>`)
		return err
	})
}
