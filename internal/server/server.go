// Package server serves a table as HTML and keeps each browser's window in sync over a websocket.
//
// Every connection is its own table instance with its own viewport. The browser reports the
// scroll element's height and scroll offset; the server answers with the rows of the window.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/HamStudy/vtable/internal/components/performance"
	"github.com/HamStudy/vtable/internal/components/table"
	"github.com/HamStudy/vtable/internal/core"
	"github.com/HamStudy/vtable/internal/source"
)

const shutdownTimeout = 5 * time.Second

// Message types
const (
	TypeHello  = "hello"
	TypeFrame  = "frame"
	TypeMount  = "mount"
	TypeResize = "resize"
	TypeScroll = "scroll"
)

// ClientMessage is sent by the browser
type ClientMessage struct {
	Type   string  `json:"type"`
	Target string  `json:"target"`
	Height float64 `json:"height,omitempty"`
	Offset float64 `json:"offset,omitempty"`
}

// HelloMessage tells the browser which id its scroll element has
type HelloMessage struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// FrameMessage carries the rows of the current window
type FrameMessage struct {
	Type   string  `json:"type"`
	Spacer float64 `json:"spacer"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Total  int     `json:"total"`
	HTML   string  `json:"html"`
}

// Options configures a Server
type Options struct {
	Addr     string
	Title    string
	RowCount int
	Logger   zerolog.Logger
	Monitor  *performance.Monitor
}

// Server renders records from a source for any number of browsers
type Server struct {
	src      source.Source
	renderer *table.Renderer[table.Record]
	state    *core.State
	opts     Options
	hub      *hub
	logger   zerolog.Logger

	mu      sync.RWMutex
	records []table.Record
}

// New creates a server. Call Reload before serving to load the first records.
func New(src source.Source, columns []table.Column[table.Record], rowKey func(table.Record) string, state *core.State, opts Options) *Server {
	if opts.RowCount < 1 {
		opts.RowCount = table.DefaultRowCount
	}
	if opts.Title == "" {
		opts.Title = src.Describe()
	}
	if opts.Monitor == nil {
		opts.Monitor = performance.NewMonitor()
	}
	return &Server{
		src:      src,
		renderer: table.NewRenderer(columns, rowKey),
		state:    state,
		opts:     opts,
		hub:      newHub(),
		logger:   opts.Logger,
	}
}

// Reload loads the source and pushes the new records to every connection.
// A failed load keeps the previous records.
func (s *Server) Reload(ctx context.Context) error {
	records, err := s.src.Load(ctx)
	s.state.RecordReload(len(records), err, time.Now())
	if err != nil {
		return fmt.Errorf("reload %s: %w", s.src.Describe(), err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	s.hub.broadcast()
	s.logger.Info().Int("records", len(records)).Int("connections", s.hub.count()).Msg("records reloaded")
	return nil
}

func (s *Server) snapshot() []table.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Handler returns the HTTP routes: the page, the websocket and a metrics summary
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/debug/metrics", s.handleMetrics)
	return mux
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	records := s.snapshot()
	vp := s.newViewport()
	vp.SetTotal(len(records))
	frame := s.renderer.Frame(records, vp.State())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(s.opts.Title, frame).Render(r.Context(), w); err != nil {
		s.logger.Warn().Err(err).Msg("failed to render page")
	}
}

func (s *Server) newViewport() *table.Viewport {
	return table.NewViewport(s.opts.RowCount, table.WithDefaultRowHeight(table.DefaultHTMLRowHeight))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	summary := map[string]any{
		"source":      snap.Source,
		"records":     snap.RecordCount,
		"reloads":     snap.Reloads,
		"connections": s.hub.count(),
		"timings":     s.opts.Monitor.Summary(),
	}
	if snap.LastError != nil {
		summary["last_error"] = snap.LastError.Error()
	}
	writeJSON(w, summary)
}

// Run serves until ctx is done, then shuts down gracefully.
// With a watcher, source changes trigger a reload.
func (s *Server) Run(ctx context.Context, watcher source.Watcher) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln, watcher)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener, watcher source.Watcher) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("serving")
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if watcher != nil {
		g.Go(func() error {
			return watcher.Watch(gCtx, func() {
				if err := s.Reload(gCtx); err != nil {
					s.logger.Error().Err(err).Msg("reload failed")
				}
			})
		})
	}

	return g.Wait()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	sess := &session{
		server:   s,
		conn:     conn,
		viewport: s.newViewport(),
	}
	sess.logger = s.logger.With().Str("viewport", sess.viewport.ID()).Logger()

	err = sess.run(r.Context())
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		sess.logger.Debug().Msg("connection closed")
	default:
		if err != nil && !errors.Is(err, context.Canceled) {
			sess.logger.Warn().Err(err).Msg("connection ended")
		}
	}
}

// session owns one connection and its viewport. Only run's goroutine touches the viewport.
type session struct {
	server   *Server
	conn     *websocket.Conn
	viewport *table.Viewport
	records  []table.Record
	logger   zerolog.Logger
}

func (c *session) run(ctx context.Context) error {
	notify := c.server.hub.register()
	defer c.server.hub.unregister(notify)

	c.records = c.server.snapshot()
	c.viewport.SetTotal(len(c.records))

	if err := wsjson.Write(ctx, c.conn, HelloMessage{Type: TypeHello, Target: c.viewport.ID()}); err != nil {
		return err
	}

	msgs := make(chan ClientMessage)
	readErr := make(chan error, 1)
	go func() {
		for {
			var msg ClientMessage
			if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case <-notify:
			c.records = c.server.snapshot()
			c.viewport.SetTotal(len(c.records))
			if c.viewport.IsMounted() {
				if off := c.viewport.MaxOffset(); c.viewport.Offset() > off {
					c.viewport.HandleScroll(table.ScrollEvent{Target: c.viewport.ID(), Offset: off})
				}
				if err := c.sendFrame(ctx); err != nil {
					return err
				}
			}
		case msg := <-msgs:
			if err := c.handle(ctx, msg); err != nil {
				return err
			}
		}
	}
}

// handle applies one browser message. Messages for another element are ignored.
func (c *session) handle(ctx context.Context, msg ClientMessage) error {
	if msg.Target != c.viewport.ID() {
		c.logger.Debug().Str("type", msg.Type).Str("target", msg.Target).Msg("ignoring message for another element")
		return nil
	}

	switch msg.Type {
	case TypeMount:
		c.viewport.Mount(msg.Height)
		return c.sendFrame(ctx)
	case TypeResize:
		if c.viewport.Resize(msg.Height) {
			return c.sendFrame(ctx)
		}
	case TypeScroll:
		before := c.viewport.Window()
		if c.viewport.HandleScroll(table.ScrollEvent{Target: msg.Target, Offset: msg.Offset}) && c.viewport.Window() != before {
			return c.sendFrame(ctx)
		}
	default:
		c.logger.Debug().Str("type", msg.Type).Msg("unknown message type")
	}
	return nil
}

func (c *session) sendFrame(ctx context.Context) error {
	stop := c.server.opts.Monitor.StartTimer("server.frame")
	frame := c.server.renderer.Frame(c.records, c.viewport.State())

	var buf bytes.Buffer
	if err := table.BodyHTML(frame).Render(ctx, &buf); err != nil {
		stop()
		return err
	}
	stop()

	return wsjson.Write(ctx, c.conn, FrameMessage{
		Type:   TypeFrame,
		Spacer: frame.SpacerHeight,
		Start:  frame.Window.Start,
		End:    frame.Window.End,
		Total:  frame.Total,
		HTML:   buf.String(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
