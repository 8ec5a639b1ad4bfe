package server

import "sync"

// hub fans reload notifications out to connections.
// Each connection holds a one-slot channel; pending notifications coalesce.
type hub struct {
	mu    sync.Mutex
	conns map[chan struct{}]struct{}
}

func newHub() *hub {
	return &hub{conns: make(map[chan struct{}]struct{})}
}

func (h *hub) register() chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.conns[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unregister(ch chan struct{}) {
	h.mu.Lock()
	delete(h.conns, ch)
	h.mu.Unlock()
}

func (h *hub) broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.conns {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
