package core

import (
	"sync"
	"time"
)

// State holds what the surfaces show about the record source.
// It is shared between the source's reload goroutine and the UI.
type State struct {
	mu sync.RWMutex

	// Source description, e.g. "file servers.yaml" or "kube pods (all namespaces)"
	Source string

	RecordCount int
	Reloads     int
	LastReload  time.Time
	LastError   error

	config *Config
}

// NewState creates a new application state
func NewState(config *Config, source string) *State {
	return &State{
		Source: source,
		config: config,
	}
}

// Config returns the settings the state was created with
func (s *State) Config() *Config {
	return s.config
}

// RecordReload stores the outcome of a source load
func (s *State) RecordReload(count int, err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Reloads++
	s.LastReload = at
	s.LastError = err
	if err == nil {
		s.RecordCount = count
	}
}

// Snapshot returns a copy safe to read without the lock
func (s *State) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StateSnapshot{
		Source:      s.Source,
		RecordCount: s.RecordCount,
		Reloads:     s.Reloads,
		LastReload:  s.LastReload,
		LastError:   s.LastError,
	}
}

// StateSnapshot is a point-in-time copy of State
type StateSnapshot struct {
	Source      string
	RecordCount int
	Reloads     int
	LastReload  time.Time
	LastError   error
}
