// Package source loads the records a table displays.
package source

import (
	"context"
	"time"

	"github.com/HamStudy/vtable/internal/components/table"
)

// Source loads a full record set. Load is called again on every reload.
type Source interface {
	Load(ctx context.Context) ([]table.Record, error)
	Describe() string
}

// Watcher is a Source that can report changes.
// Watch blocks until ctx is done, calling onChange after each settled change.
type Watcher interface {
	Source
	Watch(ctx context.Context, onChange func()) error
}

// Static serves a fixed record set
type Static struct {
	Name    string
	Records []table.Record
}

// Load returns the records
func (s *Static) Load(context.Context) ([]table.Record, error) {
	return s.Records, nil
}

// Describe names the source
func (s *Static) Describe() string {
	if s.Name == "" {
		return "inline data"
	}
	return s.Name
}

// Polling turns any Source into a Watcher that reports a change every Interval
type Polling struct {
	Source
	Interval time.Duration
}

// Watch ticks until ctx is done
func (p *Polling) Watch(ctx context.Context, onChange func()) error {
	if p.Interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			onChange()
		}
	}
}
