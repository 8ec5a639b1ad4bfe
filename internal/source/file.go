package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/HamStudy/vtable/internal/components/performance"
	"github.com/HamStudy/vtable/internal/components/table"
)

// DefaultDebounce is how long the file must be quiet before a reload
const DefaultDebounce = 200 * time.Millisecond

// File reads records from a YAML (or JSON) file.
// The document is either a list of mappings or a mapping with a "records" or "data" list.
type File struct {
	Path     string
	Debounce time.Duration
	Logger   zerolog.Logger
}

// NewFile creates a file source
func NewFile(path string) *File {
	return &File{
		Path:     path,
		Debounce: DefaultDebounce,
		Logger:   zerolog.Nop(),
	}
}

// Describe names the source
func (f *File) Describe() string {
	return "file " + f.Path
}

// Load reads and decodes the file
func (f *File) Load(ctx context.Context) ([]table.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	records, err := DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return records, nil
}

// DecodeRecords decodes a record document
func DecodeRecords(data []byte) ([]table.Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	if node.Kind == 0 {
		return nil, nil // empty document
	}

	doc := &node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}

	switch doc.Kind {
	case yaml.SequenceNode:
		return decodeList(doc)
	case yaml.MappingNode:
		for i := 0; i+1 < len(doc.Content); i += 2 {
			key := doc.Content[i].Value
			if key == "records" || key == "data" {
				return decodeList(doc.Content[i+1])
			}
		}
		return nil, errors.New(`mapping document needs a "records" or "data" list`)
	case yaml.ScalarNode:
		if doc.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("line %d: records must be a list or a mapping", doc.Line)
}

func decodeList(node *yaml.Node) ([]table.Record, error) {
	var rows []map[string]any
	if err := node.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	records := make([]table.Record, len(rows))
	for i, row := range rows {
		if row == nil {
			row = map[string]any{}
		}
		records[i] = table.Record(row)
	}
	return records, nil
}

// Watch calls onChange after the file is written, created or replaced.
// The parent directory is watched so editors that save via rename are seen.
func (f *File) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(f.Path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	delay := f.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}

	var mu sync.Mutex
	closed := false
	debouncer := performance.NewDebouncer(delay, func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			onChange()
		}
	})
	defer func() {
		debouncer.Cancel()
		mu.Lock()
		closed = true
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				f.Logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("file changed")
				debouncer.Trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.Logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}
