package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HamStudy/vtable/internal/components/table"
)

// Definition is a table definition file: columns, row identity and where the records come from
type Definition struct {
	RowCount int                 `yaml:"rowCount"`
	RowKey   string              `yaml:"rowKey"`
	Theme    string              `yaml:"theme"`
	Columns  []*ColumnDefinition `yaml:"columns"`
	Data     []map[string]any    `yaml:"data"`
	DataFile string              `yaml:"dataFile"`

	// dir is the directory of the definition file, used to resolve DataFile
	dir string
}

// ColumnDefinition defines a single column
type ColumnDefinition struct {
	DataIndex        string      `yaml:"dataIndex"`
	Title            string      `yaml:"title"`
	Key              string      `yaml:"key"`
	Width            ColumnWidth `yaml:"width"`
	HeaderTextAlign  string      `yaml:"headerTextAlign"`
	ContentTextAlign string      `yaml:"contentTextAlign"`
	Format           string      `yaml:"format"`
}

// ColumnWidth is a number (fixed units) or a string passed through verbatim
type ColumnWidth struct {
	table.Width
}

// UnmarshalYAML decodes a width scalar
func (w *ColumnWidth) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: width must be a number or a string", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		n, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid width %q: %w", node.Line, node.Value, err)
		}
		if n < 0 {
			return fmt.Errorf("line %d: width must not be negative", node.Line)
		}
		w.Width = table.Px(n)
	case "!!null":
		w.Width = table.Width{}
	default:
		w.Width = table.Size(node.Value)
	}
	return nil
}

// Loader loads table definitions
type Loader struct {
	formats *Formats
}

// NewLoader creates a new definition loader using the built-in formats
func NewLoader() *Loader {
	return &Loader{formats: DefaultFormats()}
}

// Formats returns the format registry used to validate and build columns
func (l *Loader) Formats() *Formats {
	return l.formats
}

// LoadFile loads a definition from a file
func (l *Loader) LoadFile(path string) (*Definition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	def, err := l.parseConfig(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	def.dir = filepath.Dir(path)
	return def, nil
}

// LoadString loads a definition from a string
func (l *Loader) LoadString(content string) (*Definition, error) {
	return l.parseConfig(strings.NewReader(content))
}

// parseConfig parses a definition from a reader
func (l *Loader) parseConfig(r io.Reader) (*Definition, error) {
	var def Definition
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // Strict parsing

	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}

	if err := l.validateConfig(&def); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}

	return &def, nil
}

// validateConfig validates a definition and fills defaults
func (l *Loader) validateConfig(def *Definition) error {
	if def.RowCount < 0 {
		return fmt.Errorf("rowCount must be positive, got %d", def.RowCount)
	}
	if def.RowCount == 0 {
		def.RowCount = table.DefaultRowCount
	}

	if len(def.Columns) == 0 {
		return fmt.Errorf("at least one column is required")
	}

	for i, col := range def.Columns {
		if col == nil {
			return fmt.Errorf("column %d is empty", i)
		}
		if col.DataIndex == "" {
			return fmt.Errorf("column %d must have a dataIndex", i)
		}
		if col.Title == "" {
			return fmt.Errorf("column %s must have a title", col.DataIndex)
		}
		if _, err := table.ParseAlign(col.HeaderTextAlign); err != nil {
			return fmt.Errorf("column %s: headerTextAlign: %w", col.DataIndex, err)
		}
		if _, err := table.ParseAlign(col.ContentTextAlign); err != nil {
			return fmt.Errorf("column %s: contentTextAlign: %w", col.DataIndex, err)
		}
		if col.Format != "" {
			if _, err := l.formats.Lookup(col.Format); err != nil {
				return fmt.Errorf("column %s: %w", col.DataIndex, err)
			}
		}
	}

	if len(def.Data) > 0 && def.DataFile != "" {
		return fmt.Errorf("data and dataFile are mutually exclusive")
	}

	return nil
}

// BuildColumns turns the column definitions into table columns
func (l *Loader) BuildColumns(def *Definition) ([]table.Column[table.Record], error) {
	columns := make([]table.Column[table.Record], 0, len(def.Columns))
	for _, col := range def.Columns {
		headerAlign, err := table.ParseAlign(col.HeaderTextAlign)
		if err != nil {
			return nil, err
		}
		contentAlign, err := table.ParseAlign(col.ContentTextAlign)
		if err != nil {
			return nil, err
		}

		c := table.Column[table.Record]{
			DataIndex:        col.DataIndex,
			Title:            col.Title,
			Key:              col.Key,
			Width:            col.Width.Width,
			HeaderTextAlign:  headerAlign,
			ContentTextAlign: contentAlign,
		}
		if col.Format != "" {
			render, err := l.formats.Lookup(col.Format)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.DataIndex, err)
			}
			c.Render = render
		}
		columns = append(columns, c)
	}
	return columns, nil
}

// RowKeyFunc returns the row key function, or nil when rows are keyed by index
func (d *Definition) RowKeyFunc() func(table.Record) string {
	if d.RowKey == "" {
		return nil
	}
	return table.RecordKey(d.RowKey)
}

// DataPath returns DataFile resolved against the definition's directory
func (d *Definition) DataPath() string {
	if d.DataFile == "" || filepath.IsAbs(d.DataFile) {
		return d.DataFile
	}
	return filepath.Join(d.dir, d.DataFile)
}

// Records returns the inline data as records
func (d *Definition) Records() []table.Record {
	records := make([]table.Record, len(d.Data))
	for i, row := range d.Data {
		records[i] = table.Record(row)
	}
	return records
}
