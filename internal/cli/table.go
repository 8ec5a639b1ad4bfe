package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HamStudy/vtable/internal/components/style"
	"github.com/HamStudy/vtable/internal/components/table"
	"github.com/HamStudy/vtable/internal/config"
	"github.com/HamStudy/vtable/internal/source"
)

// tableSpec is everything needed to put a record source on screen
type tableSpec struct {
	columns  []table.Column[table.Record]
	rowKey   func(table.Record) string
	rowCount int
	theme    string
	src      source.Source
}

// tableFlags are the flags shared by commands that display a definition
type tableFlags struct {
	rows     int
	generate int
	seed     int64
	theme    string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.rows, "rows", 0, "rows visible at once (overrides the definition)")
	cmd.Flags().IntVar(&f.generate, "generate", 0, "show N generated records instead of a definition")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "seed for generated records")
	cmd.Flags().StringVar(&f.theme, "theme", "", "theme: default, light, high-contrast or a theme file")
}

// loadTable builds a tableSpec from a definition file, or from generated data with --generate
func (e *env) loadTable(args []string, f *tableFlags) (*tableSpec, error) {
	spec, err := e.tableFromArgs(args, f)
	if err != nil {
		return nil, err
	}
	if f.rows > 0 {
		spec.rowCount = f.rows
	}
	if f.theme != "" {
		spec.theme = f.theme
	}
	if spec.theme == "" {
		spec.theme = e.config.Table.Theme
	}
	return spec, nil
}

func (e *env) tableFromArgs(args []string, f *tableFlags) (*tableSpec, error) {
	if f.generate > 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("--generate does not take a definition file")
		}
		return &tableSpec{
			columns:  source.GeneratedColumns(),
			rowKey:   table.RecordKey("id"),
			rowCount: e.config.Table.RowCount,
			src:      &source.Generated{Count: f.generate, Seed: f.seed},
		}, nil
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("expected a definition file or --generate")
	}

	loader := config.NewLoader()
	def, err := loader.LoadFile(args[0])
	if err != nil {
		return nil, err
	}
	columns, err := loader.BuildColumns(def)
	if err != nil {
		return nil, err
	}

	spec := &tableSpec{
		columns:  columns,
		rowKey:   def.RowKeyFunc(),
		rowCount: def.RowCount,
		theme:    def.Theme,
	}
	if path := def.DataPath(); path != "" {
		file := source.NewFile(path)
		file.Debounce = e.config.Watch.Debounce
		file.Logger = e.logger.With().Str("component", "source").Logger()
		spec.src = file
	} else {
		spec.src = &source.Static{Name: "definition " + filepath.Base(args[0]), Records: def.Records()}
	}
	return spec, nil
}

// newModel creates a terminal table with the spec's columns and row key
func (s *tableSpec) newModel() *table.Model[table.Record] {
	tbl := table.New(s.columns, s.rowCount)
	tbl.SetRowKey(s.rowKey)
	return tbl
}

// resolveTheme finds a theme by name, or loads it from a file
func resolveTheme(name string) (*style.Theme, error) {
	theme, err := style.ThemeByName(name)
	if err == nil {
		return theme, nil
	}
	if ext := filepath.Ext(name); ext != ".yaml" && ext != ".yml" {
		return nil, err
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open theme: %w", err)
	}
	defer f.Close()
	return style.LoadTheme(f)
}
