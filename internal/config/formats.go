package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/reflow/truncate"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/HamStudy/vtable/internal/components/table"
)

// FormatFunc formats a cell value
type FormatFunc func(value any) string

// FormatFactory builds a FormatFunc from the argument after the colon in "name:arg"
type FormatFactory func(arg string) (FormatFunc, error)

// Formats is a registry of named cell formats
type Formats struct {
	mu        sync.RWMutex
	factories map[string]FormatFactory
	printer   *message.Printer
}

// NewFormats creates an empty registry
func NewFormats() *Formats {
	return &Formats{
		factories: make(map[string]FormatFactory),
		printer:   message.NewPrinter(language.English),
	}
}

// DefaultFormats returns a registry with number, percent, upper, lower, yesno and truncate
func DefaultFormats() *Formats {
	f := NewFormats()
	f.Register("number", f.noArg(f.formatNumber))
	f.Register("percent", f.noArg(f.formatPercent))
	f.Register("upper", f.noArg(caser(cases.Upper(language.Und))))
	f.Register("lower", f.noArg(caser(cases.Lower(language.Und))))
	f.Register("yesno", f.noArg(formatYesNo))
	f.Register("truncate", func(arg string) (FormatFunc, error) {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("truncate needs a positive length, got %q", arg)
		}
		return func(v any) string {
			return truncate.StringWithTail(fmt.Sprint(v), uint(n), "…")
		}, nil
	})
	return f
}

// Register adds or replaces a format
func (f *Formats) Register(name string, factory FormatFactory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.factories[name] = factory
}

// Names returns the registered format names
func (f *Formats) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.factories))
	for name := range f.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a format spec such as "number" or "truncate:12" into a cell render function.
// Nil values always render empty.
func (f *Formats) Lookup(spec string) (table.RenderFunc[table.Record], error) {
	name, arg, _ := strings.Cut(spec, ":")

	f.mu.RLock()
	factory, ok := f.factories[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown format %q", name)
	}

	format, err := factory(arg)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}

	return func(value any, _ table.Record, _ int) string {
		if value == nil {
			return ""
		}
		return format(value)
	}, nil
}

func (f *Formats) noArg(format FormatFunc) FormatFactory {
	return func(arg string) (FormatFunc, error) {
		if arg != "" {
			return nil, fmt.Errorf("takes no argument")
		}
		return format, nil
	}
}

func (f *Formats) formatNumber(v any) string {
	n, ok := toFloat(v)
	if !ok {
		return fmt.Sprint(v)
	}
	return f.printer.Sprint(number.Decimal(n))
}

func (f *Formats) formatPercent(v any) string {
	n, ok := toFloat(v)
	if !ok {
		return fmt.Sprint(v)
	}
	return f.printer.Sprint(number.Percent(n))
}

func caser(c cases.Caser) FormatFunc {
	return func(v any) string {
		return c.String(fmt.Sprint(v))
	}
}

func formatYesNo(v any) string {
	switch b := v.(type) {
	case bool:
		if b {
			return "yes"
		}
		return "no"
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return formatYesNo(parsed)
		}
		return b
	}
	if n, ok := toFloat(v); ok {
		return formatYesNo(n != 0)
	}
	return fmt.Sprint(v)
}

// toFloat converts the numeric kinds yaml.v3 and JSON decoding produce
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
