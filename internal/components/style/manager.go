package style

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Class names shared by the terminal and HTML surfaces
const (
	ClassHeader    = "thead"
	ClassContent   = "fancy_v_table_content"
	ClassRow       = "fancy_v_table_row"
	ClassCell      = "fancy_table_cell"
	ClassContainer = "container"
	ClassScrollbar = "scrollbar"
	ClassThumb     = "scrollbar_thumb"
	ClassStatus    = "status"
	ClassError     = "error"
)

// Manager hands out lipgloss styles by class name for the current theme
type Manager struct {
	theme *Theme
	cache map[string]lipgloss.Style
	mu    sync.RWMutex
}

// Theme defines the table color scheme
type Theme struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Colors      *ColorScheme `yaml:"colors"`
}

// ColorScheme defines the color palette
type ColorScheme struct {
	Foreground lipgloss.Color `yaml:"foreground"`

	Header    *HeaderColors    `yaml:"header"`
	Row       *RowColors       `yaml:"row"`
	Scrollbar *ScrollbarColors `yaml:"scrollbar"`
	UI        *UIColors        `yaml:"ui"`
}

// HeaderColors for the header strip
type HeaderColors struct {
	Background lipgloss.Color `yaml:"background"`
	Foreground lipgloss.Color `yaml:"foreground"`
	Border     lipgloss.Color `yaml:"border"`
}

// RowColors for body rows
type RowColors struct {
	Foreground lipgloss.Color `yaml:"foreground"`
	Filler     lipgloss.Color `yaml:"filler"`
}

// ScrollbarColors for the track and thumb
type ScrollbarColors struct {
	Track lipgloss.Color `yaml:"track"`
	Thumb lipgloss.Color `yaml:"thumb"`
}

// UIColors for status line elements
type UIColors struct {
	Info  lipgloss.Color `yaml:"info"`
	Error lipgloss.Color `yaml:"error"`
}

// NewManager creates a new style manager with the default theme
func NewManager() *Manager {
	return &Manager{
		theme: getDefaultTheme(),
		cache: make(map[string]lipgloss.Style),
	}
}

// SetTheme sets the current theme
func (m *Manager) SetTheme(theme *Theme) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.theme = fillTheme(theme)
	m.cache = make(map[string]lipgloss.Style) // Clear cache
}

// GetTheme returns the current theme
func (m *Manager) GetTheme() *Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.theme
}

// LoadTheme decodes a YAML theme. Missing colors are taken from the default theme.
func LoadTheme(r io.Reader) (*Theme, error) {
	var theme Theme
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&theme); err != nil {
		return nil, fmt.Errorf("failed to parse theme: %w", err)
	}
	if theme.Name == "" {
		return nil, fmt.Errorf("theme must have a name")
	}
	return fillTheme(&theme), nil
}

// ThemeByName returns a built-in theme
func ThemeByName(name string) (*Theme, error) {
	switch name {
	case "", "default":
		return getDefaultTheme(), nil
	case "light":
		return GetLightTheme(), nil
	case "high-contrast":
		return GetHighContrastTheme(), nil
	}
	return nil, fmt.Errorf("unknown theme %q", name)
}

// Class returns the style for a class name. Unknown classes get an empty style.
func (m *Manager) Class(name string) lipgloss.Style {
	m.mu.RLock()
	style, ok := m.cache[name]
	m.mu.RUnlock()
	if ok {
		return style
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.theme.Colors
	switch name {
	case ClassHeader:
		style = lipgloss.NewStyle().
			Bold(true).
			Foreground(c.Header.Foreground).
			Background(c.Header.Background)
	case ClassRow:
		style = lipgloss.NewStyle().Foreground(c.Row.Foreground)
	case ClassContainer:
		style = lipgloss.NewStyle().Foreground(c.Row.Filler)
	case ClassScrollbar:
		style = lipgloss.NewStyle().Foreground(c.Scrollbar.Track)
	case ClassThumb:
		style = lipgloss.NewStyle().Foreground(c.Scrollbar.Thumb)
	case ClassStatus:
		style = lipgloss.NewStyle().Foreground(c.UI.Info)
	case ClassError:
		style = lipgloss.NewStyle().Foreground(c.UI.Error).Bold(true)
	default:
		style = lipgloss.NewStyle()
	}

	m.cache[name] = style
	return style
}

// ClearCache clears the style cache
func (m *Manager) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]lipgloss.Style)
}

func fillTheme(theme *Theme) *Theme {
	def := getDefaultTheme()
	if theme == nil {
		return def
	}
	if theme.Colors == nil {
		theme.Colors = def.Colors
		return theme
	}
	c := theme.Colors
	if c.Foreground == "" {
		c.Foreground = def.Colors.Foreground
	}
	if c.Header == nil {
		c.Header = def.Colors.Header
	}
	if c.Row == nil {
		c.Row = def.Colors.Row
	}
	if c.Scrollbar == nil {
		c.Scrollbar = def.Colors.Scrollbar
	}
	if c.UI == nil {
		c.UI = def.Colors.UI
	}
	return theme
}

// getDefaultTheme returns the default theme
func getDefaultTheme() *Theme {
	return &Theme{
		Name:        "default",
		Description: "Default dark theme",
		Colors: &ColorScheme{
			Foreground: lipgloss.Color("#d4d4d4"),
			Header: &HeaderColors{
				Background: lipgloss.Color("#2d2d2d"),
				Foreground: lipgloss.Color("#ffffff"),
				Border:     lipgloss.Color("#3c3c3c"),
			},
			Row: &RowColors{
				Foreground: lipgloss.Color("#d4d4d4"),
				Filler:     lipgloss.Color("#3c3c3c"),
			},
			Scrollbar: &ScrollbarColors{
				Track: lipgloss.Color("#e4e4e4"),
				Thumb: lipgloss.Color("#d4aa70"),
			},
			UI: &UIColors{
				Info:  lipgloss.Color("#569cd6"),
				Error: lipgloss.Color("#f44747"),
			},
		},
	}
}

// GetLightTheme returns a light theme
func GetLightTheme() *Theme {
	return &Theme{
		Name:        "light",
		Description: "Light theme",
		Colors: &ColorScheme{
			Foreground: lipgloss.Color("#000000"),
			Header: &HeaderColors{
				Background: lipgloss.Color("#f7f7f7"),
				Foreground: lipgloss.Color("#323130"),
				Border:     lipgloss.Color("#d1d1d1"),
			},
			Row: &RowColors{
				Foreground: lipgloss.Color("#000000"),
				Filler:     lipgloss.Color("#d1d1d1"),
			},
			Scrollbar: &ScrollbarColors{
				Track: lipgloss.Color("#e4e4e4"),
				Thumb: lipgloss.Color("#d4aa70"),
			},
			UI: &UIColors{
				Info:  lipgloss.Color("#0078d4"),
				Error: lipgloss.Color("#d13438"),
			},
		},
	}
}

// GetHighContrastTheme returns a high contrast theme
func GetHighContrastTheme() *Theme {
	return &Theme{
		Name:        "high-contrast",
		Description: "High contrast theme",
		Colors: &ColorScheme{
			Foreground: lipgloss.Color("#ffffff"),
			Header: &HeaderColors{
				Background: lipgloss.Color("#000000"),
				Foreground: lipgloss.Color("#ffffff"),
				Border:     lipgloss.Color("#ffffff"),
			},
			Row: &RowColors{
				Foreground: lipgloss.Color("#ffffff"),
				Filler:     lipgloss.Color("#808080"),
			},
			Scrollbar: &ScrollbarColors{
				Track: lipgloss.Color("#808080"),
				Thumb: lipgloss.Color("#ffff00"),
			},
			UI: &UIColors{
				Info:  lipgloss.Color("#00ffff"),
				Error: lipgloss.Color("#ff0000"),
			},
		},
	}
}
