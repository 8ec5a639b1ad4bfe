package resource

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/HamStudy/vtable/configs/resources"
)

// Loader handles loading resource definitions from various sources
type Loader struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewLoader creates a new resource loader
func NewLoader() *Loader {
	return &Loader{
		registry: NewRegistry(),
		logger:   zerolog.Nop(),
	}
}

// SetLogger sets the logger used to report skipped files
func (l *Loader) SetLogger(logger zerolog.Logger) {
	l.logger = logger
}

// LoadEmbedded loads all embedded resource definitions
func (l *Loader) LoadEmbedded() error {
	embeddedFS, err := resources.GetFS()
	if err != nil {
		return fmt.Errorf("failed to get embedded filesystem: %w", err)
	}

	return fs.WalkDir(embeddedFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}

		data, err := fs.ReadFile(embeddedFS, path)
		if err != nil {
			return fmt.Errorf("failed to read embedded file %s: %w", path, err)
		}
		if err := l.LoadFromData(data); err != nil {
			return fmt.Errorf("embedded %s: %w", path, err)
		}
		return nil
	})
}

// LoadFromFile loads a resource definition from a file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := l.LoadFromData(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadFromDirectory loads all resource definitions below a directory.
// Files that fail to load are logged and skipped.
func (l *Loader) LoadFromDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to access directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}
		if err := l.LoadFromFile(path); err != nil {
			l.logger.Warn().Err(err).Str("path", path).Msg("skipping resource definition")
		}
		return nil
	})
}

// LoadUserOverrides loads user-defined resource overrides from ~/.config/vtable/resources/
func (l *Loader) LoadUserOverrides() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	configDir := filepath.Join(homeDir, ".config", "vtable", "resources")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil
	}

	return l.LoadFromDirectory(configDir)
}

// LoadAll loads embedded resources and then user overrides
func (l *Loader) LoadAll() error {
	if err := l.LoadEmbedded(); err != nil {
		return fmt.Errorf("failed to load embedded resources: %w", err)
	}
	if err := l.LoadUserOverrides(); err != nil {
		return fmt.Errorf("failed to load user overrides: %w", err)
	}
	return nil
}

// LoadFromData loads a resource definition from raw YAML data
func (l *Loader) LoadFromData(data []byte) error {
	var def ResourceDefinition
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return fmt.Errorf("failed to parse YAML data: %w", err)
	}

	if err := l.registry.Register(&def); err != nil {
		return fmt.Errorf("failed to register resource: %w", err)
	}
	return nil
}

// GetRegistry returns the resource registry
func (l *Loader) GetRegistry() *Registry {
	return l.registry
}

// GetDefaultLoader creates and initializes a loader with all default resources
func GetDefaultLoader(logger zerolog.Logger) (*Loader, error) {
	loader := NewLoader()
	loader.SetLogger(logger)
	if err := loader.LoadAll(); err != nil {
		return nil, err
	}
	return loader, nil
}

func isYAML(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
