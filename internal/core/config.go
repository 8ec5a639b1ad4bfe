package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. VTABLE_SERVER_ADDR
const EnvPrefix = "VTABLE"

// Config holds the application settings
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Table  TableConfig  `mapstructure:"table"`
	Server ServerConfig `mapstructure:"server"`
	Watch  WatchConfig  `mapstructure:"watch"`
	Kube   KubeConfig   `mapstructure:"kube"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"` // console or json
}

// TableConfig holds table defaults that definitions may override
type TableConfig struct {
	RowCount int    `mapstructure:"rowCount"`
	Theme    string `mapstructure:"theme"`
}

// ServerConfig configures the HTML preview server
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// WatchConfig configures file watching
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// KubeConfig configures Kubernetes access
type KubeConfig struct {
	Config    string `mapstructure:"config"`
	Context   string `mapstructure:"context"`
	Namespace string `mapstructure:"namespace"`
}

// SetDefaults registers the default settings on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", DefaultLogFile())
	v.SetDefault("log.format", "console")
	v.SetDefault("table.rowCount", 10)
	v.SetDefault("table.theme", "default")
	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("watch.debounce", 200*time.Millisecond)
	v.SetDefault("kube.config", "")
	v.SetDefault("kube.context", "")
	v.SetDefault("kube.namespace", "")
}

// NewViper creates a viper instance with defaults and VTABLE_* environment binding.
// configFile overrides the default ~/.config/vtable/config.yaml lookup.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if envFile := os.Getenv(EnvPrefix + "_CONFIG_FILE"); envFile != "" {
		v.SetConfigFile(envFile)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "vtable"))
		}
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// LoadConfig reads the settings out of v and validates them
func LoadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if config.Kube.Config == "" {
		config.Kube.Config = os.Getenv("KUBECONFIG")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Validate checks setting ranges
func (c *Config) Validate() error {
	if c.Table.RowCount < 1 {
		return fmt.Errorf("table.rowCount must be at least 1, got %d", c.Table.RowCount)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// DefaultLogFile returns $XDG_STATE_HOME/vtable/vtable.log, falling back to ~/.local/state
func DefaultLogFile() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "vtable", "vtable.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vtable.log")
	}
	return filepath.Join(home, ".local", "state", "vtable", "vtable.log")
}
