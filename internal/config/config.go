// Package config loads spectra-mcp settings from flags, SPECTRA_* environment
// variables and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/spectra-mcp/internal/imaging"
)

// EnvPrefix is prepended to every environment override, e.g. SPECTRA_LOG_LEVEL.
const EnvPrefix = "SPECTRA"

// Config holds the resolved settings.
type Config struct {
	LogLevel       string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	FrequencyTable string `mapstructure:"frequency_table" json:"frequency_table" yaml:"frequency_table"`
	Project        string `mapstructure:"project" json:"project" yaml:"project"`
	PDF            string `mapstructure:"pdf" json:"pdf" yaml:"pdf"`
	Output         string `mapstructure:"output" json:"output" yaml:"output"`
	PageDir        string `mapstructure:"page_dir" json:"page_dir" yaml:"page_dir"`
	PagePattern    string `mapstructure:"page_pattern" json:"page_pattern" yaml:"page_pattern"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    "info",
		Output:      "yaml",
		PagePattern: imaging.DefaultPagePattern,
	}
}

// Manager owns a viper instance and the last successfully parsed Config.
type Manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager reads cfgFile, or config.yaml from . and $HOME/.spectra when
// cfgFile is empty. A missing default config file is not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}
	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}
	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	d := DefaultConfig()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("frequency_table", d.FrequencyTable)
	v.SetDefault("project", d.Project)
	v.SetDefault("pdf", d.PDF)
	v.SetDefault("output", d.Output)
	v.SetDefault("page_dir", d.PageDir)
	v.SetDefault("page_pattern", d.PagePattern)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.spectra")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Viper exposes the underlying instance so commands can bind flags to keys.
func (cm *Manager) Viper() *viper.Viper { return cm.v }

// Reload re-reads the viper state, picking up values from bound flags.
func (cm *Manager) Reload() (*Config, error) {
	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return cfg, nil
}

// Get returns the current configuration.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the path of the config file in use, or "".
func (cm *Manager) ConfigFile() string { return cm.v.ConfigFileUsed() }

// OnChange registers a callback for config file changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig reloads the config file whenever it changes on disk.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.Reload()
		if err != nil {
			return
		}
		cm.mu.RLock()
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.RUnlock()
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := []byte("# spectra-mcp configuration\n# Every key can be overridden with a SPECTRA_<KEY> environment variable.\n\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
