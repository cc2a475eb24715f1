package core

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// ConfigManager loads and validates board configuration from the
// .boardconfig file.
type ConfigManager interface {
	LoadConfig() (*models.BoardConfig, error)
	ValidateConfig(cfg *models.BoardConfig) error
	WriteDefaultConfig() (string, error)
}

// viperConfigManager implements ConfigManager using Viper for reading
// the YAML configuration file.
type viperConfigManager struct {
	// basePath is the directory where .boardconfig resides.
	basePath string
}

// NewConfigManager creates a ConfigManager reading configuration
// relative to basePath.
func NewConfigManager(basePath string) ConfigManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a BoardConfig populated with sensible defaults.
func DefaultConfig() *models.BoardConfig {
	return &models.BoardConfig{
		StoreURL:       "http://localhost:8787",
		SaveDebounce:   DefaultSaveDebounce,
		MaxRetries:     3,
		SweepInterval:  DefaultSweepInterval,
		ServerAddr:     ":8787",
		ServerDataFile: "",
		EventLogPath:   "board-events.jsonl",
	}
}

// LoadConfig reads the .boardconfig file from the base path. If the file
// does not exist, defaults are returned.
func (cm *viperConfigManager) LoadConfig() (*models.BoardConfig, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(".boardconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("store.url", cfg.StoreURL)
	v.SetDefault("save.debounce_ms", int(cfg.SaveDebounce/time.Millisecond))
	v.SetDefault("save.max_retries", cfg.MaxRetries)
	v.SetDefault("sweep.interval_seconds", int(cfg.SweepInterval/time.Second))
	v.SetDefault("server.addr", cfg.ServerAddr)
	v.SetDefault("server.data_file", cfg.ServerDataFile)
	v.SetDefault("events.path", cfg.EventLogPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .boardconfig: %w", err)
	}

	cfg.StoreURL = v.GetString("store.url")
	cfg.SaveDebounce = time.Duration(v.GetInt("save.debounce_ms")) * time.Millisecond
	cfg.MaxRetries = v.GetInt("save.max_retries")
	cfg.SweepInterval = time.Duration(v.GetInt("sweep.interval_seconds")) * time.Second
	cfg.ServerAddr = v.GetString("server.addr")
	cfg.ServerDataFile = v.GetString("server.data_file")
	cfg.EventLogPath = v.GetString("events.path")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns
// a clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.BoardConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.StoreURL == "" {
		errs = append(errs, "store.url must not be empty")
	} else if u, err := url.Parse(cfg.StoreURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("store.url %q is not a valid absolute URL", cfg.StoreURL))
	}

	if cfg.SaveDebounce < 0 {
		errs = append(errs, fmt.Sprintf("save.debounce_ms must be non-negative, got %d", cfg.SaveDebounce/time.Millisecond))
	}

	if cfg.MaxRetries < 1 {
		errs = append(errs, fmt.Sprintf("save.max_retries must be at least 1, got %d", cfg.MaxRetries))
	}

	if cfg.SweepInterval < 0 {
		errs = append(errs, fmt.Sprintf("sweep.interval_seconds must be non-negative, got %d", cfg.SweepInterval/time.Second))
	}

	if cfg.ServerAddr == "" {
		errs = append(errs, "server.addr must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("board config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// defaultConfigFile mirrors the nested .boardconfig YAML layout.
type defaultConfigFile struct {
	Store struct {
		URL string `yaml:"url"`
	} `yaml:"store"`
	Save struct {
		DebounceMS int `yaml:"debounce_ms"`
		MaxRetries int `yaml:"max_retries"`
	} `yaml:"save"`
	Sweep struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"sweep"`
	Server struct {
		Addr     string `yaml:"addr"`
		DataFile string `yaml:"data_file,omitempty"`
	} `yaml:"server"`
	Events struct {
		Path string `yaml:"path"`
	} `yaml:"events"`
}

// WriteDefaultConfig writes a .boardconfig populated with defaults to
// the base path, refusing to overwrite an existing file. It returns the
// path written.
func (cm *viperConfigManager) WriteDefaultConfig() (string, error) {
	path := filepath.Join(cm.basePath, ".boardconfig")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("writing default config: %s already exists", path)
	}

	cfg := DefaultConfig()
	var f defaultConfigFile
	f.Store.URL = cfg.StoreURL
	f.Save.DebounceMS = int(cfg.SaveDebounce / time.Millisecond)
	f.Save.MaxRetries = cfg.MaxRetries
	f.Sweep.IntervalSeconds = int(cfg.SweepInterval / time.Second)
	f.Server.Addr = cfg.ServerAddr
	f.Server.DataFile = cfg.ServerDataFile
	f.Events.Path = cfg.EventLogPath

	data, err := yaml.Marshal(&f)
	if err != nil {
		return "", fmt.Errorf("writing default config: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing default config: %w", err)
	}
	return path, nil
}
