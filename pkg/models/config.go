package models

import "time"

// BoardConfig holds settings loaded from the .boardconfig file, merged
// over built-in defaults.
type BoardConfig struct {
	// StoreURL is the base URL of the key-value store service.
	StoreURL string `yaml:"store_url"`
	// SaveDebounce is the quiet period before a burst of mutations is
	// flushed as a single write.
	SaveDebounce time.Duration `yaml:"save_debounce"`
	// MaxRetries bounds load/save attempts against the store.
	MaxRetries int `yaml:"max_retries"`
	// SweepInterval is how often orphaned task assignments are reconciled.
	SweepInterval time.Duration `yaml:"sweep_interval"`
	// ServerAddr is the listen address for the bundled store service.
	ServerAddr string `yaml:"server_addr"`
	// ServerDataFile optionally persists the store to disk across restarts.
	ServerDataFile string `yaml:"server_data_file"`
	// EventLogPath is where board events are appended as JSONL.
	EventLogPath string `yaml:"event_log_path"`
}
