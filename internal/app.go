// Package internal provides the App struct that wires the bounty board
// services together and initializes the CLI layer.
package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/bounty-board/internal/cli"
	"github.com/valter-silva-au/bounty-board/internal/core"
	"github.com/valter-silva-au/bounty-board/internal/observability"
	"github.com/valter-silva-au/bounty-board/internal/storage"
	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// App holds all service dependencies for the bounty board.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigManager
	Config    *models.BoardConfig

	// Storage layer
	Client *storage.Client
	Store  *storage.Store

	// Persistence writer
	Writer *core.DebouncedWriter

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the directory
// containing .boardconfig (typically the current directory or BBOARD_HOME).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	app.Config = cfg

	// --- Storage layer ---
	app.Client = storage.NewClient(cfg.StoreURL, nil)
	app.Store = storage.NewStore(app.Client, cfg.MaxRetries)

	// --- Observability ---
	eventLogPath := cfg.EventLogPath
	if eventLogPath != "" && !filepath.IsAbs(eventLogPath) {
		eventLogPath = filepath.Join(basePath, eventLogPath)
	}
	if eventLogPath != "" {
		app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
		if err != nil {
			// Non-fatal: disable observability if the log can't be created.
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Persistence writer ---
	app.Writer = core.NewDebouncedWriter(app.Store, cfg.SaveDebounce, func(saveErr error) {
		if saveErr != nil {
			observability.RecordError(app.EventLog, observability.EventStateSaveFailed,
				"background save failed", map[string]any{"error": saveErr.Error()})
			return
		}
		observability.Record(app.EventLog, observability.EventStateSaved, "board saved", nil)
	})

	// --- CLI layer ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.ConfigMgr = app.ConfigMgr
	cli.Store = app.Store
	cli.Writer = app.Writer
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Shutdown flushes any pending write and closes the event log.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	if a.Writer != nil {
		if err := a.Writer.Close(ctx); err != nil {
			firstErr = err
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResolveBasePath picks the directory holding board configuration:
// BBOARD_HOME if set, otherwise the nearest ancestor directory containing
// a .boardconfig file, otherwise the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("BBOARD_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	cwd := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".boardconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}
