package cli

import (
	"github.com/valter-silva-au/bounty-board/internal/core"
	"github.com/valter-silva-au/bounty-board/internal/observability"
	"github.com/valter-silva-au/bounty-board/internal/storage"
	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath    string
	Config      *models.BoardConfig
	ConfigMgr   core.ConfigManager
	Store       *storage.Store
	Writer      *core.DebouncedWriter
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
