// Package tasks implements the periodic maintenance jobs of the relay.
package tasks

import (
	"log/slog"
	"time"

	"github.com/edgard/carydes/internal/audit"
	"github.com/edgard/carydes/internal/config"
	"github.com/edgard/carydes/internal/database"
	"github.com/edgard/carydes/internal/ratelimit"
)

// TaskDeps contains all dependencies required by scheduled tasks.
// Store is nil when the audit database is disabled.
type TaskDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Limiter *ratelimit.Limiter
	Audit   *audit.Logger
	Store   database.Store
	Now     func() time.Time
}

func (d TaskDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
