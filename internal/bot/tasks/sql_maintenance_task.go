package tasks

import (
	"context"
	"fmt"
)

// newSQLMaintenanceTask vacuums the audit database once it answers a ping.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		if err := deps.Store.Ping(ctx); err != nil {
			log.WarnContext(ctx, "Audit database unreachable, skipping vacuum", "error", err)
			return fmt.Errorf("audit database unreachable: %w", err)
		}

		started := deps.now()
		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			return fmt.Errorf("vacuum audit database: %w", err)
		}

		log.InfoContext(ctx, "Audit database vacuumed", "took", deps.now().Sub(started))
		return nil
	}
}
