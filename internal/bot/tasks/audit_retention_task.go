package tasks

import (
	"context"
	"time"
)

// newAuditRetentionTask removes audit entries older than the configured
// number of days. A retention of zero keeps everything.
func newAuditRetentionTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "audit_retention")

	return func(ctx context.Context) error {
		days := deps.Config.Audit.RetentionDays
		if days <= 0 {
			log.DebugContext(ctx, "Audit retention disabled")
			return nil
		}

		cutoff := deps.now().UTC().AddDate(0, 0, -days)
		removed := deps.Audit.Prune(ctx, cutoff)
		if err := ctx.Err(); err != nil {
			return err
		}

		log.InfoContext(ctx, "Audit retention applied", "cutoff", cutoff.Format(time.DateOnly), "removed", removed)
		return nil
	}
}
