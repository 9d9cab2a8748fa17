package tasks

import (
	"context"
)

// newRateLimitSweepTask drops rate-limit ledgers of users who have been
// quiet for a whole window.
func newRateLimitSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "ratelimit_sweep")

	return func(ctx context.Context) error {
		removed := deps.Limiter.Sweep()
		log.DebugContext(ctx, "Rate limit ledgers swept", "removed", removed, "tracked", deps.Limiter.Tracked())
		return nil
	}
}
