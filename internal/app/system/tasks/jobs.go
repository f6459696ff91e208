// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// purger is the slice of a store the retention job deletes through.
type purger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionPurgeJob creates a job that removes audit and notification
// records older than the retention window. This is the only delete path
// on either collection; a retention of 0 should mean the job is never
// registered, not a purge-everything job.
func RetentionPurgeJob(name string, store purger, logger *zap.Logger, retention time.Duration) Job {
	return Job{
		Name:     name,
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().UTC().Add(-retention)
			count, err := store.PurgeOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("purged aged records",
					zap.String("job", name),
					zap.Int64("count", count),
					zap.Time("cutoff", cutoff))
			}
			return nil
		},
	}
}
