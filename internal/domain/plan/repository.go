package plan

import (
	"context"
	"time"
)

// RunRepository is the persistence contract for scheduled runs. The
// date is unique system-wide: at most one run per calendar day.
type RunRepository interface {
	List(ctx context.Context, filter RunFilter) ([]ScheduledRun, error)
	Create(ctx context.Context, run ScheduledRun) (ScheduledRun, error)
	Update(ctx context.Context, run ScheduledRun) (ScheduledRun, error)
	Delete(ctx context.Context, id string) error
	DatesBetween(ctx context.Context, from, to time.Time) ([]time.Time, error)
}
