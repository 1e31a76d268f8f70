package planrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paceline/paceline/internal/domain/plan"
)

// PostgresRepository reads week target overrides from Postgres. Rows
// are keyed by the Sunday a training week starts on; only the row for
// the current week is ever consulted.
type PostgresRepository struct {
	pool *pgxpool.Pool
	cal  plan.Calendar
	now  func() time.Time
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool, cal plan.Calendar) *PostgresRepository {
	return &PostgresRepository{pool: pool, cal: cal, now: time.Now}
}

// CurrentWeekOverride implements plan.TargetStore.
func (r *PostgresRepository) CurrentWeekOverride(ctx context.Context) (plan.WeekTarget, bool, error) {
	week := r.cal.WeekOf(r.now())
	weekStart := r.cal.WeekStart(week)

	var target plan.WeekTarget
	var phase string
	err := r.pool.QueryRow(ctx, `
		SELECT phase, weekly_mileage_km, long_run_km
		FROM week_overrides
		WHERE week_start = $1
	`, weekStart).Scan(&phase, &target.WeeklyMileageKm, &target.LongRunKm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.WeekTarget{}, false, nil
		}
		return plan.WeekTarget{}, false, err
	}
	target.Week = week
	target.Phase = plan.Phase(phase)
	return target, true, nil
}

var _ plan.TargetStore = (*PostgresRepository)(nil)
