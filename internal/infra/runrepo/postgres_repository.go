package runrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paceline/paceline/internal/domain/plan"
)

const uniqueViolation = "23505"

// PostgresRepository persists scheduled runs in Postgres. The run_date
// column carries a unique constraint, so the one-run-per-day rule is
// enforced by the database rather than application checks.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List implements plan.RunRepository.
func (r *PostgresRepository) List(ctx context.Context, filter plan.RunFilter) ([]plan.ScheduledRun, error) {
	query := `
		SELECT id, run_date, distance_km, pace, duration_min, run_type, completed, notes, created_at
		FROM scheduled_runs
		WHERE ($1::date IS NULL OR run_date >= $1)
		  AND ($2::date IS NULL OR run_date < $2)
		  AND ($3::text IS NULL OR run_type = $3)
		  AND (NOT $4::bool OR completed)
		ORDER BY run_date
	`
	rows, err := r.pool.Query(ctx, query,
		nullableDate(filter.From), nullableDate(filter.To), nullableType(filter.Type), filter.CompletedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []plan.ScheduledRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Create implements plan.RunRepository.
func (r *PostgresRepository) Create(ctx context.Context, run plan.ScheduledRun) (plan.ScheduledRun, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO scheduled_runs (id, run_date, distance_km, pace, duration_min, run_type, completed, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, run_date, distance_km, pace, duration_min, run_type, completed, notes, created_at
	`, run.ID, run.Date, run.DistanceKm, run.Pace, run.DurationMin, string(run.Type), run.Completed, run.Notes)
	created, err := scanRun(row)
	if err != nil {
		return plan.ScheduledRun{}, mapConstraint(err)
	}
	return created, nil
}

// Update implements plan.RunRepository.
func (r *PostgresRepository) Update(ctx context.Context, run plan.ScheduledRun) (plan.ScheduledRun, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE scheduled_runs
		SET run_date = $2, distance_km = $3, pace = $4, duration_min = $5, run_type = $6, completed = $7, notes = $8
		WHERE id = $1
		RETURNING id, run_date, distance_km, pace, duration_min, run_type, completed, notes, created_at
	`, run.ID, run.Date, run.DistanceKm, run.Pace, run.DurationMin, string(run.Type), run.Completed, run.Notes)
	updated, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.ScheduledRun{}, ErrNotFound
		}
		return plan.ScheduledRun{}, mapConstraint(err)
	}
	return updated, nil
}

// Delete implements plan.RunRepository.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM scheduled_runs WHERE id = $1`, parsed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DatesBetween implements plan.RunRepository. Bounds are inclusive.
func (r *PostgresRepository) DatesBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT run_date FROM scheduled_runs
		WHERE run_date BETWEEN $1 AND $2
		ORDER BY run_date
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (plan.ScheduledRun, error) {
	var (
		run     plan.ScheduledRun
		runType string
	)
	if err := row.Scan(&run.ID, &run.Date, &run.DistanceKm, &run.Pace, &run.DurationMin, &runType, &run.Completed, &run.Notes, &run.CreatedAt); err != nil {
		return plan.ScheduledRun{}, err
	}
	run.Type = plan.RunType(runType)
	return run, nil
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDateTaken
	}
	return err
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullableType(rt plan.RunType) *string {
	if rt == "" {
		return nil
	}
	s := string(rt)
	return &s
}

var _ plan.RunRepository = (*PostgresRepository)(nil)
