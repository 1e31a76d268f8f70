package runrepo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paceline/paceline/internal/domain/plan"
)

// ErrNotFound reports a missing run.
var ErrNotFound = errors.New("run not found")

// ErrDateTaken reports a date that already carries a run.
var ErrDateTaken = errors.New("a run is already scheduled on that date")

// MemoryRepository is an in-memory run store used for tests/dev.
type MemoryRepository struct {
	mu     sync.RWMutex
	runs   map[uuid.UUID]plan.ScheduledRun
	byDate map[string]uuid.UUID
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		runs:   make(map[uuid.UUID]plan.ScheduledRun),
		byDate: make(map[string]uuid.UUID),
	}
}

// List implements plan.RunRepository.
func (r *MemoryRepository) List(_ context.Context, filter plan.RunFilter) ([]plan.ScheduledRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]plan.ScheduledRun, 0, len(r.runs))
	for _, run := range r.runs {
		if matches(run, filter) {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Create implements plan.RunRepository.
func (r *MemoryRepository) Create(_ context.Context, run plan.ScheduledRun) (plan.ScheduledRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dateKey(run.Date)
	if _, taken := r.byDate[key]; taken {
		return plan.ScheduledRun{}, ErrDateTaken
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	r.runs[run.ID] = run
	r.byDate[key] = run.ID
	return run, nil
}

// Update implements plan.RunRepository.
func (r *MemoryRepository) Update(_ context.Context, run plan.ScheduledRun) (plan.ScheduledRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.runs[run.ID]
	if !ok {
		return plan.ScheduledRun{}, ErrNotFound
	}
	newKey := dateKey(run.Date)
	oldKey := dateKey(existing.Date)
	if newKey != oldKey {
		if _, taken := r.byDate[newKey]; taken {
			return plan.ScheduledRun{}, ErrDateTaken
		}
		delete(r.byDate, oldKey)
		r.byDate[newKey] = run.ID
	}
	run.CreatedAt = existing.CreatedAt
	r.runs[run.ID] = run
	return run, nil
}

// Delete implements plan.RunRepository.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[parsed]
	if !ok {
		return ErrNotFound
	}
	delete(r.runs, parsed)
	delete(r.byDate, dateKey(run.Date))
	return nil
}

// DatesBetween implements plan.RunRepository. Bounds are inclusive.
func (r *MemoryRepository) DatesBetween(_ context.Context, from, to time.Time) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]time.Time, 0)
	for _, run := range r.runs {
		if run.Date.Before(from) || run.Date.After(to) {
			continue
		}
		out = append(out, run.Date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func matches(run plan.ScheduledRun, filter plan.RunFilter) bool {
	if !filter.From.IsZero() && run.Date.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !run.Date.Before(filter.To) {
		return false
	}
	if filter.Type != "" && run.Type != filter.Type {
		return false
	}
	if filter.CompletedOnly && !run.Completed {
		return false
	}
	return true
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

var _ plan.RunRepository = (*MemoryRepository)(nil)
