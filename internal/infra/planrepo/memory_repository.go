package planrepo

import (
	"context"
	"sync"

	"github.com/paceline/paceline/internal/domain/plan"
)

// MemoryRepository holds the current week override in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	override *plan.WeekTarget
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// CurrentWeekOverride implements plan.TargetStore.
func (r *MemoryRepository) CurrentWeekOverride(_ context.Context) (plan.WeekTarget, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.override == nil {
		return plan.WeekTarget{}, false, nil
	}
	return *r.override, true, nil
}

// SetOverride stores an explicit target for the current week. Passing
// nil clears it.
func (r *MemoryRepository) SetOverride(target *plan.WeekTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = target
}

var _ plan.TargetStore = (*MemoryRepository)(nil)
