package plan

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/paceline/paceline/pkg/errors"
)

// TargetStore surfaces an explicit target override persisted for the
// current training week. Most weeks have none and fall back to the
// deterministic formulas.
type TargetStore interface {
	CurrentWeekOverride(ctx context.Context) (WeekTarget, bool, error)
}

// Service resolves the active training week and its targets.
type Service struct {
	cal    *Calendar
	store  TargetStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires up the plan domain. A nil calendar means no training
// plan is configured; CurrentWeek then reports not-found rather than
// erroring.
func NewService(cal *Calendar, store TargetStore, logger *slog.Logger) *Service {
	return &Service{
		cal:    cal,
		store:  store,
		logger: logger.With("component", "plan.service"),
		now:    time.Now,
	}
}

// Calendar exposes the week arithmetic shared with the scheduler and
// stats aggregator. Nil when no plan is configured.
func (s *Service) Calendar() *Calendar {
	return s.cal
}

// CurrentWeek resolves today's training week target. The boolean is
// false when no plan is configured or the plan has not started yet;
// neither case is an error.
func (s *Service) CurrentWeek(ctx context.Context) (WeekTarget, bool, error) {
	if s.cal == nil {
		return WeekTarget{}, false, nil
	}
	week := s.cal.WeekOf(s.now())
	if week <= 0 {
		return WeekTarget{}, false, nil
	}

	target := TargetFor(week)
	if s.store != nil {
		override, found, err := s.store.CurrentWeekOverride(ctx)
		if err != nil {
			return WeekTarget{}, false, apperrors.Wrap(apperrors.CodeStoreError, "load week override", err)
		}
		if found {
			override.Week = week
			if override.Phase == "" {
				override.Phase = PhaseFor(week)
			}
			s.logger.Debug("using explicit week override", "week", week)
			return override, true, nil
		}
	}
	return target, true, nil
}
