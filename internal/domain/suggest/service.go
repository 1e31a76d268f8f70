package suggest

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/paceline/paceline/internal/domain/plan"
	"github.com/paceline/paceline/internal/domain/weather"
	apperrors "github.com/paceline/paceline/pkg/errors"
)

// ForecastSource yields daily forecasts starting today.
type ForecastSource interface {
	GetForecast(ctx context.Context, location string, days int) ([]weather.ForecastDay, error)
}

// RunDates reports which calendar dates already carry a scheduled run.
type RunDates interface {
	DatesBetween(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// WeekResolver resolves the active training week, if any.
type WeekResolver interface {
	CurrentWeek(ctx context.Context) (plan.WeekTarget, bool, error)
}

// Service proposes when and what kind of run to do next. It holds no
// state between requests; every call plans from scratch.
type Service struct {
	cfg      Config
	forecast ForecastSource
	runs     RunDates
	weeks    WeekResolver
	cal      plan.Calendar
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the suggestion scheduler.
func NewService(cfg Config, forecast ForecastSource, runs RunDates, weeks WeekResolver, cal plan.Calendar, logger *slog.Logger) *Service {
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 7
	}
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = 21
	}
	if cfg.LongRunRestDays <= 0 {
		cfg.LongRunRestDays = 2
	}
	if cfg.EasyRunRestDays <= 0 {
		cfg.EasyRunRestDays = 1
	}
	return &Service{
		cfg:      cfg,
		forecast: forecast,
		runs:     runs,
		weeks:    weeks,
		cal:      cal,
		logger:   logger.With("component", "suggest.service"),
		now:      time.Now,
	}
}

// Generate produces run suggestions for the forecast window. An empty
// result is returned when no training week is active; scheduling
// degeneracies (no eligible weekend, exhausted budget, empty forecast)
// also shrink the output instead of failing.
func (s *Service) Generate(ctx context.Context, location string, days int) ([]Suggestion, error) {
	if days == 0 {
		days = s.cfg.DefaultDays
	}
	if days < 1 || days > s.cfg.MaxDays {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "days must be between 1 and 21", nil)
	}
	if location == "" {
		location = s.cfg.DefaultLocation
	}

	target, active, err := s.weeks.CurrentWeek(ctx)
	if err != nil {
		return nil, err
	}
	if !active {
		s.logger.Info("no active training week, skipping suggestions")
		return []Suggestion{}, nil
	}

	window, err := s.forecast.GetForecast(ctx, location, days)
	if err != nil {
		return nil, err
	}

	today := s.cal.DayOf(s.now())
	occupied, err := s.occupiedDates(ctx, today, days)
	if err != nil {
		return nil, err
	}

	candidates := make([]weather.ForecastDay, 0, len(window))
	for _, day := range window {
		if !day.Date.After(today) {
			continue
		}
		if _, taken := occupied[dateKey(day.Date)]; taken {
			continue
		}
		candidates = append(candidates, day)
	}

	excluded := make(map[string]struct{})
	suggestions := make([]Suggestion, 0, len(candidates))

	if longRun, ok := s.placeLongRun(candidates, target.LongRunKm); ok {
		suggestions = append(suggestions, longRun)
		for i := 1; i <= s.cfg.LongRunRestDays; i++ {
			excluded[dateKey(longRun.Date.AddDate(0, 0, i))] = struct{}{}
		}
		excluded[dateKey(longRun.Date)] = struct{}{}
	}

	suggestions = append(suggestions, s.fillEasyRuns(candidates, target, excluded)...)

	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Date.Before(suggestions[j].Date) })
	s.logger.Info("suggestions generated", "location", location, "days", days, "count", len(suggestions))
	return suggestions, nil
}

// placeLongRun picks the highest scoring weekend day, earliest date
// winning ties. Returning false means no weekend day is eligible, which
// skips long run placement entirely.
func (s *Service) placeLongRun(candidates []weather.ForecastDay, distanceKm float64) (Suggestion, bool) {
	profile := weather.ProfileFor(plan.RunTypeLong)
	best := Suggestion{Score: -1}
	for _, day := range candidates {
		if !s.cal.IsWeekend(day.Date) {
			continue
		}
		score, reason := weather.Score(day, profile)
		if score > best.Score {
			best = Suggestion{
				Date:       day.Date,
				Type:       plan.RunTypeLong,
				DistanceKm: roundKm(distanceKm),
				Score:      score,
				IsOptimal:  weather.Optimal(score),
				Reason:     reason,
				Weather:    day,
			}
		}
	}
	return best, best.Score >= 0
}

// fillEasyRuns distributes the remaining weekly budget across weekday
// candidates in descending score order. Each pick takes an equal share
// of what is left so the running total converges on the weekly target,
// and blocks the following rest day(s).
func (s *Service) fillEasyRuns(candidates []weather.ForecastDay, target plan.WeekTarget, excluded map[string]struct{}) []Suggestion {
	budget := target.WeeklyMileageKm - target.LongRunKm
	if budget <= 0 {
		return nil
	}

	profile := weather.ProfileFor(plan.RunTypeEasy)
	type scored struct {
		day    weather.ForecastDay
		score  int
		reason string
	}
	pool := make([]scored, 0, len(candidates))
	for _, day := range candidates {
		if s.cal.IsWeekend(day.Date) {
			continue
		}
		score, reason := weather.Score(day, profile)
		pool = append(pool, scored{day: day, score: score, reason: reason})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		return pool[i].day.Date.Before(pool[j].day.Date)
	})

	eligible := func() []scored {
		out := pool[:0:0]
		for _, c := range pool {
			if _, blocked := excluded[dateKey(c.day.Date)]; !blocked {
				out = append(out, c)
			}
		}
		return out
	}

	var out []Suggestion
	remaining := budget
	for remaining > 0.05 {
		open := eligible()
		if len(open) == 0 {
			break
		}
		pick := open[0]
		share := roundKm(remaining / float64(len(open)))
		if share <= 0 {
			break
		}
		out = append(out, Suggestion{
			Date:       pick.day.Date,
			Type:       plan.RunTypeEasy,
			DistanceKm: share,
			Score:      pick.score,
			IsOptimal:  weather.Optimal(pick.score),
			Reason:     pick.reason,
			Weather:    pick.day,
		})
		remaining -= share
		excluded[dateKey(pick.day.Date)] = struct{}{}
		for i := 1; i <= s.cfg.EasyRunRestDays; i++ {
			excluded[dateKey(pick.day.Date.AddDate(0, 0, i))] = struct{}{}
		}
	}
	return out
}

func (s *Service) occupiedDates(ctx context.Context, today time.Time, days int) (map[string]struct{}, error) {
	dates, err := s.runs.DatesBetween(ctx, today, today.AddDate(0, 0, days))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "list scheduled run dates", err)
	}
	occupied := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		occupied[dateKey(s.cal.DayOf(d))] = struct{}{}
	}
	return occupied, nil
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func roundKm(km float64) float64 {
	return math.Round(km*10) / 10
}
