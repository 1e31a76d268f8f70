package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paceline/paceline/internal/domain/plan"
	apperrors "github.com/paceline/paceline/pkg/errors"
)

// RunStore is the read side of the scheduled run collection.
type RunStore interface {
	List(ctx context.Context, filter plan.RunFilter) ([]plan.ScheduledRun, error)
}

// Service derives progress statistics from the run history. Everything
// here is a read-only projection; nothing is cached or persisted.
type Service struct {
	runs            RunStore
	cal             plan.Calendar
	streakThreshold float64
	logger          *slog.Logger
	now             func() time.Time
}

// NewService wires up the stats aggregator.
func NewService(runs RunStore, cal plan.Calendar, streakThresholdKm float64, logger *slog.Logger) *Service {
	if streakThresholdKm <= 0 {
		streakThresholdKm = 10
	}
	return &Service{
		runs:            runs,
		cal:             cal,
		streakThreshold: streakThresholdKm,
		logger:          logger.With("component", "stats.service"),
		now:             time.Now,
	}
}

// WeeklyMileage groups completed mileage by training week and pairs it
// with the week's target. Weeks before week 1 are labeled "Pre N" with
// a zero target.
func (s *Service) WeeklyMileage(ctx context.Context) ([]WeeklyMileagePoint, error) {
	runs, err := s.completedRuns(ctx)
	if err != nil {
		return nil, err
	}
	totals := make(map[int]float64)
	for _, run := range runs {
		totals[s.cal.WeekOf(run.Date)] += run.DistanceKm
	}
	weeks := make([]int, 0, len(totals))
	for w := range totals {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	out := make([]WeeklyMileagePoint, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, WeeklyMileagePoint{
			Week:        w,
			Label:       weekLabel(w),
			CompletedKm: totals[w],
			TargetKm:    plan.WeeklyMileageTarget(w),
		})
	}
	return out, nil
}

// PaceProgression reports the distance-weighted average pace for every
// week from 1 through the current one. Runs whose pace string cannot be
// parsed are excluded from the weighted sum rather than counted as zero.
func (s *Service) PaceProgression(ctx context.Context) ([]PacePoint, error) {
	runs, err := s.completedRuns(ctx)
	if err != nil {
		return nil, err
	}
	current := s.cal.WeekOf(s.now())
	if current < 1 {
		return []PacePoint{}, nil
	}

	type weighted struct {
		paceDistance float64
		distance     float64
	}
	byWeek := make(map[int]*weighted)
	for _, run := range runs {
		secs, ok := parsePaceSeconds(run.Pace)
		if !ok || run.DistanceKm <= 0 {
			continue
		}
		w := s.cal.WeekOf(run.Date)
		if w < 1 || w > current {
			continue
		}
		acc := byWeek[w]
		if acc == nil {
			acc = &weighted{}
			byWeek[w] = acc
		}
		acc.paceDistance += float64(secs) * run.DistanceKm
		acc.distance += run.DistanceKm
	}

	out := make([]PacePoint, 0, current)
	for w := 1; w <= current; w++ {
		point := PacePoint{Week: w}
		if acc, ok := byWeek[w]; ok && acc.distance > 0 {
			secs := int(acc.paceDistance/acc.distance + 0.5)
			point.Seconds = &secs
			point.Pace = formatPace(secs)
		}
		out = append(out, point)
	}
	return out, nil
}

// LongRunProgression reports, per week, the longest long-type run
// against the long run target.
func (s *Service) LongRunProgression(ctx context.Context) ([]LongRunPoint, error) {
	runs, err := s.completedRuns(ctx)
	if err != nil {
		return nil, err
	}
	current := s.cal.WeekOf(s.now())
	if current < 1 {
		return []LongRunPoint{}, nil
	}

	longest := make(map[int]float64)
	for _, run := range runs {
		if run.Type != plan.RunTypeLong {
			continue
		}
		w := s.cal.WeekOf(run.Date)
		if run.DistanceKm > longest[w] {
			longest[w] = run.DistanceKm
		}
	}

	out := make([]LongRunPoint, 0, current)
	for w := 1; w <= current; w++ {
		out = append(out, LongRunPoint{
			Week:      w,
			LongestKm: longest[w],
			TargetKm:  plan.LongRunTarget(w),
		})
	}
	return out, nil
}

// CompletionRate is the ratio of completed to scheduled runs up to
// today, overall and broken down by training phase.
func (s *Service) CompletionRate(ctx context.Context) (CompletionRate, error) {
	today := s.cal.DayOf(s.now())
	runs, err := s.runs.List(ctx, plan.RunFilter{To: today.AddDate(0, 0, 1)})
	if err != nil {
		return CompletionRate{}, apperrors.Wrap(apperrors.CodeStoreError, "list runs", err)
	}

	result := CompletionRate{}
	type tally struct{ completed, scheduled int }
	byPhase := make(map[plan.Phase]*tally)
	for _, run := range runs {
		if s.cal.DayOf(run.Date).After(today) {
			continue
		}
		phase := plan.PhaseFor(s.cal.WeekOf(run.Date))
		t := byPhase[phase]
		if t == nil {
			t = &tally{}
			byPhase[phase] = t
		}
		t.scheduled++
		result.Scheduled++
		if run.Completed {
			t.completed++
			result.Completed++
		}
	}
	if result.Scheduled > 0 {
		result.Rate = float64(result.Completed) / float64(result.Scheduled)
	}
	for _, phase := range []plan.Phase{plan.PhasePre, plan.PhaseBase, plan.PhaseBuild, plan.PhaseTaper} {
		t, ok := byPhase[phase]
		if !ok {
			continue
		}
		result.ByPhase = append(result.ByPhase, PhaseCompletion{
			Phase:     phase,
			Completed: t.completed,
			Scheduled: t.scheduled,
			Rate:      float64(t.completed) / float64(t.scheduled),
		})
	}
	return result, nil
}

// Streak counts consecutive training weeks, walking back from the
// current week, whose completed mileage exceeds the threshold. The
// first short week stops the walk; a short current week means zero.
func (s *Service) Streak(ctx context.Context) (int, error) {
	runs, err := s.completedRuns(ctx)
	if err != nil {
		return 0, err
	}
	return s.streakFrom(runs), nil
}

// Summary aggregates the headline totals over the full history.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	runs, err := s.completedRuns(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{TotalRuns: len(runs)}
	var paceDistance, paceWeight float64
	for _, run := range runs {
		summary.TotalDistanceKm += run.DistanceKm
		if run.DistanceKm > summary.LongestRunKm {
			summary.LongestRunKm = run.DistanceKm
		}
		if secs, ok := parsePaceSeconds(run.Pace); ok && run.DistanceKm > 0 {
			paceDistance += float64(secs) * run.DistanceKm
			paceWeight += run.DistanceKm
		}
	}
	if paceWeight > 0 {
		summary.AvgPace = formatPace(int(paceDistance/paceWeight + 0.5))
	}
	summary.StreakWeeks = s.streakFrom(runs)
	return summary, nil
}

func (s *Service) completedRuns(ctx context.Context) ([]plan.ScheduledRun, error) {
	runs, err := s.runs.List(ctx, plan.RunFilter{CompletedOnly: true})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "list completed runs", err)
	}
	return runs, nil
}

func (s *Service) streakFrom(completed []plan.ScheduledRun) int {
	totals := make(map[int]float64)
	for _, run := range completed {
		totals[s.cal.WeekOf(run.Date)] += run.DistanceKm
	}
	streak := 0
	for w := s.cal.WeekOf(s.now()); w >= 1; w-- {
		if totals[w] <= s.streakThreshold {
			break
		}
		streak++
	}
	return streak
}

func weekLabel(week int) string {
	if week < 1 {
		return fmt.Sprintf("Pre %d", 1-week)
	}
	return fmt.Sprintf("Week %d", week)
}

// parsePaceSeconds converts a "M:SS" min/km pace string to seconds.
// Malformed input reports false so callers can exclude it.
func parsePaceSeconds(pace string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(pace), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	mins, err := strconv.Atoi(parts[0])
	if err != nil || mins < 0 {
		return 0, false
	}
	secs, err := strconv.Atoi(parts[1])
	if err != nil || secs < 0 || secs > 59 {
		return 0, false
	}
	total := mins*60 + secs
	if total == 0 {
		return 0, false
	}
	return total, true
}

func formatPace(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
