package suggest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paceline/paceline/internal/domain/plan"
	"github.com/paceline/paceline/internal/domain/weather"
	apperrors "github.com/paceline/paceline/pkg/errors"
)

// Anchor is Sunday 2024-06-02; "today" is Tuesday 2024-06-04.
var (
	testAnchor = time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	testNow    = time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC)
)

type stubForecast struct {
	days []weather.ForecastDay
	err  error
}

func (s *stubForecast) GetForecast(context.Context, string, int) ([]weather.ForecastDay, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.days, nil
}

type stubRunDates struct {
	dates []time.Time
}

func (s *stubRunDates) DatesBetween(context.Context, time.Time, time.Time) ([]time.Time, error) {
	return s.dates, nil
}

type stubWeeks struct {
	target plan.WeekTarget
	active bool
}

func (s *stubWeeks) CurrentWeek(context.Context) (plan.WeekTarget, bool, error) {
	return s.target, s.active, nil
}

func sunnyWindow(start time.Time, days int) []weather.ForecastDay {
	out := make([]weather.ForecastDay, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, weather.ForecastDay{
			Location:     "Helsinki",
			Date:         start.AddDate(0, 0, i),
			Condition:    "Sunny",
			TemperatureC: 15,
		})
	}
	return out
}

func newServiceUnderTest(forecast ForecastSource, runs RunDates, weeks WeekResolver) *Service {
	cal := plan.NewCalendar(testAnchor, time.UTC)
	svc := NewService(Config{DefaultLocation: "Helsinki"}, forecast, runs, weeks, cal, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return testNow }
	return svc
}

func activeWeek() *stubWeeks {
	return &stubWeeks{
		target: plan.WeekTarget{Week: 2, Phase: plan.PhaseBase, WeeklyMileageKm: 24, LongRunKm: 12},
		active: true,
	}
}

func TestGenerateFullWeek(t *testing.T) {
	forecast := &stubForecast{days: sunnyWindow(testNow.Truncate(24*time.Hour), 7)}
	svc := newServiceUnderTest(forecast, &stubRunDates{}, activeWeek())

	got, err := svc.Generate(context.Background(), "", 7)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	var longRuns, total = 0, 0.0
	suggested := make(map[string]Suggestion)
	for _, s := range got {
		total += s.DistanceKm
		suggested[s.Date.Format("2006-01-02")] = s
	}
	for _, s := range got {
		if s.Type != plan.RunTypeLong {
			continue
		}
		longRuns++
		require.InDelta(t, 12, s.DistanceKm, 0.001)
		// Equal weekend scores break ties toward the earlier day.
		require.Equal(t, time.Saturday, s.Date.Weekday())
		// Rest days: nothing lands on the two days after.
		for i := 1; i <= 2; i++ {
			_, taken := suggested[s.Date.AddDate(0, 0, i).Format("2006-01-02")]
			require.False(t, taken)
		}
	}
	require.Equal(t, 1, longRuns)
	require.LessOrEqual(t, total, 24.0+0.05)

	// Everything is dated strictly after today and sorted ascending.
	for i, s := range got {
		require.True(t, s.Date.After(time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)))
		if i > 0 {
			require.True(t, got[i-1].Date.Before(s.Date))
		}
	}
}

func TestGenerateRestDaysAfterLongRun(t *testing.T) {
	forecast := &stubForecast{days: sunnyWindow(testNow.Truncate(24*time.Hour), 7)}
	svc := newServiceUnderTest(forecast, &stubRunDates{}, activeWeek())

	got, err := svc.Generate(context.Background(), "", 7)
	require.NoError(t, err)

	rest1 := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	rest2 := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	for _, s := range got {
		require.NotEqual(t, rest1, s.Date)
		require.NotEqual(t, rest2, s.Date)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	forecast := &stubForecast{days: sunnyWindow(testNow.Truncate(24*time.Hour), 7)}
	svc := newServiceUnderTest(forecast, &stubRunDates{}, activeWeek())

	first, err := svc.Generate(context.Background(), "", 7)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), "", 7)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestGenerateLongRunFollowsWeather(t *testing.T) {
	days := sunnyWindow(testNow.Truncate(24*time.Hour), 7)
	for i := range days {
		if days[i].Date.Weekday() == time.Saturday {
			days[i].Condition = "Heavy rain"
			days[i].Precipitation = 90
		}
	}
	svc := newServiceUnderTest(&stubForecast{days: days}, &stubRunDates{}, activeWeek())

	got, err := svc.Generate(context.Background(), "", 7)
	require.NoError(t, err)
	for _, s := range got {
		if s.Type == plan.RunTypeLong {
			require.Equal(t, time.Sunday, s.Date.Weekday())
			return
		}
	}
	t.Fatal("expected a long run suggestion")
}

func TestGenerateSkipsOccupiedDates(t *testing.T) {
	occupied := []time.Time{
		time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
	}
	forecast := &stubForecast{days: sunnyWindow(testNow.Truncate(24*time.Hour), 7)}
	svc := newServiceUnderTest(forecast, &stubRunDates{dates: occupied}, activeWeek())

	got, err := svc.Generate(context.Background(), "", 7)
	require.NoError(t, err)
	// Both weekend days are taken, so no long run is placed; easy runs
	// still fill weekdays.
	for _, s := range got {
		require.NotEqual(t, plan.RunTypeLong, s.Type)
		require.False(t, s.Date.Equal(occupied[0]) || s.Date.Equal(occupied[1]))
	}
}

func TestGenerateNoActivePlanReturnsEmpty(t *testing.T) {
	forecast := &stubForecast{days: sunnyWindow(testNow.Truncate(24*time.Hour), 7)}
	svc := newServiceUnderTest(forecast, &stubRunDates{}, &stubWeeks{})

	got, err := svc.Generate(context.Background(), "", 7)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGenerateEmptyForecastDegrades(t *testing.T) {
	svc := newServiceUnderTest(&stubForecast{}, &stubRunDates{}, activeWeek())

	got, err := svc.Generate(context.Background(), "", 7)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGenerateInvalidDays(t *testing.T) {
	svc := newServiceUnderTest(&stubForecast{}, &stubRunDates{}, activeWeek())

	for _, days := range []int{-1, 22} {
		_, err := svc.Generate(context.Background(), "", days)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), "days=%d", days)
	}
}

func TestGenerateDefaultsDays(t *testing.T) {
	forecast := &stubForecast{days: sunnyWindow(testNow.Truncate(24*time.Hour), 7)}
	svc := newServiceUnderTest(forecast, &stubRunDates{}, activeWeek())

	got, err := svc.Generate(context.Background(), "", 0)
	require.NoError(t, err)
	require.NotEmpty(t, got)
}

func TestGenerateForecastFailurePropagates(t *testing.T) {
	failing := &stubForecast{err: apperrors.Wrap(apperrors.CodeWeatherUnavailable, "forecast fetch failed", errors.New("boom"))}
	svc := newServiceUnderTest(failing, &stubRunDates{}, activeWeek())

	_, err := svc.Generate(context.Background(), "", 7)
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeatherUnavailable))
}

func TestGenerateScoresMarkOptimalDays(t *testing.T) {
	forecast := &stubForecast{days: sunnyWindow(testNow.Truncate(24*time.Hour), 7)}
	svc := newServiceUnderTest(forecast, &stubRunDates{}, activeWeek())

	got, err := svc.Generate(context.Background(), "", 7)
	require.NoError(t, err)
	for _, s := range got {
		require.Equal(t, 100, s.Score)
		require.True(t, s.IsOptimal)
		require.Contains(t, s.Reason, "Excellent")
		require.Equal(t, "Sunny", s.Weather.Condition)
	}
}
