package plan

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubTargetStore struct {
	target WeekTarget
	found  bool
	err    error
}

func (s *stubTargetStore) CurrentWeekOverride(context.Context) (WeekTarget, bool, error) {
	return s.target, s.found, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCurrentWeekFromFormulas(t *testing.T) {
	cal := NewCalendar(testAnchor, time.UTC)
	svc := NewService(&cal, &stubTargetStore{}, discardLogger())
	svc.now = func() time.Time { return time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC) }

	target, active, err := svc.CurrentWeek(context.Background())
	require.NoError(t, err)
	require.True(t, active)
	require.Equal(t, 2, target.Week)
	require.Equal(t, PhaseBase, target.Phase)
	require.InDelta(t, 11.5, target.WeeklyMileageKm, 0.001)
}

func TestCurrentWeekUsesOverride(t *testing.T) {
	cal := NewCalendar(testAnchor, time.UTC)
	store := &stubTargetStore{
		target: WeekTarget{WeeklyMileageKm: 24, LongRunKm: 12},
		found:  true,
	}
	svc := NewService(&cal, store, discardLogger())
	svc.now = func() time.Time { return time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC) }

	target, active, err := svc.CurrentWeek(context.Background())
	require.NoError(t, err)
	require.True(t, active)
	require.Equal(t, 2, target.Week)
	require.Equal(t, PhaseBase, target.Phase)
	require.InDelta(t, 24, target.WeeklyMileageKm, 0.001)
	require.InDelta(t, 12, target.LongRunKm, 0.001)
}

func TestCurrentWeekNoCalendar(t *testing.T) {
	svc := NewService(nil, &stubTargetStore{}, discardLogger())

	_, active, err := svc.CurrentWeek(context.Background())
	require.NoError(t, err)
	require.False(t, active)
}

func TestCurrentWeekBeforePlanStart(t *testing.T) {
	cal := NewCalendar(testAnchor, time.UTC)
	svc := NewService(&cal, &stubTargetStore{}, discardLogger())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	_, active, err := svc.CurrentWeek(context.Background())
	require.NoError(t, err)
	require.False(t, active)
}
