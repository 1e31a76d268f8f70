package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/paceline/paceline/pkg/errors"
)

type stubStore struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
	upserts int
}

func newStubStore() *stubStore {
	return &stubStore{entries: make(map[string]CacheEntry)}
}

func (s *stubStore) key(location string, date time.Time) string {
	return location + ":" + date.Format("2006-01-02")
}

func (s *stubStore) Get(_ context.Context, location string, date time.Time) (CacheEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[s.key(location, date)]
	return entry, ok, nil
}

func (s *stubStore) Upsert(_ context.Context, entry CacheEntry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	s.entries[s.key(entry.Day.Location, entry.Day.Date)] = entry
	return nil
}

type stubProvider struct {
	mu      sync.Mutex
	days    []ForecastDay
	err     error
	fetches int
}

func (p *stubProvider) FetchForecast(_ context.Context, _ string, _ int) ([]ForecastDay, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetches++
	if p.err != nil {
		return nil, p.err
	}
	return p.days, nil
}

var testNow = time.Date(2024, 6, 4, 10, 30, 0, 0, time.UTC)

func forecastWindow(days int) []ForecastDay {
	out := make([]ForecastDay, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, ForecastDay{
			Location:     "Helsinki",
			Date:         time.Date(2024, 6, 4+i, 0, 0, 0, 0, time.UTC),
			Condition:    "Sunny",
			TemperatureC: 16,
		})
	}
	return out
}

func newServiceUnderTest(store ForecastStore, provider Provider) *Service {
	svc := NewService(store, provider, time.Hour, 0, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestGetForecastColdCacheFetchesOnce(t *testing.T) {
	store := newStubStore()
	provider := &stubProvider{days: forecastWindow(3)}
	svc := newServiceUnderTest(store, provider)

	got, err := svc.GetForecast(context.Background(), "Helsinki", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 1, provider.fetches)
	require.Equal(t, 3, store.upserts)

	// Days arrive sorted starting today.
	for i := 1; i < len(got); i++ {
		require.True(t, got[i-1].Date.Before(got[i].Date))
	}
	require.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), got[0].Date)
}

func TestGetForecastEntryExpiryIsOneHour(t *testing.T) {
	store := newStubStore()
	provider := &stubProvider{days: forecastWindow(1)}
	svc := newServiceUnderTest(store, provider)

	_, err := svc.GetForecast(context.Background(), "Helsinki", 1)
	require.NoError(t, err)

	entry, ok, err := store.Get(context.Background(), "Helsinki", time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, testNow, entry.CachedAt)
	require.Equal(t, testNow.Add(time.Hour), entry.ExpiresAt)
}

func TestGetForecastServesFreshHitsWithoutFetching(t *testing.T) {
	store := newStubStore()
	provider := &stubProvider{days: forecastWindow(2)}
	svc := newServiceUnderTest(store, provider)

	_, err := svc.GetForecast(context.Background(), "Helsinki", 2)
	require.NoError(t, err)
	require.Equal(t, 1, provider.fetches)

	got, err := svc.GetForecast(context.Background(), "Helsinki", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 1, provider.fetches, "second request must be cache-only")
}

func TestGetForecastExpiredEntryTriggersRefetch(t *testing.T) {
	store := newStubStore()
	provider := &stubProvider{days: forecastWindow(1)}
	svc := newServiceUnderTest(store, provider)

	stale := CacheEntry{
		Day:       forecastWindow(1)[0],
		CachedAt:  testNow.Add(-2 * time.Hour),
		ExpiresAt: testNow.Add(-time.Hour),
	}
	require.NoError(t, store.Upsert(context.Background(), stale, time.Hour))

	_, err := svc.GetForecast(context.Background(), "Helsinki", 1)
	require.NoError(t, err)
	require.Equal(t, 1, provider.fetches)
}

func TestGetForecastProviderFailureSurfaces(t *testing.T) {
	store := newStubStore()
	provider := &stubProvider{err: errors.New("upstream 500")}
	svc := newServiceUnderTest(store, provider)

	_, err := svc.GetForecast(context.Background(), "Helsinki", 3)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeatherUnavailable))
}

func TestGetForecastFailedRefreshKeepsCachedEntries(t *testing.T) {
	store := newStubStore()
	provider := &stubProvider{err: errors.New("upstream down")}
	svc := newServiceUnderTest(store, provider)

	fresh := CacheEntry{
		Day:       forecastWindow(1)[0],
		CachedAt:  testNow.Add(-time.Minute),
		ExpiresAt: testNow.Add(59 * time.Minute),
	}
	require.NoError(t, store.Upsert(context.Background(), fresh, time.Hour))
	store.upserts = 0

	_, err := svc.GetForecast(context.Background(), "Helsinki", 2)
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeatherUnavailable))

	// The held entry survives the failed refresh untouched.
	entry, ok, getErr := store.Get(context.Background(), "Helsinki", fresh.Day.Date)
	require.NoError(t, getErr)
	require.True(t, ok)
	require.Equal(t, fresh.ExpiresAt, entry.ExpiresAt)
	require.Zero(t, store.upserts)
}

func TestGetForecastConcurrentColdRequestsConverge(t *testing.T) {
	store := newStubStore()
	provider := &stubProvider{days: forecastWindow(1)}
	svc := newServiceUnderTest(store, provider)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetForecast(context.Background(), "Helsinki", 1)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	// Racing refreshes may both fetch, but the keyed upsert leaves
	// exactly one entry behind.
	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.entries, 1)
}

func TestGetForecastKeepsCalendarDatesBehindUTC(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Provider dates arrive as UTC midnights naming calendar days.
	store := newStubStore()
	provider := &stubProvider{days: forecastWindow(3)}
	svc := NewService(store, provider, time.Hour, 0, ny, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return time.Date(2024, 6, 4, 18, 0, 0, 0, ny) }

	got, getErr := svc.GetForecast(context.Background(), "Helsinki", 3)
	require.NoError(t, getErr)
	require.Len(t, got, 3)
	for i, day := range got {
		want := time.Date(2024, 6, 4+i, 0, 0, 0, 0, ny)
		require.True(t, day.Date.Equal(want), "day %d labeled %s, want %s", i, day.Date, want)
	}
}

func TestGetForecastRejectsNonPositiveDays(t *testing.T) {
	svc := newServiceUnderTest(newStubStore(), &stubProvider{})
	_, err := svc.GetForecast(context.Background(), "Helsinki", 0)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
