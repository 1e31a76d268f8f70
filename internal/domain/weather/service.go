package weather

import (
	"context"
	"log/slog"
	"sort"
	"time"

	apperrors "github.com/paceline/paceline/pkg/errors"
)

// ForecastStore persists cache entries keyed by (location, date).
// Upsert must be atomic per key so racing refreshes converge to one
// entry rather than duplicating it.
type ForecastStore interface {
	Get(ctx context.Context, location string, date time.Time) (CacheEntry, bool, error)
	Upsert(ctx context.Context, entry CacheEntry, ttl time.Duration) error
}

// Provider is the external forecast source.
type Provider interface {
	FetchForecast(ctx context.Context, location string, days int) ([]ForecastDay, error)
}

// Service is the cache-first forecast reader.
type Service struct {
	store    ForecastStore
	provider Provider
	ttl      time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewService wires up the weather cache.
func NewService(store ForecastStore, provider Provider, ttl, timeout time.Duration, loc *time.Location, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    store,
		provider: provider,
		ttl:      ttl,
		timeout:  timeout,
		logger:   logger.With("component", "weather.service"),
		loc:      loc,
		now:      time.Now,
	}
}

// GetForecast returns `days` consecutive daily forecasts starting today.
// Cached fresh entries are served as-is; any miss triggers a single
// batched provider fetch for the whole window which is written through
// before merging. A provider failure while misses exist surfaces as a
// weather_unavailable error; already-cached data is never invalidated
// by a failed refresh.
func (s *Service) GetForecast(ctx context.Context, location string, days int) ([]ForecastDay, error) {
	if days < 1 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "days must be positive", nil)
	}

	now := s.now()
	today := s.dayOf(now)
	hits := make(map[time.Time]ForecastDay, days)
	missing := 0
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i)
		entry, found, err := s.store.Get(ctx, location, date)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStoreError, "forecast cache lookup failed", err)
		}
		if found && entry.Fresh(now) {
			hits[date] = entry.Day
		} else {
			missing++
		}
	}

	if missing == 0 {
		return sortedDays(hits), nil
	}

	fetchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	fetched, err := s.provider.FetchForecast(fetchCtx, location, days)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeWeatherUnavailable, "forecast fetch failed", err)
	}
	s.logger.Info("forecast refreshed", "location", location, "days", days, "misses", missing)

	for _, day := range fetched {
		day.Location = location
		day.Date = s.calendarDay(day.Date)
		entry := CacheEntry{Day: day, CachedAt: now, ExpiresAt: now.Add(s.ttl)}
		if err := s.store.Upsert(ctx, entry, s.ttl); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStoreError, "forecast cache write failed", err)
		}
		if !day.Date.Before(today) && day.Date.Before(today.AddDate(0, 0, days)) {
			hits[day.Date] = day
		}
	}

	return sortedDays(hits), nil
}

func (s *Service) dayOf(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// calendarDay rebuilds a provider date in the configured timezone by its
// calendar components. Provider dates name a calendar day, not an
// instant; converting the instant would shift the label across the date
// line for timezones behind UTC.
func (s *Service) calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func sortedDays(byDate map[time.Time]ForecastDay) []ForecastDay {
	out := make([]ForecastDay, 0, len(byDate))
	for _, day := range byDate {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
