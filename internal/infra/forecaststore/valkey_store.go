package forecaststore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/paceline/paceline/internal/domain/weather"
)

// ValkeyStore persists forecast cache entries in a Valkey-compatible
// database. SET with EX is a single atomic upsert per key, which gives
// the last-writer-wins behavior the cache contract asks for.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "forecast"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Get implements weather.ForecastStore.
func (s *ValkeyStore) Get(ctx context.Context, location string, date time.Time) (weather.CacheEntry, bool, error) {
	cmd := s.client.B().Get().Key(s.key(location, date)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return weather.CacheEntry{}, false, nil
		}
		return weather.CacheEntry{}, false, err
	}
	var entry weather.CacheEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return weather.CacheEntry{}, false, err
	}
	return entry, true, nil
}

// Upsert implements weather.ForecastStore.
func (s *ValkeyStore) Upsert(ctx context.Context, entry weather.CacheEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(entry.Day.Location, entry.Day.Date)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) key(location string, date time.Time) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, location, date.Format("2006-01-02"))
}

var _ weather.ForecastStore = (*ValkeyStore)(nil)
