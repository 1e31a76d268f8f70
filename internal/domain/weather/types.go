package weather

import "time"

// ForecastDay is an immutable daily forecast snapshot for one location.
// Date carries day granularity only, normalized to midnight.
type ForecastDay struct {
	Location      string    `json:"location"`
	Date          time.Time `json:"date"`
	Condition     string    `json:"condition"`
	TemperatureC  float64   `json:"temperatureC"`
	Precipitation float64   `json:"precipitation"`
	WindSpeedKmh  float64   `json:"windSpeedKmh"`
	Humidity      int       `json:"humidity"`
}

// CacheEntry wraps a forecast day with its freshness window. The
// uniqueness key is (location, date).
type CacheEntry struct {
	Day       ForecastDay `json:"day"`
	CachedAt  time.Time   `json:"cachedAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Fresh reports whether the entry is still usable at the given instant.
func (e CacheEntry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}
