package weatherapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const forecastPayload = `{
	"location": {"name": "Helsinki"},
	"forecast": {
		"forecastday": [
			{
				"date": "2024-06-08",
				"day": {
					"avgtemp_c": 15.5,
					"maxwind_kph": 12,
					"daily_chance_of_rain": 20,
					"avghumidity": 55.4,
					"condition": {"text": "Partly cloudy"}
				}
			},
			{
				"date": "not-a-date",
				"day": {"condition": {"text": "Sunny"}}
			}
		]
	}
}`

func TestFetchForecastMapsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forecast.json", r.URL.Path)
		require.Equal(t, "secret", r.URL.Query().Get("key"))
		require.Equal(t, "Helsinki", r.URL.Query().Get("q"))
		require.Equal(t, "3", r.URL.Query().Get("days"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastPayload))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second)
	days, err := client.FetchForecast(context.Background(), "Helsinki", 3)
	require.NoError(t, err)

	// The malformed date entry is skipped.
	require.Len(t, days, 1)
	require.Equal(t, "Helsinki", days[0].Location)
	require.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), days[0].Date)
	require.Equal(t, "Partly cloudy", days[0].Condition)
	require.InDelta(t, 15.5, days[0].TemperatureC, 0.001)
	require.InDelta(t, 20, days[0].Precipitation, 0.001)
	require.InDelta(t, 12, days[0].WindSpeedKmh, 0.001)
	require.Equal(t, 55, days[0].Humidity)
}

func TestFetchForecastUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"API key is invalid"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key", time.Second)
	_, err := client.FetchForecast(context.Background(), "Helsinki", 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=403")
	require.Contains(t, err.Error(), "API key is invalid")
}

func TestFetchForecastMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"forecast":`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second)
	_, err := client.FetchForecast(context.Background(), "Helsinki", 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode forecast response")
}

func TestFetchForecastContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	client := NewClient(server.URL, "secret", 5*time.Second)
	_, err := client.FetchForecast(ctx, "Helsinki", 3)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("", "secret", 0)
	require.Equal(t, defaultBaseURL, client.baseURL)
	require.Equal(t, 10*time.Second, client.httpClient.Timeout)

	trimmed := NewClient("https://example.com/v1/", "secret", time.Second)
	require.Equal(t, "https://example.com/v1", trimmed.baseURL)
}
