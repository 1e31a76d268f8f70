package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paceline/paceline/internal/domain/weather"
)

const defaultBaseURL = "https://api.weatherapi.com/v1"

// Client fetches daily forecasts from a WeatherAPI-compatible endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchForecast retrieves up to `days` daily forecasts for a location.
func (c *Client) FetchForecast(ctx context.Context, location string, days int) ([]weather.ForecastDay, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", location)
	params.Set("days", fmt.Sprintf("%d", days))
	endpoint := fmt.Sprintf("%s/forecast.json?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read forecast response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("forecast request error: status=%d body=%s", resp.StatusCode, truncate(body, 512))
	}

	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}

	return normalizeDays(raw, location), nil
}

type apiResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Forecast struct {
		ForecastDay []forecastDay `json:"forecastday"`
	} `json:"forecast"`
}

type forecastDay struct {
	Date string `json:"date"`
	Day  struct {
		AvgTempC          float64 `json:"avgtemp_c"`
		MaxWindKph        float64 `json:"maxwind_kph"`
		DailyChanceOfRain float64 `json:"daily_chance_of_rain"`
		AvgHumidity       float64 `json:"avghumidity"`
		Condition         struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"day"`
}

func normalizeDays(raw apiResponse, location string) []weather.ForecastDay {
	out := make([]weather.ForecastDay, 0, len(raw.Forecast.ForecastDay))
	for _, fd := range raw.Forecast.ForecastDay {
		date, err := time.Parse("2006-01-02", fd.Date)
		if err != nil {
			continue
		}
		out = append(out, weather.ForecastDay{
			Location:      location,
			Date:          date,
			Condition:     fd.Day.Condition.Text,
			TemperatureC:  fd.Day.AvgTempC,
			Precipitation: fd.Day.DailyChanceOfRain,
			WindSpeedKmh:  fd.Day.MaxWindKph,
			Humidity:      int(fd.Day.AvgHumidity),
		})
	}
	return out
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n])
}

var _ weather.Provider = (*Client)(nil)
