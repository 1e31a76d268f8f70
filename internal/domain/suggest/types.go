package suggest

import (
	"time"

	"github.com/paceline/paceline/internal/domain/plan"
	"github.com/paceline/paceline/internal/domain/weather"
)

// Suggestion is one proposed run. Produced fresh per request, never
// persisted.
type Suggestion struct {
	Date       time.Time           `json:"date"`
	Type       plan.RunType        `json:"type"`
	DistanceKm float64             `json:"distanceKm"`
	Score      int                 `json:"score"`
	IsOptimal  bool                `json:"isOptimal"`
	Reason     string              `json:"reason"`
	Weather    weather.ForecastDay `json:"weather"`
}

// Config holds the scheduling knobs.
type Config struct {
	DefaultLocation string
	DefaultDays     int
	MaxDays         int
	LongRunRestDays int
	EasyRunRestDays int
}
