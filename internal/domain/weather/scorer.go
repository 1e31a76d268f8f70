package weather

import (
	"fmt"
	"math"
)

const (
	maxPrecipPenalty = 60.0
	maxWindPenalty   = 30.0
	tempPenalty      = 15.0
	disqualifiedCap  = 30
	optimalThreshold = 80
)

// Score rates one forecast day against a tolerance profile on a 0-100
// scale and explains the rating. It is stateless and deterministic.
func Score(day ForecastDay, profile ToleranceProfile) (int, string) {
	precip := math.Min(maxPrecipPenalty, maxPrecipPenalty*day.Precipitation/math.Max(profile.MaxPrecipitation, 1))
	wind := math.Min(maxWindPenalty, maxWindPenalty*day.WindSpeedKmh/math.Max(profile.MaxWindSpeedKmh, 1))
	temp := 0.0
	if day.TemperatureC < profile.MinTemperatureC || day.TemperatureC > profile.MaxTemperatureC {
		temp = tempPenalty
	}

	score := int(math.Round(100 - precip - wind - temp))
	if profile.Disqualifies(day.Condition) && score > disqualifiedCap {
		score = disqualifiedCap
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	reason := fmt.Sprintf("%s conditions (%d/100). %s, %.0f°C.", qualityFor(score), score, day.Condition, day.TemperatureC)
	return score, reason
}

// Optimal reports whether a score passes the "great day to run" bar.
func Optimal(score int) bool {
	return score >= optimalThreshold
}

func qualityFor(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Challenging"
	}
}
