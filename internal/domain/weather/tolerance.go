package weather

import (
	"strings"

	"github.com/paceline/paceline/internal/domain/plan"
)

// ToleranceProfile holds the weather thresholds for one run type.
type ToleranceProfile struct {
	MaxPrecipitation float64
	MaxWindSpeedKmh  float64
	MinTemperatureC  float64
	MaxTemperatureC  float64
	Disqualifying    []string
}

// Disqualifies reports whether a condition label rules the day out for
// this profile. Matching is case-insensitive.
func (p ToleranceProfile) Disqualifies(condition string) bool {
	for _, label := range p.Disqualifying {
		if strings.EqualFold(label, condition) {
			return true
		}
	}
	return false
}

var defaultProfiles = map[plan.RunType]ToleranceProfile{
	plan.RunTypeLong: {
		MaxPrecipitation: 40,
		MaxWindSpeedKmh:  25,
		MinTemperatureC:  -5,
		MaxTemperatureC:  24,
		Disqualifying:    []string{"Thunderstorm", "Freezing rain", "Ice", "Blizzard"},
	},
	plan.RunTypeEasy: {
		MaxPrecipitation: 60,
		MaxWindSpeedKmh:  35,
		MinTemperatureC:  -10,
		MaxTemperatureC:  28,
		Disqualifying:    []string{"Thunderstorm", "Freezing rain", "Ice"},
	},
	plan.RunTypeTempo: {
		MaxPrecipitation: 50,
		MaxWindSpeedKmh:  20,
		MinTemperatureC:  -5,
		MaxTemperatureC:  22,
		Disqualifying:    []string{"Thunderstorm", "Freezing rain", "Ice"},
	},
	plan.RunTypeInterval: {
		MaxPrecipitation: 50,
		MaxWindSpeedKmh:  20,
		MinTemperatureC:  0,
		MaxTemperatureC:  22,
		Disqualifying:    []string{"Thunderstorm", "Freezing rain", "Ice"},
	},
	plan.RunTypeRecovery: {
		MaxPrecipitation: 70,
		MaxWindSpeedKmh:  40,
		MinTemperatureC:  -10,
		MaxTemperatureC:  30,
		Disqualifying:    []string{"Thunderstorm", "Ice"},
	},
	plan.RunTypeRace: {
		MaxPrecipitation: 30,
		MaxWindSpeedKmh:  20,
		MinTemperatureC:  0,
		MaxTemperatureC:  20,
		Disqualifying:    []string{"Thunderstorm", "Freezing rain", "Ice", "Blizzard", "Heavy snow"},
	},
}

// ProfileFor resolves the tolerance profile for a run type. Unknown run
// types fall back to the easy run profile.
func ProfileFor(rt plan.RunType) ToleranceProfile {
	if profile, ok := defaultProfiles[rt]; ok {
		return profile
	}
	return defaultProfiles[plan.RunTypeEasy]
}
