package weather

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paceline/paceline/internal/domain/plan"
)

func calmDay() ForecastDay {
	return ForecastDay{
		Location:     "Helsinki",
		Condition:    "Sunny",
		TemperatureC: 15,
	}
}

func TestScorePerfectDay(t *testing.T) {
	profile := ProfileFor(plan.RunTypeEasy)
	score, reason := Score(calmDay(), profile)
	require.Equal(t, 100, score)
	require.Equal(t, "Excellent conditions (100/100). Sunny, 15°C.", reason)
}

func TestScorePrecipitationAtLimit(t *testing.T) {
	profile := ProfileFor(plan.RunTypeEasy)
	day := calmDay()
	day.Precipitation = profile.MaxPrecipitation

	score, _ := Score(day, profile)
	require.Equal(t, 40, score)
}

func TestScoreWindAtLimit(t *testing.T) {
	profile := ProfileFor(plan.RunTypeEasy)
	day := calmDay()
	day.WindSpeedKmh = profile.MaxWindSpeedKmh

	score, _ := Score(day, profile)
	require.Equal(t, 70, score)
}

func TestScoreTemperatureOutOfRange(t *testing.T) {
	profile := ProfileFor(plan.RunTypeEasy)

	cold := calmDay()
	cold.TemperatureC = profile.MinTemperatureC - 1
	score, _ := Score(cold, profile)
	require.Equal(t, 85, score)

	hot := calmDay()
	hot.TemperatureC = profile.MaxTemperatureC + 1
	score, _ = Score(hot, profile)
	require.Equal(t, 85, score)
}

func TestScoreDisqualifyingConditionCaps(t *testing.T) {
	profile := ProfileFor(plan.RunTypeLong)
	day := calmDay()
	day.Condition = "Thunderstorm"

	score, reason := Score(day, profile)
	require.LessOrEqual(t, score, 30)
	require.Contains(t, reason, "Challenging")
	require.Contains(t, reason, "Thunderstorm")
}

func TestScoreDisqualifyMatchIsCaseInsensitive(t *testing.T) {
	profile := ProfileFor(plan.RunTypeLong)
	day := calmDay()
	day.Condition = "THUNDERSTORM"

	score, _ := Score(day, profile)
	require.LessOrEqual(t, score, 30)
}

func TestScoreAlwaysWithinBounds(t *testing.T) {
	profile := ProfileFor(plan.RunTypeRace)
	for _, precip := range []float64{0, 25, 50, 100} {
		for _, wind := range []float64{0, 20, 60} {
			for _, temp := range []float64{-20, 0, 15, 40} {
				day := ForecastDay{Condition: "Overcast", TemperatureC: temp, Precipitation: precip, WindSpeedKmh: wind}
				score, _ := Score(day, profile)
				require.GreaterOrEqual(t, score, 0, fmt.Sprintf("p=%v w=%v t=%v", precip, wind, temp))
				require.LessOrEqual(t, score, 100, fmt.Sprintf("p=%v w=%v t=%v", precip, wind, temp))
			}
		}
	}
}

func TestScoreQualityBuckets(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "Excellent"},
		{80, "Excellent"},
		{79, "Good"},
		{60, "Good"},
		{59, "Fair"},
		{40, "Fair"},
		{39, "Challenging"},
		{0, "Challenging"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, qualityFor(tc.score), "score %d", tc.score)
	}
}

func TestProfileForUnknownTypeFallsBack(t *testing.T) {
	require.Equal(t, ProfileFor(plan.RunTypeEasy), ProfileFor(plan.RunType("fartlek")))
}

func TestOptimal(t *testing.T) {
	require.True(t, Optimal(80))
	require.False(t, Optimal(79))
}
