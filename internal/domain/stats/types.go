package stats

import "github.com/paceline/paceline/internal/domain/plan"

// WeeklyMileagePoint pairs one week's completed mileage with its target.
type WeeklyMileagePoint struct {
	Week        int     `json:"weekNumber"`
	Label       string  `json:"label"`
	CompletedKm float64 `json:"completedKm"`
	TargetKm    float64 `json:"targetKm"`
}

// PacePoint is the distance-weighted average pace for one week. Pace is
// empty and Seconds nil for weeks without usable runs.
type PacePoint struct {
	Week    int    `json:"weekNumber"`
	Pace    string `json:"pace,omitempty"`
	Seconds *int   `json:"paceSeconds,omitempty"`
}

// LongRunPoint pairs the week's longest long run with its target.
type LongRunPoint struct {
	Week      int     `json:"weekNumber"`
	LongestKm float64 `json:"longestKm"`
	TargetKm  float64 `json:"targetKm"`
}

// PhaseCompletion is the completion ratio within one training phase.
type PhaseCompletion struct {
	Phase     plan.Phase `json:"phase"`
	Completed int        `json:"completed"`
	Scheduled int        `json:"scheduled"`
	Rate      float64    `json:"rate"`
}

// CompletionRate covers runs scheduled up to today.
type CompletionRate struct {
	Completed int               `json:"completed"`
	Scheduled int               `json:"scheduled"`
	Rate      float64           `json:"rate"`
	ByPhase   []PhaseCompletion `json:"byPhase"`
}

// Summary is the headline view of the training history.
type Summary struct {
	TotalRuns       int     `json:"totalRuns"`
	TotalDistanceKm float64 `json:"totalDistanceKm"`
	AvgPace         string  `json:"avgPace"`
	StreakWeeks     int     `json:"streakWeeks"`
	LongestRunKm    float64 `json:"longestRunKm"`
}
