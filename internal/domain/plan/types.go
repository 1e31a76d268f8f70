package plan

import (
	"time"

	"github.com/google/uuid"
)

// Phase identifies the progression stage a training week belongs to.
type Phase string

const (
	// PhasePre covers weeks before the plan anchor date.
	PhasePre Phase = "pre"
	// PhaseBase covers the base building weeks.
	PhaseBase Phase = "base"
	// PhaseBuild covers the mileage extension weeks.
	PhaseBuild Phase = "build"
	// PhaseTaper covers the wind-down weeks before race day.
	PhaseTaper Phase = "taper"
)

// RunType classifies a scheduled or suggested run.
type RunType string

const (
	RunTypeLong     RunType = "long"
	RunTypeEasy     RunType = "easy"
	RunTypeTempo    RunType = "tempo"
	RunTypeInterval RunType = "interval"
	RunTypeRecovery RunType = "recovery"
	RunTypeRace     RunType = "race"
)

// WeekTarget carries the mileage goals for one training week.
type WeekTarget struct {
	Week            int     `json:"weekNumber"`
	Phase           Phase   `json:"phase"`
	WeeklyMileageKm float64 `json:"weeklyMileageKm"`
	LongRunKm       float64 `json:"longRunKm"`
}

// ScheduledRun is a run on the calendar, planned or completed.
// At most one run exists per calendar date.
type ScheduledRun struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"`
	DistanceKm  float64   `json:"distanceKm"`
	Pace        string    `json:"pace"`
	DurationMin int       `json:"durationMin"`
	Type        RunType   `json:"type"`
	Completed   bool      `json:"completed"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RunFilter narrows a run listing. Zero values mean "no constraint".
type RunFilter struct {
	From          time.Time
	To            time.Time
	Type          RunType
	CompletedOnly bool
}
