package plan

import "time"

const (
	baseWeeks      = 11
	buildWeeks     = 26
	longRunWeeks   = 30
	firstLongRunKm = 7.0
	peakLongRunKm  = 21.1
)

// Calendar anchors week numbering to a fixed training start date.
// Training weeks run Sunday through Saturday; dates before the anchor
// week yield week numbers <= 0.
type Calendar struct {
	anchor time.Time
	loc    *time.Location
}

// NewCalendar builds a Calendar whose week 1 contains the anchor date.
func NewCalendar(anchor time.Time, loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{anchor: weekStartKey(anchor, loc), loc: loc}
}

// Location returns the timezone all day arithmetic happens in.
func (c Calendar) Location() *time.Location {
	return c.loc
}

// DayOf truncates a time to its calendar day in the configured timezone.
func (c Calendar) DayOf(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// WeekOf converts a date to its training week number.
func (c Calendar) WeekOf(t time.Time) int {
	days := int(dayKey(t, c.loc).Sub(c.anchor).Hours() / 24)
	return floorDiv(days, 7) + 1
}

// WeekStart returns the Sunday a training week begins on.
func (c Calendar) WeekStart(week int) time.Time {
	start := c.anchor.AddDate(0, 0, (week-1)*7)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, c.loc)
}

// IsWeekend reports whether a date falls on Saturday or Sunday.
func (c Calendar) IsWeekend(t time.Time) bool {
	wd := t.In(c.loc).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeeklyMileageTarget returns the mileage goal in km for a training week.
// The progression is piecewise linear: base building, extension, taper.
func WeeklyMileageTarget(week int) float64 {
	switch {
	case week <= 0:
		return 0
	case week <= baseWeeks:
		return 10 + 1.5*float64(week-1)
	case week <= buildWeeks:
		return 25 + 1.33*float64(week-baseWeeks)
	default:
		tapered := 45 - 3*float64(week-buildWeeks)
		if tapered < 25 {
			return 25
		}
		return tapered
	}
}

// LongRunTarget returns the long run goal in km for a training week,
// interpolating from 7 km up to half-marathon distance.
func LongRunTarget(week int) float64 {
	switch {
	case week <= 0:
		return 0
	case week <= longRunWeeks:
		return firstLongRunKm + (peakLongRunKm-firstLongRunKm)*float64(week-1)/float64(longRunWeeks-1)
	default:
		return peakLongRunKm * 0.8
	}
}

// PhaseFor maps a week number onto its progression stage.
func PhaseFor(week int) Phase {
	switch {
	case week <= 0:
		return PhasePre
	case week <= baseWeeks:
		return PhaseBase
	case week <= buildWeeks:
		return PhaseBuild
	default:
		return PhaseTaper
	}
}

// TargetFor assembles the full target for a week number.
func TargetFor(week int) WeekTarget {
	return WeekTarget{
		Week:            week,
		Phase:           PhaseFor(week),
		WeeklyMileageKm: WeeklyMileageTarget(week),
		LongRunKm:       LongRunTarget(week),
	}
}

// dayKey normalizes a time to a UTC midnight carrying the calendar date
// observed in loc. Differences between day keys are exact multiples of
// 24h regardless of DST transitions.
func dayKey(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekStartKey(t time.Time, loc *time.Location) time.Time {
	key := dayKey(t, loc)
	return key.AddDate(0, 0, -int(key.Weekday()))
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
