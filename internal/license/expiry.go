package license

import "time"

const (
	// ExpiringSoonDays is the inclusive upper bound of the expiring-soon window.
	ExpiringSoonDays = 30
	// LowAvailabilitySeats is the inclusive upper bound of free seats that raises an alert.
	LowAvailabilitySeats = 2
)

type Status string

const (
	StatusActive       Status = "Active"
	StatusExpiringSoon Status = "Expiring Soon"
	StatusExpired      Status = "Expired"
)

type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Loc *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// DaysRemaining is the ceiling of (expiration - now) in whole days, with the
// expiration day starting at midnight in now's location. A license that
// expires today reports 0 until the date changes. The ceiling always equals
// the calendar-day distance, which is computed in UTC to stay clear of DST.
func DaysRemaining(expiration Date, now time.Time) int {
	today := DateOf(now).In(time.UTC)
	return int(expiration.In(time.UTC).Sub(today) / (24 * time.Hour))
}

func StatusFor(daysRemaining int) Status {
	switch {
	case daysRemaining < 0:
		return StatusExpired
	case daysRemaining <= ExpiringSoonDays:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// StatusAt classifies a license expiration relative to now.
func StatusAt(expiration Date, now time.Time) Status {
	return StatusFor(DaysRemaining(expiration, now))
}
