package domain

import "time"

// DefaultToleranceMinutes is how far past an exact cadence boundary a tick
// may land and still count as that boundary. The host invokes us on a
// best-effort 1–15 minute cadence, so an exact modulo match would silently
// skip boundaries that fall between ticks.
const DefaultToleranceMinutes = 3

// MinuteEligible decides whether nowM is an eligible firing point for a
// minute-level cadence anchored at the daily window start.
//
// elapsed is counted from today's window start; a tick is eligible when
// elapsed mod interval lands inside [0, tolerance]. For wrap-around windows
// the morning segment belongs to yesterday's window start, so elapsed keeps
// counting across midnight. Ticks before the window has started are never
// eligible. Intervals of a day or more degenerate to "near window start",
// which fires at most once per day.
func MinuteEligible(nowM, windowStartM, windowEndM, intervalMinutes, toleranceMinutes int) bool {
	if intervalMinutes <= 0 {
		return false
	}
	elapsed := nowM - windowStartM
	if elapsed < 0 {
		if windowStartM <= windowEndM {
			// same-day window that has not started yet
			return false
		}
		elapsed += MinutesPerDay
	}
	tol := toleranceMinutes
	if half := intervalMinutes / 2; half < tol {
		tol = half
	}
	return elapsed%intervalMinutes <= tol
}

// DayEligible decides whether the calendar day of now is an eligible day for
// a day-level cadence anchored at the rule's creation date. intervalDays of
// zero means every day.
func DayEligible(createdAt, now time.Time, intervalDays int) bool {
	if intervalDays <= 0 {
		return true
	}
	days := wholeDaysBetween(createdAt, now)
	if days < 0 {
		return false
	}
	return days%intervalDays == 0
}

// wholeDaysBetween counts calendar-day boundaries between a and b, both
// interpreted in b's location.
func wholeDaysBetween(a, b time.Time) int {
	loc := b.Location()
	al := a.In(loc)
	aDate := time.Date(al.Year(), al.Month(), al.Day(), 0, 0, 0, 0, loc)
	bDate := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, loc)
	return int(bDate.Sub(aDate).Hours() / 24)
}
