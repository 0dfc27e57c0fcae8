package domain

import (
	"time"

	"github.com/m04kA/GYM-ClassService/pkg/types"
)

// Policy clock: pure time-window calculations for the booking policy.
// No I/O here - "now" is always passed in by the caller.

// HoursUntil returns the number of hours from now until a class that takes
// place on classDate at startTime. Negative once the class has started.
func HoursUntil(classDate time.Time, startTime types.TimeString, now time.Time) (float64, error) {
	startAt, err := startTime.At(classDate, now.Location())
	if err != nil {
		return 0, err
	}
	return startAt.Sub(now).Hours(), nil
}

// IsLateCancellation returns true when the class is close enough that a
// cancellation incurs the late penalty. Exactly-on-time and already-started
// classes are NOT late - the caller decides what to do with hours <= 0.
func IsLateCancellation(hours, windowHours float64) bool {
	return hours < windowHours && hours > 0
}

// IsSwitchWindowOpen returns true while a booking may still be switched
func IsSwitchWindowOpen(hours, windowHours float64) bool {
	return hours >= windowHours
}

// WeekStart returns Sunday 00:00 of the week containing t, in t's location
func WeekStart(t time.Time) time.Time {
	y, m, d := t.AddDate(0, 0, -int(t.Weekday())).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RegistrationUnlockTime returns the moment the NEXT week's schedule opens
// for booking: noon of the current week's unlock day. Standard plans unlock
// on Thursday, early-unlock tiers on Wednesday.
func RegistrationUnlockTime(now time.Time, earlyUnlock bool) time.Time {
	unlockDay := StandardUnlockDay
	if earlyUnlock {
		unlockDay = EarlyUnlockDay
	}

	day := WeekStart(now).AddDate(0, 0, unlockDay)
	return time.Date(day.Year(), day.Month(), day.Day(), UnlockHour, 0, 0, 0, now.Location())
}

// IsNextWeekUnlocked reports whether next week's classes are bookable.
// The boundary is exact: at Thursday 11:59 next week is still locked,
// at Thursday 12:00 sharp it opens.
func IsNextWeekUnlocked(now time.Time, earlyUnlock bool) bool {
	return !now.Before(RegistrationUnlockTime(now, earlyUnlock))
}

// IsRegistrationOpenFor reports whether a class on classDate may be booked
// at the given moment. The current week is always open (past classes are the
// caller's concern), the next week opens at the unlock moment, anything
// beyond next week is locked.
func IsRegistrationOpenFor(classDate time.Time, now time.Time, earlyUnlock bool) bool {
	weekStart := WeekStart(now)
	nextWeekStart := weekStart.AddDate(0, 0, 7)
	weekAfterStart := weekStart.AddDate(0, 0, 14)

	y, m, d := classDate.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch {
	case date.Before(nextWeekStart):
		return true
	case date.Before(weekAfterStart):
		return IsNextWeekUnlocked(now, earlyUnlock)
	default:
		return false
	}
}
