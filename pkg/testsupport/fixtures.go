package testsupport

import "time"

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FixedClock returns a clock frozen at now.
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// DatePtr is Date returning a pointer.
func DatePtr(year int, month time.Month, day int) *time.Time {
	value := Date(year, month, day)
	return &value
}
