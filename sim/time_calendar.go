//go:build simtime_calendar

package sim

import "time"

// Time is a calendar instant on the simulation clock. One unit is one second
// after the Unix epoch.
type Time struct {
	ts time.Time
}

// Duration is a calendar duration.
type Duration = time.Duration

// ZeroDuration schedules work at the current instant.
const ZeroDuration Duration = 0

var (
	epoch = time.Unix(0, 0).UTC()

	// MaxTime is later than any time a model can schedule.
	MaxTime = Time{ts: time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)}
)

// TimeOf converts a number of seconds since the Unix epoch into a Time.
func TimeOf(units float64) Time {
	return Time{ts: epoch.Add(DurationOf(units))}
}

// DurationOf converts a number of seconds into a Duration.
func DurationOf(units float64) Duration {
	return time.Duration(units * float64(time.Second))
}

// CalendarTime wraps a wall-calendar instant.
func CalendarTime(ts time.Time) Time { return Time{ts: ts.UTC()} }

// Std returns the underlying calendar instant.
func (t Time) Std() time.Time { return t.ts }

// Add returns t+d.
func (t Time) Add(d Duration) Time { return Time{ts: t.ts.Add(d)} }

// Sub returns the duration t-u, saturating like time.Time.Sub.
func (t Time) Sub(u Time) Duration { return t.ts.Sub(u.ts) }

// Compare returns -1, 0 or +1 depending on whether t is before, equal to or after u.
func (t Time) Compare(u Time) int { return t.ts.Compare(u.ts) }

// Units returns t as seconds since the Unix epoch.
func (t Time) Units() float64 {
	return float64(t.ts.Unix()) + float64(t.ts.Nanosecond())/1e9
}

func (t Time) String() string { return t.ts.Format(time.RFC3339Nano) }

func validTime(Time) bool { return true }

func validDuration(d Duration) bool { return d >= 0 }
