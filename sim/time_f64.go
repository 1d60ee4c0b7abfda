//go:build !simtime_f32 && !simtime_calendar

package sim

import (
	"cmp"
	"math"
	"strconv"
)

// Time is a point on the simulation clock, in abstract units (double precision).
type Time float64

// Duration is a span of simulation time in the same units as Time.
type Duration float64

const (
	// ZeroDuration schedules work at the current instant.
	ZeroDuration Duration = 0
	// MaxTime is later than any time a model can schedule.
	MaxTime Time = math.MaxFloat64
)

// TimeOf converts a unit count into a Time.
func TimeOf(units float64) Time { return Time(units) }

// DurationOf converts a unit count into a Duration.
func DurationOf(units float64) Duration { return Duration(units) }

// Add returns t+d.
func (t Time) Add(d Duration) Time { return t + Time(d) }

// Sub returns the duration t-u.
func (t Time) Sub(u Time) Duration { return Duration(t - u) }

// Compare returns -1, 0 or +1 depending on whether t is before, equal to or after u.
func (t Time) Compare(u Time) int { return cmp.Compare(t, u) }

// Units returns t as a unit count.
func (t Time) Units() float64 { return float64(t) }

func (t Time) String() string { return strconv.FormatFloat(float64(t), 'g', -1, 64) }

func validTime(t Time) bool { return !math.IsNaN(float64(t)) && !math.IsInf(float64(t), 0) }

// NaN fails the comparison.
func validDuration(d Duration) bool { return d >= 0 && !math.IsInf(float64(d), 1) }
