//go:build simtime_f32

package sim

import (
	"cmp"
	"math"
	"strconv"
)

// Time is a point on the simulation clock, in abstract units (single precision).
type Time float32

// Duration is a span of simulation time in the same units as Time.
type Duration float32

const (
	// ZeroDuration schedules work at the current instant.
	ZeroDuration Duration = 0
	// MaxTime is later than any time a model can schedule.
	MaxTime Time = math.MaxFloat32
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

func (t Time) String() string { return strconv.FormatFloat(float64(t), 'g', -1, 32) }

func validTime(t Time) bool {
	f := float64(t)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validDuration(d Duration) bool { return d >= 0 && !math.IsInf(float64(d), 1) }
