package sim

import "fmt"

// Before reports whether t is strictly earlier than u.
func (t Time) Before(u Time) bool { return t.Compare(u) < 0 }

// After reports whether t is strictly later than u.
func (t Time) After(u Time) bool { return t.Compare(u) > 0 }

// Equal reports whether t and u denote the same instant.
func (t Time) Equal(u Time) bool { return t.Compare(u) == 0 }

type triggerKind uint8

const (
	triggerNow triggerKind = iota
	triggerAfter
	triggerAt
)

// Trigger expresses when a scheduling request fires, relative to the clock
// at the moment it is resolved.
type Trigger struct {
	kind  triggerKind
	at    Time
	delay Duration
}

// Immediately fires at the current instant, after the work already queued for it.
func Immediately() Trigger { return Trigger{kind: triggerNow} }

// After fires d after the current instant. d must be non-negative.
func After(d Duration) Trigger { return Trigger{kind: triggerAfter, delay: d} }

// At fires at the absolute time t. t must not precede the current instant.
func At(t Time) Trigger { return Trigger{kind: triggerAt, at: t} }

// Resolve turns the trigger into an absolute time relative to now.
func (tr Trigger) Resolve(now Time) (Time, error) {
	switch tr.kind {
	case triggerNow:
		return now, nil
	case triggerAfter:
		if !validDuration(tr.delay) {
			return now, &Error{Kind: KindInvalidSchedule, Time: now,
				Detail: fmt.Sprintf("invalid delay %v", tr.delay)}
		}
		at := now.Add(tr.delay)
		if !validTime(at) {
			return now, &Error{Kind: KindInvalidSchedule, Time: now,
				Detail: fmt.Sprintf("delay %v overflows the clock", tr.delay)}
		}
		return at, nil
	case triggerAt:
		if !validTime(tr.at) {
			return now, &Error{Kind: KindInvalidSchedule, Time: now,
				Detail: fmt.Sprintf("invalid time %v", tr.at)}
		}
		if tr.at.Before(now) {
			return now, &Error{Kind: KindInvalidSchedule, Time: now,
				Detail: fmt.Sprintf("time %v is in the past", tr.at)}
		}
		return tr.at, nil
	}
	return now, &Error{Kind: KindInvalidSchedule, Time: now, Detail: "unknown trigger"}
}

func (tr Trigger) String() string {
	switch tr.kind {
	case triggerAfter:
		return fmt.Sprintf("after(%v)", tr.delay)
	case triggerAt:
		return fmt.Sprintf("at(%v)", tr.at)
	default:
		return "immediately"
	}
}
