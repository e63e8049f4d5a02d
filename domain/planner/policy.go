package planner

import (
	"fmt"
	"time"
)

// Unit is the time unit of a FixedInterval policy
type Unit int

const (
	Minutes Unit = iota + 1
	Hours
	Days
)

func (u Unit) duration() (time.Duration, bool) {
	switch u {
	case Minutes:
		return time.Minute, true
	case Hours:
		return time.Hour, true
	case Days:
		return 24 * time.Hour, true
	}
	return 0, false
}

func (u Unit) String() string {
	switch u {
	case Minutes:
		return "minutes"
	case Hours:
		return "hours"
	case Days:
		return "days"
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

// ParseUnit accepts the singular and plural spelling of a unit name
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "minute", "minutes":
		return Minutes, nil
	case "hour", "hours":
		return Hours, nil
	case "day", "days":
		return Days, nil
	}
	return 0, invalidPolicy(fmt.Sprintf("unknown interval unit %q", s))
}

// Cadence is the fixed step of an Anchored policy
type Cadence int

const (
	Hourly Cadence = iota + 1
	Daily
)

func (c Cadence) duration() (time.Duration, bool) {
	switch c {
	case Hourly:
		return time.Hour, true
	case Daily:
		return 24 * time.Hour, true
	}
	return 0, false
}

func (c Cadence) String() string {
	switch c {
	case Hourly:
		return "hourly"
	case Daily:
		return "daily"
	}
	return fmt.Sprintf("cadence(%d)", int(c))
}

// Policy decides how scheduled instants are spread across the fan-out.
// Implementations are Immediate, FixedInterval and Anchored.
type Policy interface {
	// Name is the selector string the policy was built from
	Name() string
	policy()
}

// Immediate schedules every pair at the instant planning started
type Immediate struct{}

// FixedInterval spaces pairs Magnitude units apart. A nil Anchor means "now".
type FixedInterval struct {
	Unit      Unit
	Magnitude int
	Anchor    *time.Time
}

// Anchored starts at Start and advances one cadence step per pair
type Anchored struct {
	Start   time.Time
	Cadence Cadence
}

func (Immediate) Name() string     { return "immediate" }
func (FixedInterval) Name() string { return "custom" }
func (a Anchored) Name() string    { return a.Cadence.String() }

func (Immediate) policy()     {}
func (FixedInterval) policy() {}
func (Anchored) policy()      {}

// schedule resolves a policy into a base instant and a step between consecutive sequence indices
func schedule(p Policy, now time.Time) (base time.Time, step time.Duration, err error) {
	switch v := p.(type) {
	case Immediate:
		return now, 0, nil
	case *Immediate:
		return now, 0, nil
	case FixedInterval:
		return fixedInterval(v, now)
	case *FixedInterval:
		if v == nil {
			return time.Time{}, 0, invalidPolicy("nil policy")
		}
		return fixedInterval(*v, now)
	case Anchored:
		return anchored(v)
	case *Anchored:
		if v == nil {
			return time.Time{}, 0, invalidPolicy("nil policy")
		}
		return anchored(*v)
	case unresolved:
		return time.Time{}, 0, v.err
	case nil:
		return time.Time{}, 0, invalidPolicy("no policy given")
	}
	return time.Time{}, 0, invalidPolicy(fmt.Sprintf("unsupported policy %T", p))
}

func fixedInterval(v FixedInterval, now time.Time) (time.Time, time.Duration, error) {
	unit, ok := v.Unit.duration()
	if !ok {
		return time.Time{}, 0, invalidPolicy(fmt.Sprintf("unknown interval unit %s", v.Unit))
	}
	if v.Magnitude <= 0 {
		return time.Time{}, 0, invalidPolicy(fmt.Sprintf("interval magnitude must be positive, got %d", v.Magnitude))
	}
	step := time.Duration(v.Magnitude) * unit
	if step/unit != time.Duration(v.Magnitude) {
		return time.Time{}, 0, invalidPolicy(fmt.Sprintf("interval of %d %s overflows", v.Magnitude, v.Unit))
	}
	base := now
	if v.Anchor != nil {
		base = v.Anchor.UTC()
	}
	return base, step, nil
}

func anchored(v Anchored) (time.Time, time.Duration, error) {
	step, ok := v.Cadence.duration()
	if !ok {
		return time.Time{}, 0, invalidPolicy(fmt.Sprintf("unknown cadence %s", v.Cadence))
	}
	if v.Start.IsZero() {
		return time.Time{}, 0, invalidPolicy("anchored policy needs a start instant")
	}
	return v.Start.UTC(), step, nil
}
