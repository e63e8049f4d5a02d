package planner

import (
	"fmt"
	"strings"
	"time"
)

// Selector values accepted by the campaign API
const (
	SelectorImmediate = "immediate"
	SelectorHourly    = "hourly"
	SelectorDaily     = "daily"
	SelectorCustom    = "custom"
)

// unresolved stands in for a selector that could not be mapped. Plan reports its
// error only after the selection checks, so validation order is preserved.
type unresolved struct {
	selector string
	err      error
}

func (u unresolved) Name() string { return u.selector }
func (unresolved) policy()        {}

// FromSelector maps an API selector onto a Policy. Hourly and daily start at startAt,
// or at now when startAt is nil; custom uses startAt as an optional anchor.
// An unknown selector or unit yields a policy that Plan rejects as KindInvalidPolicy.
func FromSelector(selector, unit string, magnitude int, startAt *time.Time, now time.Time) Policy {
	normalized := strings.ToLower(strings.TrimSpace(selector))
	start := now
	if startAt != nil {
		start = *startAt
	}
	switch normalized {
	case SelectorImmediate:
		return Immediate{}
	case SelectorHourly:
		return Anchored{Start: start, Cadence: Hourly}
	case SelectorDaily:
		return Anchored{Start: start, Cadence: Daily}
	case SelectorCustom:
		u, err := ParseUnit(strings.ToLower(strings.TrimSpace(unit)))
		if err != nil {
			return unresolved{selector: normalized, err: err}
		}
		return FixedInterval{Unit: u, Magnitude: magnitude, Anchor: startAt}
	}
	return unresolved{selector: normalized, err: invalidPolicy(fmt.Sprintf("unknown policy %q", selector))}
}
