package planner_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipcast/domain/planner"
)

func TestFromSelector(t *testing.T) {
	now := anchor.Add(7 * time.Minute)
	start := anchor.Add(48 * time.Hour)

	tests := []struct {
		name      string
		selector  string
		unit      string
		magnitude int
		startAt   *time.Time
		want      planner.Policy
	}{
		{"immediate", "immediate", "", 0, nil, planner.Immediate{}},
		{"hourly without start", "hourly", "", 0, nil, planner.Anchored{Start: now, Cadence: planner.Hourly}},
		{"daily with start", " Daily ", "", 0, &start, planner.Anchored{Start: start, Cadence: planner.Daily}},
		{"custom", "custom", "Minutes", 15, nil, planner.FixedInterval{Unit: planner.Minutes, Magnitude: 15}},
		{"custom anchored", "custom", "day", 2, &start, planner.FixedInterval{Unit: planner.Days, Magnitude: 2, Anchor: &start}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planner.FromSelector(tt.selector, tt.unit, tt.magnitude, tt.startAt, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromSelector_UnknownIsInvalidPolicy(t *testing.T) {
	p := planner.New(fixedClock(anchor))

	for _, pol := range []planner.Policy{
		planner.FromSelector("weekly", "", 0, nil, anchor),
		planner.FromSelector("custom", "fortnights", 1, nil, anchor),
	} {
		_, err := p.Plan(content("c1"), destinations("d1"), pol)
		require.Error(t, err)
		assert.True(t, errors.Is(err, planner.ErrInvalidPolicy))
	}
}

func TestFromSelector_UnknownKeepsValidationOrder(t *testing.T) {
	p := planner.New(fixedClock(anchor))

	_, err := p.Plan(nil, destinations("d1"), planner.FromSelector("weekly", "", 0, nil, anchor))
	assert.True(t, errors.Is(err, planner.ErrEmptySelection))
}
