// Package planner expands a campaign selection into scheduled posts.
//
// Plan walks content items in caller order and, for each item, destinations in
// caller order. Every produced pair gets the next sequence index, starting at 0,
// and an instant of base + sequence*step where base and step come from the
// policy. The planner performs no I/O and keeps no state between calls.
package planner

import (
	"fmt"
	"math"
	"time"

	"clipcast/domain/model"
)

// Planner computes fan-out plans. The zero value is not usable; use New.
type Planner struct {
	now func() time.Time
}

type Option func(*Planner)

// WithClock replaces the wall clock used for Immediate and unanchored intervals
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		if now != nil {
			p.now = now
		}
	}
}

func New(opts ...Option) *Planner {
	p := &Planner{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan returns len(items)*len(destinations) posts or an *Error and no posts.
// Inputs are never modified.
func (p *Planner) Plan(items []model.ContentItem, destinations []model.Destination, policy Policy) ([]model.ScheduledPost, error) {
	if err := CheckSelection(len(items), len(destinations)); err != nil {
		return nil, err
	}
	for _, d := range destinations {
		if !d.IsActive {
			return nil, inactiveDestination(d.ID)
		}
	}

	// read once so every pair of an Immediate plan shares the same instant
	now := p.now().UTC()
	base, step, err := schedule(policy, now)
	if err != nil {
		return nil, err
	}
	total := len(items) * len(destinations)
	if step > 0 && int64(total-1) > math.MaxInt64/int64(step) {
		return nil, invalidPolicy(fmt.Sprintf("%d posts at %s apart overflow the schedule", total, step))
	}

	status := model.PostStatusScheduled
	if isImmediate(policy) {
		status = model.PostStatusPosting
	}

	posts := make([]model.ScheduledPost, 0, total)
	seq := 0
	for _, item := range items {
		for _, dest := range destinations {
			posts = append(posts, model.ScheduledPost{
				Key:           PostKey(item.ID, dest.ID, seq),
				ContentID:     item.ID,
				DestinationID: dest.ID,
				ScheduledAt:   base.Add(time.Duration(seq) * step),
				Sequence:      seq,
				Status:        status,
			})
			seq++
		}
	}
	return posts, nil
}

// PostKey is the deterministic identifier of a planned pair
func PostKey(contentID, destinationID string, seq int) string {
	return fmt.Sprintf("%s:%s:%d", contentID, destinationID, seq)
}

func isImmediate(p Policy) bool {
	switch p.(type) {
	case Immediate, *Immediate:
		return true
	}
	return false
}
