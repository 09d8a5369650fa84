// Package planner computes delivery and pickup dates from weekly schedules,
// cutoffs, lead times and calendar closures. Every function is pure over the
// entities it is handed; fetching them is the caller's job.
package planner

import (
	"fmt"
	"strings"
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
)

// RolloverPolicy decides where a delivery lands once its cutoff has passed.
type RolloverPolicy int

const (
	// RolloverAlways moves to the week after next whenever the cutoff has passed.
	RolloverAlways RolloverPolicy = iota
	// RolloverSameWeek rolls only when the delivery weekday is today or still
	// ahead in the current week; otherwise the next occurrence already lies in
	// the next cycle.
	RolloverSameWeek
)

// ParseRolloverPolicy accepts "always" or "same-week".
func ParseRolloverPolicy(s string) (RolloverPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "always":
		return RolloverAlways, nil
	case "same-week", "same_week":
		return RolloverSameWeek, nil
	}
	return 0, fmt.Errorf("%w: unknown rollover policy %q", domain.ErrInvalidInput, s)
}

func (p RolloverPolicy) String() string {
	if p == RolloverSameWeek {
		return "same-week"
	}
	return "always"
}

// Planner carries the time authority and policy shared by all plans.
type Planner struct {
	clock    *businesstime.Authority
	rollover RolloverPolicy
}

// Option customizes a Planner.
type Option func(*Planner)

func WithRollover(p RolloverPolicy) Option {
	return func(pl *Planner) { pl.rollover = p }
}

func New(clock *businesstime.Authority, opts ...Option) *Planner {
	p := &Planner{clock: clock, rollover: RolloverAlways}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) Clock() *businesstime.Authority {
	return p.clock
}

// firstCandidate picks the occurrence of day for the current ordering cycle.
func (p *Planner) firstCandidate(day time.Weekday, now businesstime.WallClock, beforeCutoff bool) businesstime.Date {
	today := now.Date()
	if beforeCutoff {
		return NextOccurrence(day, today)
	}
	if p.rollover == RolloverSameWeek && day < now.Weekday {
		return NextOccurrence(day, today)
	}
	return WeekAfterNext(day, today)
}
