package planner

import (
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
)

// NextOccurrence returns the earliest date on or after from that falls on
// target. If from is already a target weekday, from itself is returned.
func NextOccurrence(target time.Weekday, from businesstime.Date) businesstime.Date {
	delta := (int(target) - int(from.Weekday()) + 7) % 7
	return from.AddDays(delta)
}

// WeekAfterNext is NextOccurrence plus seven days.
func WeekAfterNext(target time.Weekday, from businesstime.Date) businesstime.Date {
	return NextOccurrence(target, from).AddDays(7)
}

// ClosureSet holds closed dates for a single fulfillment type.
type ClosureSet map[businesstime.Date]struct{}

// NewClosureSet keeps the closures that affect t.
func NewClosureSet(closures []domain.CalendarClosure, t domain.FulfillmentType) ClosureSet {
	set := make(ClosureSet, len(closures))
	for _, c := range closures {
		if c.Affects(t) {
			set[c.Date] = struct{}{}
		}
	}
	return set
}

func (s ClosureSet) Contains(d businesstime.Date) bool {
	_, ok := s[d]
	return ok
}

// SkipClosures advances d a week at a time until it is not closed. The
// weekday never changes.
func SkipClosures(d businesstime.Date, closed ClosureSet) businesstime.Date {
	for closed.Contains(d) {
		d = d.AddDays(7)
	}
	return d
}

// applyLeadTime pushes candidate forward by whole weeks until it is no
// earlier than minimum.
func applyLeadTime(candidate, minimum businesstime.Date) businesstime.Date {
	for candidate.Before(minimum) {
		candidate = candidate.AddDays(7)
	}
	return candidate
}
