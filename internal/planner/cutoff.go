package planner

import (
	"time"

	"bakery-fulfillment/internal/businesstime"
)

// IsBeforeCutoff reports whether now falls on or before the weekly cutoff.
// now must already be in business time. The comparison is inclusive at the
// minute: an order placed exactly at the cutoff minute is still accepted.
func IsBeforeCutoff(now businesstime.WallClock, cutoffDay time.Weekday, cutoff businesstime.TimeOfDay) bool {
	switch {
	case now.Weekday < cutoffDay:
		return true
	case now.Weekday > cutoffDay:
		return false
	}
	return now.TimeOfDay().Minutes() <= cutoff.Minutes()
}

// daysBack returns how many days before an occurrence on day the cutoff
// weekday falls within the same cycle.
func daysBack(day, cutoffDay time.Weekday) int {
	return (int(day) - int(cutoffDay) + 7) % 7
}
