package planner

import (
	"testing"
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
)

func TestNextOccurrence_Properties(t *testing.T) {
	start := businesstime.Date{Year: 2026, Month: time.February, Day: 20}
	for offset := 0; offset < 28; offset++ {
		ref := start.AddDays(offset)
		for d := time.Sunday; d <= time.Saturday; d++ {
			got := NextOccurrence(d, ref)
			if got.Before(ref) {
				t.Fatalf("NextOccurrence(%s, %s) = %s is before reference", d, ref, got)
			}
			if got.Weekday() != d {
				t.Fatalf("NextOccurrence(%s, %s) = %s has weekday %s", d, ref, got, got.Weekday())
			}
			if ref.DaysUntil(got) > 6 {
				t.Fatalf("NextOccurrence(%s, %s) = %s is more than a week out", d, ref, got)
			}
			if ref.Weekday() == d && got != ref {
				t.Fatalf("expected same-day result for %s, got %s", ref, got)
			}
			if after := WeekAfterNext(d, ref); after != got.AddDays(7) {
				t.Fatalf("WeekAfterNext(%s, %s) = %s, want %s", d, ref, after, got.AddDays(7))
			}
		}
	}
}

func TestSkipClosures_AdvancesWholeWeeks(t *testing.T) {
	closures := []domain.CalendarClosure{
		{Date: date(t, "2026-10-15"), ClosedForDelivery: true},
		{Date: date(t, "2026-10-22"), ClosedForDelivery: true, ClosedForPickup: true},
		{Date: date(t, "2026-10-29"), ClosedForPickup: true},
	}

	delivery := NewClosureSet(closures, domain.FulfillmentDelivery)
	if got := SkipClosures(date(t, "2026-10-15"), delivery); got != date(t, "2026-10-29") {
		t.Fatalf("expected two-week skip to 2026-10-29, got %s", got)
	}

	pickup := NewClosureSet(closures, domain.FulfillmentPickup)
	if got := SkipClosures(date(t, "2026-10-15"), pickup); got != date(t, "2026-10-15") {
		t.Fatalf("delivery-only closure must not affect pickup, got %s", got)
	}
	if got := SkipClosures(date(t, "2026-10-22"), pickup); got != date(t, "2026-11-05") {
		t.Fatalf("expected 2026-11-05, got %s", got)
	}
}

func TestIsBeforeCutoff(t *testing.T) {
	cutoff := businesstime.MustTimeOfDay("14:30")
	cases := []struct {
		name string
		now  businesstime.WallClock
		want bool
	}{
		{"earlier weekday", businesstime.WallClock{Weekday: time.Monday, Hour: 23, Minute: 59}, true},
		{"later weekday", businesstime.WallClock{Weekday: time.Wednesday, Hour: 0, Minute: 0}, false},
		{"same day earlier", businesstime.WallClock{Weekday: time.Tuesday, Hour: 14, Minute: 29}, true},
		{"exactly at cutoff minute", businesstime.WallClock{Weekday: time.Tuesday, Hour: 14, Minute: 30}, true},
		{"one minute late", businesstime.WallClock{Weekday: time.Tuesday, Hour: 14, Minute: 31}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsBeforeCutoff(tc.now, time.Tuesday, cutoff); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestIsBeforeCutoff_MonotonicWithinWeek(t *testing.T) {
	cutoff := businesstime.MustTimeOfDay("23:59")
	clock := businesstime.MustNew(testZone)
	start := at(t, 2026, time.October, 11, 0, 0) // Sunday
	crossed := false
	for step := 0; step < 7*24*4; step++ {
		instant := start.Add(time.Duration(step) * 15 * time.Minute)
		before := IsBeforeCutoff(clock.ToBusinessTime(instant), time.Tuesday, cutoff)
		if crossed && before {
			t.Fatalf("cutoff flapped back to open at %s", instant)
		}
		if !before {
			crossed = true
		}
	}
	if !crossed {
		t.Fatalf("cutoff never passed during the week")
	}
}
