package planner

import (
	"testing"
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
)

const testZone = "America/Boise"

func testPlanner(t *testing.T, opts ...Option) *Planner {
	t.Helper()
	clock, err := businesstime.New(testZone)
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return New(clock, opts...)
}

// at builds an instant from Boise wall-clock fields.
func at(t *testing.T, year int, month time.Month, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(testZone)
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func date(t *testing.T, s string) businesstime.Date {
	t.Helper()
	d, err := businesstime.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func intPtr(v int) *int { return &v }

func weekdayPtr(d time.Weekday) *time.Weekday { return &d }

func todPtr(s string) *businesstime.TimeOfDay {
	v := businesstime.MustTimeOfDay(s)
	return &v
}

func thursdaySchedule(leadDays int) domain.DeliverySchedule {
	return domain.DeliverySchedule{
		ID:           "thu",
		Name:         "Thursday route",
		DayOfWeek:    time.Thursday,
		CutoffDay:    time.Tuesday,
		CutoffTime:   businesstime.MustTimeOfDay("23:59"),
		LeadTimeDays: leadDays,
		TimeWindow:   "9am-1pm",
		Active:       true,
	}
}

func saturdaySchedule() domain.DeliverySchedule {
	return domain.DeliverySchedule{
		ID:           "sat",
		Name:         "Saturday route",
		DayOfWeek:    time.Saturday,
		CutoffDay:    time.Thursday,
		CutoffTime:   businesstime.MustTimeOfDay("12:00"),
		LeadTimeDays: 1,
		TimeWindow:   "8am-11am",
		Active:       true,
	}
}
