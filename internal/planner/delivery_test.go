package planner

import (
	"testing"
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestNextDeliveryDate_BeforeCutoffUsesThisWeek(t *testing.T) {
	p := testPlanner(t)
	monday := at(t, 2026, time.October, 12, 10, 0)

	got, ok := p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}}, monday)
	if !ok {
		t.Fatalf("expected a delivery option")
	}
	want := DeliveryOption{
		ScheduleID:   "thu",
		DeliveryDate: date(t, "2026-10-15"),
		CutoffAt:     at(t, 2026, time.October, 13, 23, 59),
		TimeWindow:   "9am-1pm",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected option (-want +got):\n%s", diff)
	}
}

func TestNextDeliveryDate_AfterCutoffRollsToNextWeek(t *testing.T) {
	p := testPlanner(t)
	wednesday := at(t, 2026, time.October, 14, 9, 0)

	got, ok := p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}}, wednesday)
	if !ok {
		t.Fatalf("expected a delivery option")
	}
	if got.DeliveryDate != date(t, "2026-10-22") {
		t.Fatalf("expected next week's Thursday, got %s", got.DeliveryDate)
	}
	if !got.CutoffAt.Equal(at(t, 2026, time.October, 20, 23, 59)) {
		t.Fatalf("unexpected cutoff %s", got.CutoffAt)
	}
}

func TestNextDeliveryDate_AcceptsOrderAtCutoffMinute(t *testing.T) {
	p := testPlanner(t)
	got, ok := p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}}, at(t, 2026, time.October, 13, 23, 59))
	if !ok || got.DeliveryDate != date(t, "2026-10-15") {
		t.Fatalf("expected 2026-10-15 at the cutoff minute, got %+v ok=%v", got, ok)
	}
	got, ok = p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}}, at(t, 2026, time.October, 14, 0, 0))
	if !ok || got.DeliveryDate != date(t, "2026-10-22") {
		t.Fatalf("expected 2026-10-22 one minute after cutoff, got %+v ok=%v", got, ok)
	}
}

func TestNextDeliveryDate_LeadTimePush(t *testing.T) {
	p := testPlanner(t)
	wednesday := at(t, 2026, time.October, 14, 9, 0)

	short, _ := p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}}, wednesday)
	if short.DeliveryDate != date(t, "2026-10-22") {
		t.Fatalf("8 days out already satisfies lead time 2, got %s", short.DeliveryDate)
	}

	long, _ := p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(10)}}, wednesday)
	if long.DeliveryDate != date(t, "2026-10-29") {
		t.Fatalf("lead time 10 should push one more week, got %s", long.DeliveryDate)
	}
	if !long.CutoffAt.Equal(at(t, 2026, time.October, 27, 23, 59)) {
		t.Fatalf("cutoff should follow the chosen occurrence, got %s", long.CutoffAt)
	}
}

func TestNextDeliveryDate_RuleLeadTimeOverridesSchedule(t *testing.T) {
	p := testPlanner(t)
	monday := at(t, 2026, time.October, 12, 10, 0)
	rule := &domain.ProductDeliveryRule{ProductID: "cake", AllowDelivery: true, MinimumLeadTimeDays: intPtr(5)}

	got, ok := p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}, Rule: rule}, monday)
	if !ok || got.DeliveryDate != date(t, "2026-10-22") {
		t.Fatalf("expected rule lead time to push to 2026-10-22, got %+v ok=%v", got, ok)
	}

	zero := &domain.ProductDeliveryRule{ProductID: "cake", AllowDelivery: true, MinimumLeadTimeDays: intPtr(0)}
	sched := thursdaySchedule(30)
	got, _ = p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{sched}, Rule: zero}, monday)
	if got.DeliveryDate != date(t, "2026-10-15") {
		t.Fatalf("explicit zero lead time must override schedule default, got %s", got.DeliveryDate)
	}
}

func TestNextDeliveryDate_SkipsClosures(t *testing.T) {
	p := testPlanner(t)
	monday := at(t, 2026, time.October, 12, 10, 0)
	closures := NewClosureSet([]domain.CalendarClosure{
		{Date: date(t, "2026-10-15"), ClosedForDelivery: true},
	}, domain.FulfillmentDelivery)

	got, ok := p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}, Closures: closures}, monday)
	if !ok {
		t.Fatalf("expected a delivery option")
	}
	if got.DeliveryDate == date(t, "2026-10-15") {
		t.Fatalf("planner returned a closed date")
	}
	if got.DeliveryDate != date(t, "2026-10-22") {
		t.Fatalf("expected 2026-10-22 after closure, got %s", got.DeliveryDate)
	}

	pickupOnly := NewClosureSet([]domain.CalendarClosure{
		{Date: date(t, "2026-10-15"), ClosedForPickup: true},
	}, domain.FulfillmentDelivery)
	got, _ = p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}, Closures: pickupOnly}, monday)
	if got.DeliveryDate != date(t, "2026-10-15") {
		t.Fatalf("pickup closure must not affect delivery, got %s", got.DeliveryDate)
	}
}

func TestNextDeliveryDate_EarliestAcrossSchedules(t *testing.T) {
	p := testPlanner(t)
	wednesday := at(t, 2026, time.October, 14, 9, 0)
	schedules := []domain.DeliverySchedule{thursdaySchedule(2), saturdaySchedule()}

	got, ok := p.NextDeliveryDate(DeliveryInput{Schedules: schedules}, wednesday)
	if !ok || got.ScheduleID != "sat" || got.DeliveryDate != date(t, "2026-10-17") {
		t.Fatalf("expected Saturday 2026-10-17, got %+v ok=%v", got, ok)
	}

	thursdayOnly := &domain.ProductDeliveryRule{AllowDelivery: true, AllowedDeliveryDays: []time.Weekday{time.Thursday}}
	got, ok = p.NextDeliveryDate(DeliveryInput{Schedules: schedules, Rule: thursdayOnly}, wednesday)
	if !ok || got.ScheduleID != "thu" || got.DeliveryDate != date(t, "2026-10-22") {
		t.Fatalf("expected Thursday-only rule to pick 2026-10-22, got %+v ok=%v", got, ok)
	}
}

func TestNextDeliveryDate_Unavailable(t *testing.T) {
	p := testPlanner(t)
	now := at(t, 2026, time.October, 14, 9, 0)
	inactive := thursdaySchedule(2)
	inactive.Active = false

	cases := map[string]DeliveryInput{
		"no schedules":      {},
		"inactive only":     {Schedules: []domain.DeliverySchedule{inactive}},
		"rule blocks days":  {Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}, Rule: &domain.ProductDeliveryRule{AllowDelivery: true, AllowedDeliveryDays: []time.Weekday{time.Monday}}},
		"delivery disabled": {Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}, Rule: &domain.ProductDeliveryRule{AllowPickup: true}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if got, ok := p.NextDeliveryDate(in, now); ok {
				t.Fatalf("expected no option, got %+v", got)
			}
		})
	}
}

func TestNextDeliveryDate_Idempotent(t *testing.T) {
	p := testPlanner(t)
	now := at(t, 2026, time.October, 14, 9, 0)
	in := DeliveryInput{
		Schedules: []domain.DeliverySchedule{thursdaySchedule(2), saturdaySchedule()},
		Closures:  NewClosureSet([]domain.CalendarClosure{{Date: date(t, "2026-10-17"), ClosedForDelivery: true}}, domain.FulfillmentDelivery),
	}
	first, _ := p.NextDeliveryDate(in, now)
	second, _ := p.NextDeliveryDate(in, now)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated plans differ (-first +second):\n%s", diff)
	}
}

func TestNextDeliveryDate_RolloverPolicies(t *testing.T) {
	friday := at(t, 2026, time.October, 16, 9, 0)
	in := DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}}

	always, _ := testPlanner(t).NextDeliveryDate(in, friday)
	if always.DeliveryDate != date(t, "2026-10-29") {
		t.Fatalf("always rollover: expected 2026-10-29, got %s", always.DeliveryDate)
	}

	sameWeek, _ := testPlanner(t, WithRollover(RolloverSameWeek)).NextDeliveryDate(in, friday)
	if sameWeek.DeliveryDate != date(t, "2026-10-22") {
		t.Fatalf("same-week rollover: expected 2026-10-22, got %s", sameWeek.DeliveryDate)
	}

	wednesday := at(t, 2026, time.October, 14, 9, 0)
	sameWeek, _ = testPlanner(t, WithRollover(RolloverSameWeek)).NextDeliveryDate(in, wednesday)
	if sameWeek.DeliveryDate != date(t, "2026-10-22") {
		t.Fatalf("same-week rollover before delivery day: expected 2026-10-22, got %s", sameWeek.DeliveryDate)
	}
}

func TestNextDeliveryDate_SameWeekRolloverOnDeliveryDay(t *testing.T) {
	thursday := at(t, 2026, time.October, 15, 10, 0)
	sameDay := thursdaySchedule(0)
	sameDay.CutoffDay = time.Thursday
	sameDay.CutoffTime = businesstime.MustTimeOfDay("08:00")

	cases := map[string]domain.DeliverySchedule{
		"cutoff earlier that day":  sameDay,
		"cutoff earlier that week": thursdaySchedule(0),
	}
	p := testPlanner(t, WithRollover(RolloverSameWeek))
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{s}}, thursday)
			if !ok {
				t.Fatalf("expected an option")
			}
			if got.DeliveryDate != date(t, "2026-10-22") {
				t.Fatalf("expected 2026-10-22, got %s", got.DeliveryDate)
			}
			if !got.CutoffAt.After(thursday) {
				t.Fatalf("cutoff %s is not after the order instant %s", got.CutoffAt, thursday)
			}
		})
	}
}

func TestParseRolloverPolicy(t *testing.T) {
	for in, want := range map[string]RolloverPolicy{"": RolloverAlways, "always": RolloverAlways, "Same-Week": RolloverSameWeek} {
		got, err := ParseRolloverPolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParseRolloverPolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseRolloverPolicy("sometimes"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestNextDeliveryDate_HostZoneIndependent(t *testing.T) {
	p := testPlanner(t)
	// Tuesday 23:30 in Boise is already Wednesday in UTC.
	instant := at(t, 2026, time.October, 13, 23, 30).In(time.UTC)
	got, ok := p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}}, instant)
	if !ok || got.DeliveryDate != date(t, "2026-10-15") {
		t.Fatalf("expected 2026-10-15 from business-local Tuesday, got %+v", got)
	}
}

func TestCartDeliveryDate_LatestItemWins(t *testing.T) {
	p := testPlanner(t)
	wednesday := at(t, 2026, time.October, 14, 9, 0)
	in := CartDeliveryInput{
		Schedules: []domain.DeliverySchedule{thursdaySchedule(2), saturdaySchedule()},
		Rules: map[string]*domain.ProductDeliveryRule{
			"pie": {ProductID: "pie", AllowDelivery: true, AllowedDeliveryDays: []time.Weekday{time.Thursday}},
		},
		Items: []domain.CartItem{{ProductID: "bread", Quantity: 2}, {ProductID: "pie", Quantity: 1}},
	}

	plan := p.CartDeliveryDate(in, wednesday)
	if plan.Option == nil {
		t.Fatalf("expected cart option")
	}
	if plan.Option.DeliveryDate != date(t, "2026-10-22") || plan.Option.ScheduleID != "thu" {
		t.Fatalf("expected cart to ship with the latest item on 2026-10-22, got %+v", plan.Option)
	}
	if len(plan.Items) != 2 || plan.Items[0].Option.DeliveryDate != date(t, "2026-10-17") {
		t.Fatalf("expected bread alone to be available 2026-10-17, got %+v", plan.Items)
	}
	if len(plan.Unavailable) != 0 {
		t.Fatalf("unexpected unavailable items %v", plan.Unavailable)
	}
}

func TestCartDeliveryDate_PartialAvailability(t *testing.T) {
	p := testPlanner(t)
	in := CartDeliveryInput{
		Schedules: []domain.DeliverySchedule{thursdaySchedule(2)},
		Rules: map[string]*domain.ProductDeliveryRule{
			"wedding-cake": {ProductID: "wedding-cake", AllowPickup: true},
		},
		Items: []domain.CartItem{{ProductID: "bread", Quantity: 1}, {ProductID: "wedding-cake", Quantity: 1}},
	}
	plan := p.CartDeliveryDate(in, at(t, 2026, time.October, 12, 10, 0))
	if plan.Option != nil {
		t.Fatalf("cart with an undeliverable item must have no option, got %+v", plan.Option)
	}
	if diff := cmp.Diff([]string{"wedding-cake"}, plan.Unavailable); diff != "" {
		t.Fatalf("unexpected unavailable list (-want +got):\n%s", diff)
	}
	if plan.Items[0].Option == nil || plan.Items[0].Option.DeliveryDate != date(t, "2026-10-15") {
		t.Fatalf("bread should still report its own date, got %+v", plan.Items[0])
	}
}

func TestCartDeliveryDate_EmptyCart(t *testing.T) {
	p := testPlanner(t)
	plan := p.CartDeliveryDate(CartDeliveryInput{Schedules: []domain.DeliverySchedule{thursdaySchedule(2)}}, time.Now())
	if plan.Option != nil || len(plan.Items) != 0 {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}

func TestScheduleOption_CutoffOnDeliveryDay(t *testing.T) {
	p := testPlanner(t)
	sched := domain.DeliverySchedule{
		ID:         "same-day",
		DayOfWeek:  time.Friday,
		CutoffDay:  time.Friday,
		CutoffTime: businesstime.MustTimeOfDay("06:00"),
		Active:     true,
	}
	got, _ := p.NextDeliveryDate(DeliveryInput{Schedules: []domain.DeliverySchedule{sched}}, at(t, 2026, time.October, 16, 5, 0))
	if got.DeliveryDate != date(t, "2026-10-16") || !got.CutoffAt.Equal(at(t, 2026, time.October, 16, 6, 0)) {
		t.Fatalf("unexpected same-day option %+v", got)
	}
}
