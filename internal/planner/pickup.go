package planner

import (
	"sort"
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
)

// PickupOption is the earliest pickup a location can offer. CutoffAt is set
// only for locations that require a preorder.
type PickupOption struct {
	LocationID   string            `json:"locationId"`
	LocationName string            `json:"locationName"`
	PickupDate   businesstime.Date `json:"pickupDate"`
	CutoffAt     *time.Time        `json:"cutoffAt,omitempty"`
	TimeWindow   string            `json:"timeWindow"`
}

// PickupInput is the snapshot a single-location plan needs.
type PickupInput struct {
	Location domain.PickupLocation
	Closures ClosureSet
	Rule     *domain.ProductDeliveryRule
}

// NextPickupDate returns the earliest date across the location's pickup
// weekdays. Without a preorder requirement no cutoff gating applies. With
// one, the cutoff is evaluated once and applied to every weekday.
func (p *Planner) NextPickupDate(in PickupInput, orderAt time.Time) (PickupOption, bool) {
	loc := in.Location
	if !loc.Active || len(loc.PickupDays) == 0 {
		return PickupOption{}, false
	}
	if in.Rule != nil && !in.Rule.AllowPickup {
		return PickupOption{}, false
	}

	now := p.clock.ToBusinessTime(orderAt)
	today := now.Date()
	gated := loc.RequiresPreorder && loc.CutoffDay != nil && loc.CutoffTime != nil
	before := true
	if gated {
		before = IsBeforeCutoff(now, *loc.CutoffDay, *loc.CutoffTime)
	}
	minimum := today.AddDays(in.Rule.LeadTimeDays(loc.LeadTimeDays))

	var (
		best    businesstime.Date
		bestDay time.Weekday
		found   bool
	)
	for _, day := range loc.PickupDays {
		candidate := NextOccurrence(day, today)
		// The rollover policy applies to delivery only. A missed preorder
		// cutoff always moves every pickup weekday to the following cycle.
		if !before {
			candidate = WeekAfterNext(day, today)
		}
		candidate = applyLeadTime(candidate, minimum)
		candidate = SkipClosures(candidate, in.Closures)
		if !found || candidate.Before(best) {
			best, bestDay, found = candidate, day, true
		}
	}

	opt := PickupOption{
		LocationID:   loc.ID,
		LocationName: loc.Name,
		PickupDate:   best,
		TimeWindow:   loc.TimeWindow,
	}
	if gated {
		cutoffAt := p.clock.At(best.AddDays(-daysBack(bestDay, *loc.CutoffDay)), *loc.CutoffTime)
		opt.CutoffAt = &cutoffAt
	}
	return opt, true
}

// PickupLocationsInput is the snapshot for listing every pickup option of a cart.
type PickupLocationsInput struct {
	Locations []domain.PickupLocation
	Closures  ClosureSet
	Rules     map[string]*domain.ProductDeliveryRule
	Items     []domain.CartItem
}

// AvailablePickupLocations plans every active location independently. A
// location's date is the latest of its per-item earliest dates; locations
// some item cannot reach are left out. With no items the location's own
// earliest date is used. Results are ordered by date, then name.
func (p *Planner) AvailablePickupLocations(in PickupLocationsInput, orderAt time.Time) []PickupOption {
	options := make([]PickupOption, 0, len(in.Locations))
	for _, loc := range in.Locations {
		opt, ok := p.cartPickup(loc, in, orderAt)
		if ok {
			options = append(options, opt)
		}
	}
	sort.SliceStable(options, func(i, j int) bool {
		if c := options[i].PickupDate.Compare(options[j].PickupDate); c != 0 {
			return c < 0
		}
		return options[i].LocationName < options[j].LocationName
	})
	return options
}

func (p *Planner) cartPickup(loc domain.PickupLocation, in PickupLocationsInput, orderAt time.Time) (PickupOption, bool) {
	if len(in.Items) == 0 {
		return p.NextPickupDate(PickupInput{Location: loc, Closures: in.Closures}, orderAt)
	}
	var (
		latest PickupOption
		found  bool
	)
	for _, item := range in.Items {
		opt, ok := p.NextPickupDate(PickupInput{
			Location: loc,
			Closures: in.Closures,
			Rule:     in.Rules[item.ProductID],
		}, orderAt)
		if !ok {
			return PickupOption{}, false
		}
		if !found || opt.PickupDate.After(latest.PickupDate) {
			latest, found = opt, true
		}
	}
	return latest, found
}
