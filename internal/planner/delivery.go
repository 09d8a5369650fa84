package planner

import (
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
)

// DeliveryOption is the earliest delivery a schedule can offer.
type DeliveryOption struct {
	ScheduleID   string            `json:"scheduleId"`
	DeliveryDate businesstime.Date `json:"deliveryDate"`
	CutoffAt     time.Time         `json:"cutoffAt"`
	TimeWindow   string            `json:"timeWindow"`
}

// DeliveryInput is the registry snapshot a single-product plan needs.
// Rule may be nil when the product has no override.
type DeliveryInput struct {
	Schedules []domain.DeliverySchedule
	Closures  ClosureSet
	Rule      *domain.ProductDeliveryRule
}

// NextDeliveryDate returns the earliest option across every eligible active
// schedule, or false when none applies.
func (p *Planner) NextDeliveryDate(in DeliveryInput, orderAt time.Time) (DeliveryOption, bool) {
	if in.Rule != nil && !in.Rule.AllowDelivery {
		return DeliveryOption{}, false
	}
	now := p.clock.ToBusinessTime(orderAt)

	var (
		best  DeliveryOption
		found bool
	)
	for _, s := range in.Schedules {
		if !s.Active || !in.Rule.AllowsDeliveryDay(s.DayOfWeek) {
			continue
		}
		opt := p.scheduleOption(s, now, in.Rule.LeadTimeDays(s.LeadTimeDays), in.Closures)
		if !found || opt.DeliveryDate.Before(best.DeliveryDate) {
			best = opt
			found = true
		}
	}
	return best, found
}

func (p *Planner) scheduleOption(s domain.DeliverySchedule, now businesstime.WallClock, leadDays int, closures ClosureSet) DeliveryOption {
	before := IsBeforeCutoff(now, s.CutoffDay, s.CutoffTime)
	candidate := p.firstCandidate(s.DayOfWeek, now, before)
	candidate = applyLeadTime(candidate, now.Date().AddDays(leadDays))
	candidate = SkipClosures(candidate, closures)

	cutoffDate := candidate.AddDays(-daysBack(s.DayOfWeek, s.CutoffDay))
	return DeliveryOption{
		ScheduleID:   s.ID,
		DeliveryDate: candidate,
		CutoffAt:     p.clock.At(cutoffDate, s.CutoffTime),
		TimeWindow:   s.TimeWindow,
	}
}

// CartDeliveryInput carries schedules, closures and the rules of every
// product in the cart, keyed by product ID. Missing keys mean no rule.
type CartDeliveryInput struct {
	Schedules []domain.DeliverySchedule
	Closures  ClosureSet
	Rules     map[string]*domain.ProductDeliveryRule
	Items     []domain.CartItem
}

// ItemDelivery is one line item's own earliest delivery.
type ItemDelivery struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Option    *DeliveryOption `json:"option,omitempty"`
}

// CartDeliveryPlan is the shared delivery date for an order. Option is nil
// when the cart is empty or any item cannot be delivered; Items still report
// the per-item dates so callers can explain partial availability.
type CartDeliveryPlan struct {
	Option      *DeliveryOption `json:"option,omitempty"`
	Items       []ItemDelivery  `json:"items"`
	Unavailable []string        `json:"unavailable,omitempty"`
}

// CartDeliveryDate ships the whole cart together on the most restrictive
// (latest) of the per-item earliest dates.
func (p *Planner) CartDeliveryDate(in CartDeliveryInput, orderAt time.Time) CartDeliveryPlan {
	plan := CartDeliveryPlan{Items: make([]ItemDelivery, 0, len(in.Items))}
	var latest *DeliveryOption
	for _, item := range in.Items {
		entry := ItemDelivery{ProductID: item.ProductID, Quantity: item.Quantity}
		opt, ok := p.NextDeliveryDate(DeliveryInput{
			Schedules: in.Schedules,
			Closures:  in.Closures,
			Rule:      in.Rules[item.ProductID],
		}, orderAt)
		if ok {
			entry.Option = &opt
			if latest == nil || opt.DeliveryDate.After(latest.DeliveryDate) {
				latest = &opt
			}
		} else {
			plan.Unavailable = append(plan.Unavailable, item.ProductID)
		}
		plan.Items = append(plan.Items, entry)
	}
	if len(plan.Unavailable) == 0 && latest != nil {
		cartOpt := *latest
		plan.Option = &cartOpt
	}
	return plan
}
