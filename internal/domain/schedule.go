package domain

import (
	"time"

	"bakery-fulfillment/internal/businesstime"
)

// FulfillmentType distinguishes delivery from pickup. Closures affect each independently.
type FulfillmentType string

const (
	FulfillmentDelivery FulfillmentType = "delivery"
	FulfillmentPickup   FulfillmentType = "pickup"
)

// ParseFulfillmentType accepts "delivery" or "pickup".
func ParseFulfillmentType(s string) (FulfillmentType, bool) {
	switch FulfillmentType(s) {
	case FulfillmentDelivery, FulfillmentPickup:
		return FulfillmentType(s), true
	}
	return "", false
}

// DeliverySchedule is a recurring weekly delivery offering.
type DeliverySchedule struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	DayOfWeek    time.Weekday           `json:"dayOfWeek"`
	CutoffDay    time.Weekday           `json:"cutoffDay"`
	CutoffTime   businesstime.TimeOfDay `json:"cutoffTime"`
	LeadTimeDays int                    `json:"leadTimeDays"`
	TimeWindow   string                 `json:"timeWindow"`
	Active       bool                   `json:"active"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// PickupLocation is a physical pickup site open on one or more weekdays.
// CutoffDay and CutoffTime only matter when RequiresPreorder is set.
type PickupLocation struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Address          string                  `json:"address,omitempty"`
	PickupDays       []time.Weekday          `json:"pickupDays"`
	TimeWindow       string                  `json:"timeWindow"`
	RequiresPreorder bool                    `json:"requiresPreorder"`
	CutoffDay        *time.Weekday           `json:"cutoffDay,omitempty"`
	CutoffTime       *businesstime.TimeOfDay `json:"cutoffTime,omitempty"`
	LeadTimeDays     int                     `json:"leadTimeDays"`
	Active           bool                    `json:"active"`
	CreatedAt        time.Time               `json:"createdAt"`
}

// CalendarClosure flags one business-local date as closed.
type CalendarClosure struct {
	ID                string            `json:"id"`
	Date              businesstime.Date `json:"date"`
	Reason            string            `json:"reason,omitempty"`
	ClosedForDelivery bool              `json:"closedForDelivery"`
	ClosedForPickup   bool              `json:"closedForPickup"`
}

// Affects reports whether the closure applies to the given fulfillment type.
func (c CalendarClosure) Affects(t FulfillmentType) bool {
	switch t {
	case FulfillmentDelivery:
		return c.ClosedForDelivery
	case FulfillmentPickup:
		return c.ClosedForPickup
	}
	return false
}

// ProductDeliveryRule overrides scheduling for one product.
// An empty AllowedDeliveryDays places no weekday restriction.
type ProductDeliveryRule struct {
	ProductID           string         `json:"productId"`
	AllowedDeliveryDays []time.Weekday `json:"allowedDeliveryDays,omitempty"`
	MinimumLeadTimeDays *int           `json:"minimumLeadTimeDays,omitempty"`
	AllowPickup         bool           `json:"allowPickup"`
	AllowDelivery       bool           `json:"allowDelivery"`
}

// AllowsDeliveryDay reports whether the rule admits a schedule on day.
func (r *ProductDeliveryRule) AllowsDeliveryDay(day time.Weekday) bool {
	if r == nil || len(r.AllowedDeliveryDays) == 0 {
		return true
	}
	for _, d := range r.AllowedDeliveryDays {
		if d == day {
			return true
		}
	}
	return false
}

// LeadTimeDays returns the rule's minimum lead time, or def when unset.
func (r *ProductDeliveryRule) LeadTimeDays(def int) int {
	if r == nil || r.MinimumLeadTimeDays == nil {
		return def
	}
	return *r.MinimumLeadTimeDays
}

// CartItem is a line item as handed over by the checkout flow.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
