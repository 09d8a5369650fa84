package registry

import (
	"context"
	"fmt"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
)

// Static serves a fixed configuration from memory. It backs offline
// planning from a seed file.
type Static struct {
	Schedules       []domain.DeliverySchedule
	PickupLocations []domain.PickupLocation
	Closures        []domain.CalendarClosure
	ProductRules    []domain.ProductDeliveryRule
	Zones           []domain.DeliveryZone
	FeeRules        []domain.FeeRule
}

var _ Source = (*Static)(nil)

func (s *Static) ListActiveDeliverySchedules(context.Context) ([]domain.DeliverySchedule, error) {
	var out []domain.DeliverySchedule
	for _, sched := range s.Schedules {
		if sched.Active {
			out = append(out, sched)
		}
	}
	return out, nil
}

func (s *Static) ListActivePickupLocations(context.Context) ([]domain.PickupLocation, error) {
	var out []domain.PickupLocation
	for _, l := range s.PickupLocations {
		if l.Active {
			out = append(out, l)
		}
	}
	return out, nil
}

// GetPickupLocation matches by ID or, for convenience on the command line, by name.
func (s *Static) GetPickupLocation(_ context.Context, id string) (*domain.PickupLocation, error) {
	for _, l := range s.PickupLocations {
		if l.ID == id || l.Name == id {
			loc := l
			return &loc, nil
		}
	}
	return nil, fmt.Errorf("pickup location %s: %w", id, domain.ErrNotFound)
}

func (s *Static) ListClosures(_ context.Context, from businesstime.Date, affects domain.FulfillmentType) ([]domain.CalendarClosure, error) {
	var out []domain.CalendarClosure
	for _, c := range s.Closures {
		if !c.Date.Before(from) && c.Affects(affects) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Static) GetProductDeliveryRules(_ context.Context, productIDs []string) (map[string]*domain.ProductDeliveryRule, error) {
	out := make(map[string]*domain.ProductDeliveryRule, len(productIDs))
	for _, id := range productIDs {
		for _, r := range s.ProductRules {
			if r.ProductID == id {
				rule := r
				out[id] = &rule
				break
			}
		}
	}
	return out, nil
}

func (s *Static) ListActiveDeliveryZones(context.Context) ([]domain.DeliveryZone, error) {
	var out []domain.DeliveryZone
	for _, z := range s.Zones {
		if z.Active {
			out = append(out, z)
		}
	}
	return out, nil
}

func (s *Static) ListActiveFeeRules(context.Context) ([]domain.FeeRule, error) {
	var out []domain.FeeRule
	for _, r := range s.FeeRules {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}
