package planner

import (
	"errors"
	"fmt"
	"time"

	"bakery-fulfillment/internal/domain"
)

// ValidateSchedule checks a delivery schedule before it is written. The
// planner itself trusts its inputs; administrative writers call this first.
func ValidateSchedule(s domain.DeliverySchedule) error {
	var errs []error
	if !validWeekday(s.DayOfWeek) {
		errs = append(errs, fmt.Errorf("dayOfWeek %d out of range", s.DayOfWeek))
	}
	if !validWeekday(s.CutoffDay) {
		errs = append(errs, fmt.Errorf("cutoffDay %d out of range", s.CutoffDay))
	}
	if s.LeadTimeDays < 0 {
		errs = append(errs, fmt.Errorf("leadTimeDays %d is negative", s.LeadTimeDays))
	}
	// Cutoff evaluation compares weekdays within one Sunday-first week, so a
	// cutoff later in the week than delivery never gates the intended cycle.
	if validWeekday(s.DayOfWeek) && validWeekday(s.CutoffDay) && s.CutoffDay > s.DayOfWeek {
		errs = append(errs, fmt.Errorf("cutoffDay %s falls after delivery day %s", s.CutoffDay, s.DayOfWeek))
	}
	return wrapInvalid("delivery schedule "+s.Name, errs)
}

// ValidatePickupLocation checks a pickup location before it is written.
func ValidatePickupLocation(l domain.PickupLocation) error {
	var errs []error
	if len(l.PickupDays) == 0 {
		errs = append(errs, errors.New("pickupDays is empty"))
	}
	seen := make(map[time.Weekday]bool, len(l.PickupDays))
	for _, d := range l.PickupDays {
		if !validWeekday(d) {
			errs = append(errs, fmt.Errorf("pickup day %d out of range", d))
		}
		if seen[d] {
			errs = append(errs, fmt.Errorf("pickup day %s listed twice", d))
		}
		seen[d] = true
	}
	if l.LeadTimeDays < 0 {
		errs = append(errs, fmt.Errorf("leadTimeDays %d is negative", l.LeadTimeDays))
	}
	if l.RequiresPreorder {
		if l.CutoffDay == nil || l.CutoffTime == nil {
			errs = append(errs, errors.New("preorder location needs cutoffDay and cutoffTime"))
		} else if !validWeekday(*l.CutoffDay) {
			errs = append(errs, fmt.Errorf("cutoffDay %d out of range", *l.CutoffDay))
		}
	}
	return wrapInvalid("pickup location "+l.Name, errs)
}

func validWeekday(d time.Weekday) bool {
	return d >= time.Sunday && d <= time.Saturday
}

func wrapInvalid(subject string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, subject, errors.Join(errs...))
}
