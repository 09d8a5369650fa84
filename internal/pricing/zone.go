// Package pricing resolves ZIP codes to delivery zones and computes the
// delivery fee, including administrator-defined override rules.
package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bakery-fulfillment/internal/domain"
)

// PickupFeeCents is the fee for every pickup order.
const PickupFeeCents int64 = 0

// NormalizeZIP trims whitespace and reduces ZIP+4 to its five-digit prefix.
func NormalizeZIP(zip string) string {
	zip = strings.TrimSpace(zip)
	if prefix, _, ok := strings.Cut(zip, "-"); ok && len(prefix) == 5 {
		return prefix
	}
	return zip
}

// ResolveZone returns the highest-priority active zone containing zip.
// Zones with equal priority keep their input order, so overlapping zones of
// the same priority resolve to whichever the store listed first.
func ResolveZone(zones []domain.DeliveryZone, zip string) (domain.DeliveryZone, bool) {
	zip = NormalizeZIP(zip)
	if zip == "" {
		return domain.DeliveryZone{}, false
	}
	active := make([]domain.DeliveryZone, 0, len(zones))
	for _, z := range zones {
		if z.Active {
			active = append(active, z)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority > active[j].Priority
	})
	for _, z := range active {
		if z.Contains(zip) {
			return z, true
		}
	}
	return domain.DeliveryZone{}, false
}

// ValidateZone checks a delivery zone before it is written.
func ValidateZone(z domain.DeliveryZone) error {
	var errs []error
	if strings.TrimSpace(z.Name) == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if z.FeeAmountCents < 0 {
		errs = append(errs, fmt.Errorf("feeAmountCents %d is negative", z.FeeAmountCents))
	}
	if len(z.ZIPCodes) == 0 {
		errs = append(errs, errors.New("zipCodes is empty"))
	}
	for _, zip := range z.ZIPCodes {
		if NormalizeZIP(zip) != zip {
			errs = append(errs, fmt.Errorf("zip %q is not normalized", zip))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: delivery zone %s: %w", domain.ErrInvalidInput, z.Name, errors.Join(errs...))
}
