package domain

import "time"

// DeliveryZone is a named, prioritized set of ZIP codes with a flat fee in cents.
type DeliveryZone struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ZIPCodes       []string  `json:"zipCodes"`
	FeeAmountCents int64     `json:"feeAmountCents"`
	Priority       int       `json:"priority"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Contains reports whether zip is one of the zone's ZIP codes.
func (z DeliveryZone) Contains(zip string) bool {
	for _, c := range z.ZIPCodes {
		if c == zip {
			return true
		}
	}
	return false
}

// FeeRule overrides the zone fee when Expression evaluates to true.
// Expression is CEL over zip, zone, zone_fee_cents and subtotal_cents.
type FeeRule struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Expression string    `json:"expression"`
	FeeCents   int64     `json:"feeCents"`
	Priority   int       `json:"priority"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}
