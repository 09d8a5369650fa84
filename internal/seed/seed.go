package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/planner"
	"bakery-fulfillment/internal/pricing"
	"bakery-fulfillment/internal/registry"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed bakery.yaml
var bakeryYAML []byte

type fixture struct {
	Schedules       []scheduleSeed `yaml:"schedules"`
	PickupLocations []pickupSeed   `yaml:"pickup_locations"`
	Closures        []closureSeed  `yaml:"closures"`
	ProductRules    []ruleSeed     `yaml:"product_rules"`
	Zones           []zoneSeed     `yaml:"zones"`
	FeeRules        []feeRuleSeed  `yaml:"fee_rules"`
}

type scheduleSeed struct {
	Name         string `yaml:"name"`
	Day          string `yaml:"day"`
	CutoffDay    string `yaml:"cutoff_day"`
	CutoffTime   string `yaml:"cutoff_time"`
	LeadTimeDays int    `yaml:"lead_time_days"`
	TimeWindow   string `yaml:"time_window"`
	Active       *bool  `yaml:"active"`
}

type pickupSeed struct {
	Name             string   `yaml:"name"`
	Address          string   `yaml:"address"`
	Days             []string `yaml:"days"`
	TimeWindow       string   `yaml:"time_window"`
	RequiresPreorder bool     `yaml:"requires_preorder"`
	CutoffDay        string   `yaml:"cutoff_day"`
	CutoffTime       string   `yaml:"cutoff_time"`
	LeadTimeDays     int      `yaml:"lead_time_days"`
	Active           *bool    `yaml:"active"`
}

type closureSeed struct {
	Date     string `yaml:"date"`
	Reason   string `yaml:"reason"`
	Delivery *bool  `yaml:"delivery"`
	Pickup   *bool  `yaml:"pickup"`
}

type ruleSeed struct {
	ProductID           string   `yaml:"product_id"`
	AllowedDeliveryDays []string `yaml:"allowed_delivery_days"`
	MinimumLeadTimeDays *int     `yaml:"minimum_lead_time_days"`
	AllowPickup         *bool    `yaml:"allow_pickup"`
	AllowDelivery       *bool    `yaml:"allow_delivery"`
}

type zoneSeed struct {
	Name     string   `yaml:"name"`
	ZIPCodes []string `yaml:"zip_codes"`
	FeeCents int64    `yaml:"fee_cents"`
	Priority int      `yaml:"priority"`
	Active   *bool    `yaml:"active"`
}

type feeRuleSeed struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	FeeCents   int64  `yaml:"fee_cents"`
	Priority   int    `yaml:"priority"`
	Active     *bool  `yaml:"active"`
}

// Data is a validated bakery configuration ready to be written.
type Data struct {
	Schedules       []domain.DeliverySchedule
	PickupLocations []domain.PickupLocation
	Closures        []domain.CalendarClosure
	ProductRules    []domain.ProductDeliveryRule
	Zones           []domain.DeliveryZone
	FeeRules        []domain.FeeRule
}

// Default returns the embedded demo bakery.
func Default() (Data, error) {
	return Load(bytes.NewReader(bakeryYAML))
}

// Load parses and validates a YAML bakery configuration. Every entity is
// checked before anything is returned, so a bad file writes nothing.
func Load(r io.Reader) (Data, error) {
	var f fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Data{}, fmt.Errorf("%w: decode seed: %v", domain.ErrInvalidInput, err)
	}

	var data Data
	for _, s := range f.Schedules {
		sched, err := s.toDomain()
		if err != nil {
			return Data{}, fmt.Errorf("%w: schedule %q: %v", domain.ErrInvalidInput, s.Name, err)
		}
		if err := planner.ValidateSchedule(sched); err != nil {
			return Data{}, err
		}
		data.Schedules = append(data.Schedules, sched)
	}
	for _, p := range f.PickupLocations {
		loc, err := p.toDomain()
		if err != nil {
			return Data{}, fmt.Errorf("%w: pickup location %q: %v", domain.ErrInvalidInput, p.Name, err)
		}
		if err := planner.ValidatePickupLocation(loc); err != nil {
			return Data{}, err
		}
		data.PickupLocations = append(data.PickupLocations, loc)
	}
	for _, c := range f.Closures {
		d, err := businesstime.ParseDate(c.Date)
		if err != nil {
			return Data{}, fmt.Errorf("%w: closure: %v", domain.ErrInvalidInput, err)
		}
		data.Closures = append(data.Closures, domain.CalendarClosure{
			Date:              d,
			Reason:            c.Reason,
			ClosedForDelivery: boolOr(c.Delivery, true),
			ClosedForPickup:   boolOr(c.Pickup, true),
		})
	}
	for _, pr := range f.ProductRules {
		if pr.ProductID == "" {
			return Data{}, fmt.Errorf("%w: product rule without product_id", domain.ErrInvalidInput)
		}
		days, err := businesstime.ParseWeekdays(pr.AllowedDeliveryDays)
		if err != nil {
			return Data{}, fmt.Errorf("%w: product rule %q: %v", domain.ErrInvalidInput, pr.ProductID, err)
		}
		if pr.MinimumLeadTimeDays != nil && *pr.MinimumLeadTimeDays < 0 {
			return Data{}, fmt.Errorf("%w: product rule %q: minimum_lead_time_days is negative", domain.ErrInvalidInput, pr.ProductID)
		}
		data.ProductRules = append(data.ProductRules, domain.ProductDeliveryRule{
			ProductID:           pr.ProductID,
			AllowedDeliveryDays: days,
			MinimumLeadTimeDays: pr.MinimumLeadTimeDays,
			AllowPickup:         boolOr(pr.AllowPickup, true),
			AllowDelivery:       boolOr(pr.AllowDelivery, true),
		})
	}
	for _, z := range f.Zones {
		zone := domain.DeliveryZone{
			ID:             domain.StableID("zone", z.Name),
			Name:           z.Name,
			ZIPCodes:       z.ZIPCodes,
			FeeAmountCents: z.FeeCents,
			Priority:       z.Priority,
			Active:         boolOr(z.Active, true),
		}
		if err := pricing.ValidateZone(zone); err != nil {
			return Data{}, err
		}
		data.Zones = append(data.Zones, zone)
	}
	for _, fr := range f.FeeRules {
		data.FeeRules = append(data.FeeRules, domain.FeeRule{
			ID:         domain.StableID("fee-rule", fr.Name),
			Name:       fr.Name,
			Expression: fr.Expression,
			FeeCents:   fr.FeeCents,
			Priority:   fr.Priority,
			Active:     boolOr(fr.Active, true),
		})
	}
	if _, err := pricing.NewFeeCalculator(data.Zones, data.FeeRules); err != nil {
		return Data{}, err
	}
	return data, nil
}

// Apply upserts data through the registry repositories. It is idempotent:
// entities are keyed by name, closure date or product ID.
func Apply(ctx context.Context, reg *registry.Registry, data Data, logger zerolog.Logger) error {
	for _, s := range data.Schedules {
		if _, err := reg.Schedules.Upsert(ctx, s); err != nil {
			return fmt.Errorf("upsert schedule %s: %w", s.Name, err)
		}
	}
	for _, l := range data.PickupLocations {
		if _, err := reg.Pickups.Upsert(ctx, l); err != nil {
			return fmt.Errorf("upsert pickup location %s: %w", l.Name, err)
		}
	}
	for _, c := range data.Closures {
		if _, err := reg.Closures.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert closure %s: %w", c.Date, err)
		}
	}
	for _, r := range data.ProductRules {
		if _, err := reg.Rules.Upsert(ctx, r); err != nil {
			return fmt.Errorf("upsert product rule %s: %w", r.ProductID, err)
		}
	}
	for _, z := range data.Zones {
		if _, err := reg.Zones.Upsert(ctx, z); err != nil {
			return fmt.Errorf("upsert zone %s: %w", z.Name, err)
		}
	}
	for _, fr := range data.FeeRules {
		if _, err := reg.FeeRules.Upsert(ctx, fr); err != nil {
			return fmt.Errorf("upsert fee rule %s: %w", fr.Name, err)
		}
	}
	logger.Info().
		Int("schedules", len(data.Schedules)).
		Int("pickup_locations", len(data.PickupLocations)).
		Int("closures", len(data.Closures)).
		Int("product_rules", len(data.ProductRules)).
		Int("zones", len(data.Zones)).
		Int("fee_rules", len(data.FeeRules)).
		Msg("seed applied")
	return nil
}

func (s scheduleSeed) toDomain() (domain.DeliverySchedule, error) {
	day, err := businesstime.ParseWeekday(s.Day)
	if err != nil {
		return domain.DeliverySchedule{}, err
	}
	cutoffDay, err := businesstime.ParseWeekday(s.CutoffDay)
	if err != nil {
		return domain.DeliverySchedule{}, err
	}
	cutoffTime, err := businesstime.ParseTimeOfDay(s.CutoffTime)
	if err != nil {
		return domain.DeliverySchedule{}, err
	}
	return domain.DeliverySchedule{
		ID:           domain.StableID("schedule", s.Name),
		Name:         s.Name,
		DayOfWeek:    day,
		CutoffDay:    cutoffDay,
		CutoffTime:   cutoffTime,
		LeadTimeDays: s.LeadTimeDays,
		TimeWindow:   s.TimeWindow,
		Active:       boolOr(s.Active, true),
	}, nil
}

func (p pickupSeed) toDomain() (domain.PickupLocation, error) {
	days, err := businesstime.ParseWeekdays(p.Days)
	if err != nil {
		return domain.PickupLocation{}, err
	}
	loc := domain.PickupLocation{
		ID:               domain.StableID("pickup", p.Name),
		Name:             p.Name,
		Address:          p.Address,
		PickupDays:       days,
		TimeWindow:       p.TimeWindow,
		RequiresPreorder: p.RequiresPreorder,
		LeadTimeDays:     p.LeadTimeDays,
		Active:           boolOr(p.Active, true),
	}
	if p.CutoffDay != "" {
		d, err := businesstime.ParseWeekday(p.CutoffDay)
		if err != nil {
			return domain.PickupLocation{}, err
		}
		loc.CutoffDay = &d
	}
	if p.CutoffTime != "" {
		tod, err := businesstime.ParseTimeOfDay(p.CutoffTime)
		if err != nil {
			return domain.PickupLocation{}, err
		}
		loc.CutoffTime = &tod
	}
	return loc, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
