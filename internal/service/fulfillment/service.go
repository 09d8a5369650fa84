// Package fulfillment is the shell around the pure planners. It fetches a
// registry snapshot, hands it to the planner or pricing package and records
// the outcome.
package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/metrics"
	"bakery-fulfillment/internal/planner"
	"bakery-fulfillment/internal/pricing"
	"bakery-fulfillment/internal/registry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	src     registry.Source
	planner *planner.Planner
	clock   *businesstime.Authority
	metrics *metrics.Collector
	logger  zerolog.Logger
}

// New builds the service. m may be nil.
func New(src registry.Source, p *planner.Planner, m *metrics.Collector, logger zerolog.Logger) *Service {
	return &Service{
		src:     src,
		planner: p,
		clock:   p.Clock(),
		metrics: m,
		logger:  logger.With().Str("component", "fulfillment").Logger(),
	}
}

// Clock is the Time Authority every operation plans against.
func (s *Service) Clock() *businesstime.Authority {
	return s.clock
}

func (s *Service) orderInstant(at time.Time) time.Time {
	if at.IsZero() {
		return s.clock.Now()
	}
	return at
}

// NextDeliveryDate returns the earliest delivery for productID, or nil when
// delivery is unavailable. An empty productID plans without product rules.
func (s *Service) NextDeliveryDate(ctx context.Context, productID string, at time.Time) (*planner.DeliveryOption, error) {
	at = s.orderInstant(at)
	var ids []string
	if productID != "" {
		ids = []string{productID}
	}

	snap, err := s.deliverySnapshot(ctx, at, ids)
	if err != nil {
		s.metrics.ObservePlan(metrics.MethodDelivery, metrics.OutcomeError)
		return nil, errors.Wrap(err, "next delivery date")
	}

	opt, ok := s.planner.NextDeliveryDate(planner.DeliveryInput{
		Schedules: snap.schedules,
		Closures:  snap.closures,
		Rule:      snap.rules[productID],
	}, at)
	if !ok {
		s.metrics.ObservePlan(metrics.MethodDelivery, metrics.OutcomeUnavailable)
		s.logger.Debug().Str("product_id", productID).Time("at", at).Msg("delivery unavailable")
		return nil, nil
	}
	s.metrics.ObservePlan(metrics.MethodDelivery, metrics.OutcomeAvailable)
	return &opt, nil
}

// GetCartDeliveryDate plans a single delivery for every item of the cart.
func (s *Service) GetCartDeliveryDate(ctx context.Context, items []domain.CartItem, at time.Time) (planner.CartDeliveryPlan, error) {
	if err := validateItems(items); err != nil {
		return planner.CartDeliveryPlan{}, err
	}
	at = s.orderInstant(at)

	snap, err := s.deliverySnapshot(ctx, at, productIDs(items))
	if err != nil {
		s.metrics.ObservePlan(metrics.MethodDeliveryCart, metrics.OutcomeError)
		return planner.CartDeliveryPlan{}, errors.Wrap(err, "cart delivery date")
	}

	plan := s.planner.CartDeliveryDate(planner.CartDeliveryInput{
		Schedules: snap.schedules,
		Closures:  snap.closures,
		Rules:     snap.rules,
		Items:     items,
	}, at)
	if plan.Option == nil {
		s.metrics.ObservePlan(metrics.MethodDeliveryCart, metrics.OutcomeUnavailable)
		s.logger.Debug().Int("items", len(items)).Strs("unavailable", plan.Unavailable).Msg("cart delivery unavailable")
	} else {
		s.metrics.ObservePlan(metrics.MethodDeliveryCart, metrics.OutcomeAvailable)
	}
	return plan, nil
}

// NextPickupDate returns the earliest pickup at locationID, or nil when the
// location cannot serve the product. Unknown locations yield domain.ErrNotFound.
func (s *Service) NextPickupDate(ctx context.Context, locationID, productID string, at time.Time) (*planner.PickupOption, error) {
	if strings.TrimSpace(locationID) == "" {
		return nil, fmt.Errorf("%w: location id required", domain.ErrInvalidInput)
	}
	at = s.orderInstant(at)
	today := s.clock.DateOf(at)

	var (
		loc      *domain.PickupLocation
		closures []domain.CalendarClosure
		rules    map[string]*domain.ProductDeliveryRule
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loc, err = s.src.GetPickupLocation(gctx, locationID)
		return err
	})
	g.Go(func() error {
		var err error
		closures, err = s.src.ListClosures(gctx, today, domain.FulfillmentPickup)
		return err
	})
	if productID != "" {
		g.Go(func() error {
			var err error
			rules, err = s.src.GetProductDeliveryRules(gctx, []string{productID})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.metrics.ObservePlan(metrics.MethodPickup, metrics.OutcomeError)
		}
		return nil, errors.Wrapf(err, "next pickup date location=%s", locationID)
	}

	opt, ok := s.planner.NextPickupDate(planner.PickupInput{
		Location: *loc,
		Closures: planner.NewClosureSet(closures, domain.FulfillmentPickup),
		Rule:     rules[productID],
	}, at)
	if !ok {
		s.metrics.ObservePlan(metrics.MethodPickup, metrics.OutcomeUnavailable)
		s.logger.Debug().Str("location_id", locationID).Str("product_id", productID).Msg("pickup unavailable")
		return nil, nil
	}
	s.metrics.ObservePlan(metrics.MethodPickup, metrics.OutcomeAvailable)
	return &opt, nil
}

// GetAvailablePickupLocations lists every active location able to serve the
// whole cart, earliest first. An empty cart lists every reachable location.
func (s *Service) GetAvailablePickupLocations(ctx context.Context, items []domain.CartItem, at time.Time) ([]planner.PickupOption, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	at = s.orderInstant(at)
	today := s.clock.DateOf(at)

	var (
		locations []domain.PickupLocation
		closures  []domain.CalendarClosure
		rules     map[string]*domain.ProductDeliveryRule
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		locations, err = s.src.ListActivePickupLocations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		closures, err = s.src.ListClosures(gctx, today, domain.FulfillmentPickup)
		return err
	})
	g.Go(func() error {
		var err error
		rules, err = s.src.GetProductDeliveryRules(gctx, productIDs(items))
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.ObservePlan(metrics.MethodPickupLocations, metrics.OutcomeError)
		return nil, errors.Wrap(err, "available pickup locations")
	}

	options := s.planner.AvailablePickupLocations(planner.PickupLocationsInput{
		Locations: locations,
		Closures:  planner.NewClosureSet(closures, domain.FulfillmentPickup),
		Rules:     rules,
		Items:     items,
	}, at)
	if len(options) == 0 {
		s.metrics.ObservePlan(metrics.MethodPickupLocations, metrics.OutcomeUnavailable)
		s.logger.Debug().Int("items", len(items)).Int("locations", len(locations)).Msg("no pickup location available")
	} else {
		s.metrics.ObservePlan(metrics.MethodPickupLocations, metrics.OutcomeAvailable)
	}
	return options, nil
}

// ResolveZone returns the delivery zone serving zip, or nil when none does.
func (s *Service) ResolveZone(ctx context.Context, zip string) (*domain.DeliveryZone, error) {
	zones, err := s.src.ListActiveDeliveryZones(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "resolve zone")
	}
	z, ok := pricing.ResolveZone(zones, zip)
	s.metrics.ObserveZone(ok)
	if !ok {
		return nil, nil
	}
	return &z, nil
}

// CalculateDeliveryFee quotes the fee for zip and an order subtotal. A ZIP
// outside every zone quotes 0 with no zone; rejecting the order is up to the caller.
func (s *Service) CalculateDeliveryFee(ctx context.Context, zip string, subtotalCents int64) (pricing.FeeQuote, error) {
	if subtotalCents < 0 {
		return pricing.FeeQuote{}, fmt.Errorf("%w: subtotalCents %d is negative", domain.ErrInvalidInput, subtotalCents)
	}
	var (
		zones []domain.DeliveryZone
		rules []domain.FeeRule
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		zones, err = s.src.ListActiveDeliveryZones(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rules, err = s.src.ListActiveFeeRules(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return pricing.FeeQuote{}, errors.Wrap(err, "delivery fee")
	}

	calc, err := pricing.NewFeeCalculator(zones, rules)
	if err != nil {
		return pricing.FeeQuote{}, s.storedRuleError(err)
	}
	quote, err := calc.Calculate(pricing.FeeInput{ZIP: zip, SubtotalCents: subtotalCents})
	if err != nil {
		return pricing.FeeQuote{}, s.storedRuleError(err)
	}
	s.metrics.ObserveZone(quote.Zone != nil)
	return quote, nil
}

// storedRuleError detaches domain.ErrInvalidInput from failures caused by
// stored fee rules. Those are bad administrative data, not bad caller input.
func (s *Service) storedRuleError(err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		s.logger.Error().Err(err).Msg("stored fee rules are invalid")
		return errors.Errorf("delivery fee: stored fee rules: %v", err)
	}
	return errors.Wrap(err, "delivery fee")
}

type deliverySnapshot struct {
	schedules []domain.DeliverySchedule
	closures  planner.ClosureSet
	rules     map[string]*domain.ProductDeliveryRule
}

func (s *Service) deliverySnapshot(ctx context.Context, at time.Time, ids []string) (deliverySnapshot, error) {
	var (
		snap     deliverySnapshot
		closures []domain.CalendarClosure
	)
	today := s.clock.DateOf(at)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.schedules, err = s.src.ListActiveDeliverySchedules(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		closures, err = s.src.ListClosures(gctx, today, domain.FulfillmentDelivery)
		return err
	})
	if len(ids) > 0 {
		g.Go(func() error {
			var err error
			snap.rules, err = s.src.GetProductDeliveryRules(gctx, ids)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return deliverySnapshot{}, err
	}
	snap.closures = planner.NewClosureSet(closures, domain.FulfillmentDelivery)
	return snap, nil
}

func validateItems(items []domain.CartItem) error {
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return fmt.Errorf("%w: item %d: productId required", domain.ErrInvalidInput, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d: quantity must be positive", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

// productIDs returns the distinct product IDs of items in cart order.
func productIDs(items []domain.CartItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
