// Package metrics exposes planner outcome counters and HTTP latency to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MethodDelivery        = "delivery"
	MethodDeliveryCart    = "delivery_cart"
	MethodPickup          = "pickup"
	MethodPickupLocations = "pickup_locations"

	OutcomeAvailable   = "available"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"

	ZoneMatched   = "matched"
	ZoneUnmatched = "unmatched"
)

// Collector is safe to use as a nil pointer; every method is then a no-op.
type Collector struct {
	plans    *prometheus.CounterVec
	zones    *prometheus.CounterVec
	requests *prometheus.HistogramVec
}

// New registers the fulfillment collectors on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fulfillment_plans_total",
			Help: "Fulfillment date computations by method and outcome.",
		}, []string{"method", "outcome"}),
		zones: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fulfillment_zone_lookups_total",
			Help: "Delivery zone lookups by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fulfillment_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	for _, col := range []prometheus.Collector{c.plans, c.zones, c.requests} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) ObservePlan(method, outcome string) {
	if c == nil {
		return
	}
	c.plans.WithLabelValues(method, outcome).Inc()
}

func (c *Collector) ObserveZone(matched bool) {
	if c == nil {
		return
	}
	outcome := ZoneUnmatched
	if matched {
		outcome = ZoneMatched
	}
	c.zones.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveRequest(route, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(route, status).Observe(d.Seconds())
}
