package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.ObservePlan(MethodDelivery, OutcomeAvailable)
	c.ObservePlan(MethodDelivery, OutcomeAvailable)
	c.ObservePlan(MethodPickup, OutcomeUnavailable)
	c.ObserveZone(true)
	c.ObserveZone(false)
	c.ObserveZone(false)
	c.ObserveRequest("/v1/zones/:zip", "200", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.plans.WithLabelValues(MethodDelivery, OutcomeAvailable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.plans.WithLabelValues(MethodPickup, OutcomeUnavailable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.zones.WithLabelValues(ZoneMatched)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.zones.WithLabelValues(ZoneUnmatched)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.requests))
}

func TestCollector_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.ObservePlan(MethodDelivery, OutcomeError)
	c.ObserveZone(true)
	c.ObserveRequest("/healthz", "200", time.Millisecond)
}
