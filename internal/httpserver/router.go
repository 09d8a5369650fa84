package httpserver

import (
	"context"
	"errors"
	"strconv"
	"time"

	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/metrics"
	"bakery-fulfillment/internal/planner"
	"bakery-fulfillment/internal/pricing"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// FulfillmentService is the planner surface exposed over HTTP.
type FulfillmentService interface {
	NextDeliveryDate(ctx context.Context, productID string, at time.Time) (*planner.DeliveryOption, error)
	GetCartDeliveryDate(ctx context.Context, items []domain.CartItem, at time.Time) (planner.CartDeliveryPlan, error)
	NextPickupDate(ctx context.Context, locationID, productID string, at time.Time) (*planner.PickupOption, error)
	GetAvailablePickupLocations(ctx context.Context, items []domain.CartItem, at time.Time) ([]planner.PickupOption, error)
	ResolveZone(ctx context.Context, zip string) (*domain.DeliveryZone, error)
	CalculateDeliveryFee(ctx context.Context, zip string, subtotalCents int64) (pricing.FeeQuote, error)
}

type Deps struct {
	Fulfillment    FulfillmentService
	Metrics        *metrics.Collector
	Gatherer       prometheus.Gatherer // nil serves the default registry
	AllowedOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db Pinger, deps Deps) (*gin.Engine, error) {
	if deps.Fulfillment == nil {
		return nil, errors.New("httpserver: fulfillment service required")
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))
	router.Use(observeRequests(deps.Metrics))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	h := &fulfillmentHandlers{svc: deps.Fulfillment, logger: logger}
	v1 := router.Group("/v1")
	v1.GET("/delivery/next", h.nextDelivery)
	v1.POST("/delivery/cart", h.cartDelivery)
	v1.GET("/pickup/locations/:locationId/next", h.nextPickup)
	v1.POST("/pickup/cart", h.cartPickup)
	v1.GET("/zones/:zip", h.zone)
	v1.GET("/fees/delivery", h.deliveryFee)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func observeRequests(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
