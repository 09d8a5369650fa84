package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/planner"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type fulfillmentHandlers struct {
	svc    FulfillmentService
	logger zerolog.Logger
}

type cartRequest struct {
	Items []domain.CartItem `json:"items"`
	At    *time.Time        `json:"at,omitempty"`
}

type deliveryResponse struct {
	Available bool                    `json:"available"`
	Option    *planner.DeliveryOption `json:"option,omitempty"`
}

type cartDeliveryResponse struct {
	Available bool `json:"available"`
	planner.CartDeliveryPlan
}

type pickupResponse struct {
	Available bool                  `json:"available"`
	Option    *planner.PickupOption `json:"option,omitempty"`
}

type pickupLocationsResponse struct {
	Available bool                   `json:"available"`
	Locations []planner.PickupOption `json:"locations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *fulfillmentHandlers) nextDelivery(c *gin.Context) {
	at, err := parseAt(c.Query("at"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	opt, err := h.svc.NextDeliveryDate(c.Request.Context(), strings.TrimSpace(c.Query("productId")), at)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deliveryResponse{Available: opt != nil, Option: opt})
}

func (h *fulfillmentHandlers) cartDelivery(c *gin.Context) {
	req, ok := h.bindCart(c)
	if !ok {
		return
	}
	plan, err := h.svc.GetCartDeliveryDate(c.Request.Context(), req.Items, req.instant())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartDeliveryResponse{Available: plan.Option != nil, CartDeliveryPlan: plan})
}

func (h *fulfillmentHandlers) nextPickup(c *gin.Context) {
	at, err := parseAt(c.Query("at"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	opt, err := h.svc.NextPickupDate(c.Request.Context(), c.Param("locationId"), strings.TrimSpace(c.Query("productId")), at)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pickupResponse{Available: opt != nil, Option: opt})
}

func (h *fulfillmentHandlers) cartPickup(c *gin.Context) {
	req, ok := h.bindCart(c)
	if !ok {
		return
	}
	options, err := h.svc.GetAvailablePickupLocations(c.Request.Context(), req.Items, req.instant())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if options == nil {
		options = []planner.PickupOption{}
	}
	c.JSON(http.StatusOK, pickupLocationsResponse{Available: len(options) > 0, Locations: options})
}

func (h *fulfillmentHandlers) zone(c *gin.Context) {
	z, err := h.svc.ResolveZone(c.Request.Context(), c.Param("zip"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if z == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no delivery zone serves %s", c.Param("zip"))})
		return
	}
	c.JSON(http.StatusOK, z)
}

func (h *fulfillmentHandlers) deliveryFee(c *gin.Context) {
	zip := strings.TrimSpace(c.Query("zip"))
	if zip == "" {
		h.writeError(c, fmt.Errorf("%w: zip required", domain.ErrInvalidInput))
		return
	}
	var subtotal int64
	if raw := c.Query("subtotalCents"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(c, fmt.Errorf("%w: subtotalCents %q is not an integer", domain.ErrInvalidInput, raw))
			return
		}
		subtotal = v
	}
	quote, err := h.svc.CalculateDeliveryFee(c.Request.Context(), zip, subtotal)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *fulfillmentHandlers) bindCart(c *gin.Context) (cartRequest, bool) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return req, false
	}
	return req, true
}

func (r cartRequest) instant() time.Time {
	if r.At == nil {
		return time.Time{}
	}
	return *r.At
}

// parseAt reads an RFC 3339 order instant. Empty means now.
func parseAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: at %q is not RFC 3339", domain.ErrInvalidInput, raw)
	}
	return t, nil
}

func (h *fulfillmentHandlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		h.logger.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
