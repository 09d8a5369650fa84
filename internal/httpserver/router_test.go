package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/metrics"
	"bakery-fulfillment/internal/planner"
	"bakery-fulfillment/internal/pricing"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type stubFulfillment struct {
	delivery  *planner.DeliveryOption
	plan      planner.CartDeliveryPlan
	pickup    *planner.PickupOption
	locations []planner.PickupOption
	zone      *domain.DeliveryZone
	quote     pricing.FeeQuote
	err       error

	gotAt       time.Time
	gotProduct  string
	gotLocation string
	gotItems    []domain.CartItem
	gotSubtotal int64
}

func (s *stubFulfillment) NextDeliveryDate(_ context.Context, productID string, at time.Time) (*planner.DeliveryOption, error) {
	s.gotProduct, s.gotAt = productID, at
	return s.delivery, s.err
}

func (s *stubFulfillment) GetCartDeliveryDate(_ context.Context, items []domain.CartItem, at time.Time) (planner.CartDeliveryPlan, error) {
	s.gotItems, s.gotAt = items, at
	return s.plan, s.err
}

func (s *stubFulfillment) NextPickupDate(_ context.Context, locationID, productID string, at time.Time) (*planner.PickupOption, error) {
	s.gotLocation, s.gotProduct, s.gotAt = locationID, productID, at
	return s.pickup, s.err
}

func (s *stubFulfillment) GetAvailablePickupLocations(_ context.Context, items []domain.CartItem, at time.Time) ([]planner.PickupOption, error) {
	s.gotItems, s.gotAt = items, at
	return s.locations, s.err
}

func (s *stubFulfillment) ResolveZone(_ context.Context, _ string) (*domain.DeliveryZone, error) {
	return s.zone, s.err
}

func (s *stubFulfillment) CalculateDeliveryFee(_ context.Context, _ string, subtotalCents int64) (pricing.FeeQuote, error) {
	s.gotSubtotal = subtotalCents
	return s.quote, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func testRouter(t *testing.T, svc *stubFulfillment, db Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	router, err := buildRouter(zerolog.Nop(), db, Deps{Fulfillment: svc, Metrics: m, Gatherer: reg})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBuildRouter_RequiresService(t *testing.T) {
	if _, err := buildRouter(zerolog.Nop(), nil, Deps{}); err == nil {
		t.Fatalf("expected error without fulfillment service")
	}
}

func TestHealthAndReady(t *testing.T) {
	svc := &stubFulfillment{}
	if rec := do(testRouter(t, svc, nil), http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}
	if rec := do(testRouter(t, svc, nil), http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz without db: expected 503, got %d", rec.Code)
	}
	if rec := do(testRouter(t, svc, stubPinger{err: errors.New("down")}), http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing db: expected 503, got %d", rec.Code)
	}
	if rec := do(testRouter(t, svc, stubPinger{}), http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz: expected 200, got %d", rec.Code)
	}
}

func TestNextDelivery_Available(t *testing.T) {
	loc, err := time.LoadLocation("America/Boise")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	svc := &stubFulfillment{delivery: &planner.DeliveryOption{
		ScheduleID:   "sat",
		DeliveryDate: businesstime.Date{Year: 2026, Month: time.October, Day: 17},
		CutoffAt:     time.Date(2026, time.October, 15, 12, 0, 0, 0, loc),
		TimeWindow:   "8am-11am",
	}}
	rec := do(testRouter(t, svc, nil), http.MethodGet, "/v1/delivery/next?productId=bread&at=2026-10-14T09:00:00-06:00", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotProduct != "bread" {
		t.Fatalf("expected productId bread, got %q", svc.gotProduct)
	}
	if want := time.Date(2026, time.October, 14, 15, 0, 0, 0, time.UTC); !svc.gotAt.Equal(want) {
		t.Fatalf("expected at %v, got %v", want, svc.gotAt)
	}
	body := rec.Body.String()
	for _, want := range []string{`"available":true`, `"deliveryDate":"2026-10-17"`, `"cutoffAt":"2026-10-15T12:00:00-06:00"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %s: %s", want, body)
		}
	}
}

func TestNextDelivery_UnavailableIsNotAnError(t *testing.T) {
	svc := &stubFulfillment{}
	rec := do(testRouter(t, svc, nil), http.MethodGet, "/v1/delivery/next?productId=frozen", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.gotAt.IsZero() {
		t.Fatalf("missing at should reach the service as zero, got %v", svc.gotAt)
	}
	var resp deliveryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Available || resp.Option != nil {
		t.Fatalf("expected unavailable, got %+v", resp)
	}
}

func TestNextDelivery_BadInstant(t *testing.T) {
	rec := do(testRouter(t, &stubFulfillment{}, nil), http.MethodGet, "/v1/delivery/next?at=tomorrow", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", domain.ErrInvalidInput, http.StatusBadRequest},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(testRouter(t, &stubFulfillment{err: tc.err}, nil), http.MethodGet, "/v1/pickup/locations/market/next", "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if tc.want == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "connection reset") {
				t.Fatalf("internal error leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestCartDelivery(t *testing.T) {
	svc := &stubFulfillment{plan: planner.CartDeliveryPlan{
		Items:       []planner.ItemDelivery{{ProductID: "frozen", Quantity: 1}},
		Unavailable: []string{"frozen"},
	}}
	body := `{"items":[{"productId":"frozen","quantity":1}],"at":"2026-10-14T09:00:00-06:00"}`
	rec := do(testRouter(t, svc, nil), http.MethodPost, "/v1/delivery/cart", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(svc.gotItems) != 1 || svc.gotItems[0].ProductID != "frozen" || svc.gotAt.IsZero() {
		t.Fatalf("unexpected service input items=%+v at=%v", svc.gotItems, svc.gotAt)
	}
	if !strings.Contains(rec.Body.String(), `"available":false`) || !strings.Contains(rec.Body.String(), `"unavailable":["frozen"]`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = do(testRouter(t, svc, nil), http.MethodPost, "/v1/delivery/cart", `{"items":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: expected 400, got %d", rec.Code)
	}
}

func TestCartPickup_EmptyListIsArray(t *testing.T) {
	rec := do(testRouter(t, &stubFulfillment{}, nil), http.MethodPost, "/v1/pickup/cart", `{"items":[]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"locations":[]`) {
		t.Fatalf("expected empty locations array, got %s", rec.Body.String())
	}
}

func TestNextPickup_PassesLocation(t *testing.T) {
	svc := &stubFulfillment{pickup: &planner.PickupOption{LocationID: "shop", PickupDate: businesstime.Date{Year: 2026, Month: time.October, Day: 16}}}
	rec := do(testRouter(t, svc, nil), http.MethodGet, "/v1/pickup/locations/shop/next?productId=bread", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotLocation != "shop" || svc.gotProduct != "bread" {
		t.Fatalf("unexpected inputs location=%q product=%q", svc.gotLocation, svc.gotProduct)
	}
	if !strings.Contains(rec.Body.String(), `"pickupDate":"2026-10-16"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestZone(t *testing.T) {
	rec := do(testRouter(t, &stubFulfillment{}, nil), http.MethodGet, "/v1/zones/00000", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown zip: expected 404, got %d", rec.Code)
	}
	svc := &stubFulfillment{zone: &domain.DeliveryZone{ID: "z1", Name: "Downtown", FeeAmountCents: 500}}
	rec = do(testRouter(t, svc, nil), http.MethodGet, "/v1/zones/83702", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"feeAmountCents":500`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestDeliveryFee(t *testing.T) {
	svc := &stubFulfillment{quote: pricing.FeeQuote{FeeAmountCents: 0}}
	rec := do(testRouter(t, svc, nil), http.MethodGet, "/v1/fees/delivery?zip=00000", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"feeAmountCents":0`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(testRouter(t, svc, nil), http.MethodGet, "/v1/fees/delivery?zip=83702&subtotalCents=8000", "")
	if rec.Code != http.StatusOK || svc.gotSubtotal != 8000 {
		t.Fatalf("unexpected response %d subtotal=%d", rec.Code, svc.gotSubtotal)
	}

	for _, target := range []string{"/v1/fees/delivery", "/v1/fees/delivery?zip=83702&subtotalCents=lots"} {
		if rec := do(testRouter(t, svc, nil), http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter(t, &stubFulfillment{}, nil)
	do(router, http.MethodGet, "/healthz", "")
	rec := do(router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fulfillment_http_request_duration_seconds") {
		t.Fatalf("expected request histogram in metrics output")
	}
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	router := testRouter(t, &stubFulfillment{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}
