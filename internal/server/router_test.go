package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smart-calculator/internal/calculator"
	"smart-calculator/internal/currency"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type unitRates struct{}

func (unitRates) Rate(context.Context, string, string) (float64, error) { return 2, nil }

func (unitRates) Currencies(context.Context) ([]string, error) {
	return []string{"EUR", "USD"}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}
	if err := currency.InitMetrics(); err != nil {
		t.Fatalf("initializing currency metrics: %v", err)
	}

	router, err := NewRouter(Deps{
		Calculators: calculator.NewSessions(),
		Converters:  currency.NewSessions(),
		Rates:       unitRates{},
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return router
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterCalculatorSessionSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, rr.Code)

	var created calculator.SessionResponse
	testutil.DecodeJSONBody(t, rr.Body, &created)

	req := testutil.JSONRequest(t, http.MethodPost, "/calculator/sessions/"+created.ID+"/keys",
		calculator.KeyRequest{Keys: []string{"2", "+", "3", "="}})
	w := testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	state, ok := payload["state"].(map[string]any)
	if !ok || state["display"] != "5" {
		t.Fatalf("expected display 5, got %#v", payload["state"])
	}
}

func TestNewRouterMountsCurrencySurface(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.JSONRequest(t, http.MethodPost, "/currency/sessions?wait=true", currency.PairRequest{From: "EUR", To: "USD"})
	rr := testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusCreated, rr.Code)

	var resp currency.SessionResponse
	testutil.DecodeJSONBody(t, rr.Body, &resp)
	if resp.View.Converted != "2.0000" {
		t.Fatalf("expected converted 2.0000, got %q", resp.View.Converted)
	}

	rr = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/currency/currencies", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)
}

func TestNewRouterNotFoundCarriesRequestID(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/nope", nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, rr.Code)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header on error response")
	}
}

func TestNewRouterExposesSessionGauge(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)

	if body := rr.Body.String(); !strings.Contains(body, "keypad_sessions_active") {
		t.Fatal("expected keypad_sessions_active in /metrics output")
	}
}
