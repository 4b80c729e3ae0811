package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gasonil/storefront/internal/domain"
	"github.com/gasonil/storefront/internal/repositories/memory"
	"github.com/gasonil/storefront/internal/services"
)

type lookupStub struct {
	address domain.PostalAddress
	err     error
}

func (s *lookupStub) Lookup(context.Context, string) (domain.PostalAddress, error) {
	return s.address, s.err
}

type testServer struct {
	router chi.Router
	lookup *lookupStub
}

// newTestServer wires the full handler stack over the in-memory store with a
// stubbed postal lookup.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	lookup := &lookupStub{address: domain.PostalAddress{
		PostalCode: "30140-071",
		Street:     "Avenida do Contorno",
		District:   "Funcionários",
		City:       "Belo Horizonte",
		StateCode:  "MG",
	}}

	sessions, err := services.NewSessionService(services.SessionServiceDeps{
		Repository: memory.NewSessionStore(),
		Clock:      time.Now,
		TTL:        time.Hour,
	})
	if err != nil {
		t.Fatalf("session service: %v", err)
	}
	carts, err := services.NewCartService(services.CartServiceDeps{Sessions: sessions})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	addresses, err := services.NewAddressService(services.AddressServiceDeps{Sessions: sessions, Lookup: lookup})
	if err != nil {
		t.Fatalf("address service: %v", err)
	}
	payments, err := services.NewPaymentService(services.PaymentServiceDeps{Sessions: sessions})
	if err != nil {
		t.Fatalf("payment service: %v", err)
	}
	checkouts, err := services.NewCheckoutService(services.CheckoutServiceDeps{Sessions: sessions, Phone: "5531999306022"})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}

	router := NewRouter(WithSessionRoutes(ComposeSessionRoutes(
		NewSessionHandlers(sessions, carts, payments),
		NewCartHandlers(carts),
		NewAddressHandlers(addresses),
		NewPaymentHandlers(payments),
		NewCheckoutHandlers(checkouts),
		NewDialogHandlers(sessions),
	)))

	return &testServer{router: router, lookup: lookup}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createSession(t *testing.T) string {
	t.Helper()

	rr := ts.do(t, http.MethodPost, "/api/v1/sessions", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create session: status %d body %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse create response: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("missing session_id in create response")
	}
	return resp.SessionID
}

// openGate runs the lookup and detail confirmation so the cart accepts items.
func (ts *testServer) openGate(t *testing.T, sessionID string) {
	t.Helper()

	rr := ts.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/address/lookup", map[string]string{"postal_code": "30140071"})
	if rr.Code != http.StatusOK {
		t.Fatalf("lookup: status %d body %s", rr.Code, rr.Body.String())
	}
	rr = ts.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/address/details", map[string]string{"number": "1500"})
	if rr.Code != http.StatusOK {
		t.Fatalf("confirm details: status %d body %s", rr.Code, rr.Body.String())
	}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("parse response %q: %v", rr.Body.String(), err)
	}
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	decodeBody(t, rr, &resp)
	return resp.Error
}
