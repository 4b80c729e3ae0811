package handlers

import (
	"net/http"
	"testing"
)

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)

	id := ts.createSession(t)

	rr := ts.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get session: status %d body %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		SessionID     string `json:"session_id"`
		AddressStatus string `json:"address_status"`
		GateOpen      bool   `json:"gate_open"`
		ActiveDialog  string `json:"active_dialog"`
		Cart          struct {
			Empty          bool   `json:"empty"`
			TotalFormatted string `json:"total_formatted"`
		} `json:"cart"`
		Payment struct {
			Method string `json:"method"`
		} `json:"payment"`
	}
	decodeBody(t, rr, &resp)

	if resp.SessionID != id {
		t.Fatalf("session id mismatch: %q vs %q", resp.SessionID, id)
	}
	if resp.AddressStatus != "idle" {
		t.Fatalf("expected idle address status, got %q", resp.AddressStatus)
	}
	if resp.GateOpen {
		t.Fatal("gate must start closed")
	}
	if !resp.Cart.Empty || resp.Cart.TotalFormatted != "R$ 0,00" {
		t.Fatalf("expected empty cart, got %+v", resp.Cart)
	}
	if resp.Payment.Method != "cartao" {
		t.Fatalf("expected card default, got %q", resp.Payment.Method)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/api/v1/sessions/does-not-exist", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "session_not_found" {
		t.Fatalf("expected session_not_found, got %q", code)
	}
}
