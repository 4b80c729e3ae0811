package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gasonil/storefront/internal/domain"
	"github.com/gasonil/storefront/internal/session"
)

const testPhone = "5531999306022"

func newCheckoutService(t *testing.T, sessions SessionService) CheckoutService {
	t.Helper()
	svc, err := NewCheckoutService(CheckoutServiceDeps{Sessions: sessions, Phone: testPhone})
	if err != nil {
		t.Fatalf("new checkout service: %v", err)
	}
	return svc
}

func newOrderReadySession(t *testing.T) *session.Session {
	t.Helper()
	sess := newGateOpenSession(t)
	if err := sess.AddItem("Pizza Grande", 3000); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := sess.IncrementItem(0); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := sess.AddItem("Refrigerante", 500); err != nil {
		t.Fatalf("add item: %v", err)
	}
	return sess
}

func TestCheckoutEmptyCartWinsOverMissingAddress(t *testing.T) {
	// A fresh session lacks both items and an address; the cart check runs
	// first.
	svc := newCheckoutService(t, sessionsReturning(newTestSession(t)))

	_, err := svc.Checkout(context.Background(), CheckoutCommand{SessionID: "sess-test"})
	if !errors.Is(err, ErrCheckoutEmptyCart) {
		t.Fatalf("expected ErrCheckoutEmptyCart, got %v", err)
	}
}

func TestCheckoutRejectsMissingAddress(t *testing.T) {
	sess := newOrderReadySession(t)
	// Clearing the address keeps the items but shuts the gate.
	sess.ClearAddressState()
	svc := newCheckoutService(t, sessionsReturning(sess))

	_, err := svc.Checkout(context.Background(), CheckoutCommand{SessionID: "sess-test"})
	if !errors.Is(err, ErrCheckoutMissingAddress) {
		t.Fatalf("expected ErrCheckoutMissingAddress, got %v", err)
	}
}

func TestCheckoutCashWithoutAmount(t *testing.T) {
	sess := newOrderReadySession(t)
	if err := sess.SelectPayment(domain.PaymentCash, nil); err != nil {
		t.Fatalf("select payment: %v", err)
	}
	svc := newCheckoutService(t, sessionsReturning(sess))

	_, err := svc.Checkout(context.Background(), CheckoutCommand{SessionID: "sess-test"})
	if !errors.Is(err, ErrCheckoutInsufficientPayment) {
		t.Fatalf("expected ErrCheckoutInsufficientPayment, got %v", err)
	}
	var payErr *InsufficientPaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("expected *InsufficientPaymentError, got %T", err)
	}
	if payErr.Entered != nil || payErr.Required != 6500 {
		t.Fatalf("unexpected amounts: %+v", payErr)
	}
}

func TestCheckoutCashBelowTotal(t *testing.T) {
	sess := newOrderReadySession(t)
	if err := sess.SelectPayment(domain.PaymentCash, centavos(6000)); err != nil {
		t.Fatalf("select payment: %v", err)
	}
	svc := newCheckoutService(t, sessionsReturning(sess))

	_, err := svc.Checkout(context.Background(), CheckoutCommand{SessionID: "sess-test"})
	var payErr *InsufficientPaymentError
	if !errors.As(err, &payErr) {
		t.Fatalf("expected *InsufficientPaymentError, got %v", err)
	}
	if payErr.Entered == nil || *payErr.Entered != 6000 || payErr.Required != 6500 {
		t.Fatalf("unexpected amounts: entered=%v required=%d", payErr.Entered, payErr.Required)
	}
}

func TestCheckoutExactCashHasNoChange(t *testing.T) {
	sess := newOrderReadySession(t)
	if err := sess.SelectPayment(domain.PaymentCash, centavos(6500)); err != nil {
		t.Fatalf("select payment: %v", err)
	}
	svc := newCheckoutService(t, sessionsReturning(sess))

	res, err := svc.Checkout(context.Background(), CheckoutCommand{SessionID: "sess-test"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Change != nil {
		t.Fatalf("exact payment must have nil change, got %d", *res.Change)
	}
	if !strings.Contains(res.Message, "*TROCO:* Não Necessário (Valor exato)") {
		t.Fatalf("missing exact-payment marker:\n%s", res.Message)
	}
}

func TestCheckoutCashOverpayment(t *testing.T) {
	sess := newOrderReadySession(t)
	if err := sess.SelectPayment(domain.PaymentCash, centavos(7000)); err != nil {
		t.Fatalf("select payment: %v", err)
	}
	svc := newCheckoutService(t, sessionsReturning(sess))

	res, err := svc.Checkout(context.Background(), CheckoutCommand{SessionID: "sess-test"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Change == nil || *res.Change != 500 {
		t.Fatalf("expected change of 500 centavos, got %v", res.Change)
	}
	if !strings.Contains(res.Message, "*TROCO NECESSÁRIO:* R$ 5,00 (Para: R$ 70,00)") {
		t.Fatalf("missing change line:\n%s", res.Message)
	}
}

func TestCheckoutCardIgnoresAmount(t *testing.T) {
	sess := newOrderReadySession(t)
	svc := newCheckoutService(t, sessionsReturning(sess))

	res, err := svc.Checkout(context.Background(), CheckoutCommand{SessionID: "sess-test"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Total != 6500 {
		t.Fatalf("unexpected total %d", res.Total)
	}
	if res.Change != nil {
		t.Fatal("card payment must not report change")
	}
	if !strings.Contains(res.Message, "💰 *TOTAL:* R$ 65,00") {
		t.Fatalf("missing total line:\n%s", res.Message)
	}
}

func TestCheckoutHandoffURL(t *testing.T) {
	svc := newCheckoutService(t, sessionsReturning(newOrderReadySession(t)))

	res, err := svc.Checkout(context.Background(), CheckoutCommand{SessionID: "sess-test"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !strings.HasPrefix(res.WhatsAppURL, "https://wa.me/"+testPhone+"?text=") {
		t.Fatalf("unexpected handoff URL: %s", res.WhatsAppURL)
	}
	if strings.ContainsAny(res.WhatsAppURL, " +") {
		t.Fatalf("handoff URL must percent-encode spaces: %s", res.WhatsAppURL)
	}
	if !strings.Contains(res.WhatsAppURL, "%0A") {
		t.Fatalf("handoff URL must carry encoded line breaks: %s", res.WhatsAppURL)
	}
}

func TestCheckoutLeavesSessionIntact(t *testing.T) {
	sess := newOrderReadySession(t)
	svc := newCheckoutService(t, sessionsReturning(sess))

	if _, err := svc.Checkout(context.Background(), CheckoutCommand{SessionID: "sess-test"}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if sess.Cart().IsEmpty() {
		t.Fatal("checkout must not clear the cart")
	}
	if !sess.GateOpen() {
		t.Fatal("checkout must not close the address gate")
	}
}
