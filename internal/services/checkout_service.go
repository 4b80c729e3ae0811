package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gasonil/storefront/internal/checkout"
	"github.com/gasonil/storefront/internal/domain"
)

// Checkout precondition failures, checked in a fixed order: cart, address,
// payment.
var (
	// ErrCheckoutEmptyCart indicates checkout was attempted with no items.
	ErrCheckoutEmptyCart = errors.New("checkout service: cart is empty")
	// ErrCheckoutMissingAddress indicates no confirmed delivery address exists.
	ErrCheckoutMissingAddress = errors.New("checkout service: delivery address not confirmed")
	// ErrCheckoutInsufficientPayment indicates the tendered cash does not
	// cover the order total.
	ErrCheckoutInsufficientPayment = errors.New("checkout service: insufficient payment")
)

var (
	errCheckoutSessionsRequired = errors.New("checkout service: session service is required")
	errCheckoutPhoneRequired    = errors.New("checkout service: destination phone is required")
)

// InsufficientPaymentError carries the amounts behind an
// ErrCheckoutInsufficientPayment so callers can render both values.
type InsufficientPaymentError struct {
	// Entered is nil when no cash amount was provided at all.
	Entered  *domain.Centavos
	Required domain.Centavos
}

func (e *InsufficientPaymentError) Error() string {
	if e.Entered == nil {
		return fmt.Sprintf("checkout service: insufficient payment: no amount entered, need %s", e.Required.Format())
	}
	return fmt.Sprintf("checkout service: insufficient payment: entered %s, need %s", e.Entered.Format(), e.Required.Format())
}

func (e *InsufficientPaymentError) Unwrap() error { return ErrCheckoutInsufficientPayment }

// CheckoutServiceDeps wires session access and the handoff destination.
type CheckoutServiceDeps struct {
	Sessions SessionService
	// Phone is the digits-only destination number for the handoff link.
	Phone  string
	Logger *zap.Logger
}

type checkoutService struct {
	sessions SessionService
	phone    string
	logger   *zap.Logger
}

// NewCheckoutService constructs a CheckoutService.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Sessions == nil {
		return nil, errCheckoutSessionsRequired
	}
	if deps.Phone == "" {
		return nil, errCheckoutPhoneRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &checkoutService{
		sessions: deps.Sessions,
		phone:    deps.Phone,
		logger:   logger,
	}, nil
}

// Checkout validates the order preconditions, renders the order message and
// returns the handoff link. The session state is left untouched so the
// visitor can retry after fixing a rejected precondition.
func (s *checkoutService) Checkout(ctx context.Context, cmd CheckoutCommand) (CheckoutResult, error) {
	sess, err := s.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return CheckoutResult{}, err
	}

	cart := sess.Cart()
	if cart.IsEmpty() {
		return CheckoutResult{}, ErrCheckoutEmptyCart
	}

	address, ok := sess.DeliveryAddress()
	if !ok {
		return CheckoutResult{}, ErrCheckoutMissingAddress
	}

	total := cart.Total()
	payment := sess.Payment()

	var change *domain.Centavos
	if payment.Method == domain.PaymentCash {
		if payment.Amount == nil || *payment.Amount < total {
			return CheckoutResult{}, &InsufficientPaymentError{Entered: payment.Amount, Required: total}
		}
		if diff := *payment.Amount - total; diff > 0 {
			change = &diff
		}
	}

	msg := checkout.NewMessage(checkout.OrderInput{
		Items:   cart.Items,
		Address: address,
		Payment: payment,
	})
	rendered := msg.Render()

	s.logger.Info("order checkout completed",
		zap.String("session_id", sess.ID()),
		zap.Int("item_count", len(cart.Items)),
		zap.Int64("total_centavos", int64(total)),
		zap.String("payment_method", string(payment.Method)),
	)

	return CheckoutResult{
		Message:     rendered,
		WhatsAppURL: checkout.DeepLink(s.phone, msg),
		Total:       total,
		Change:      change,
	}, nil
}
