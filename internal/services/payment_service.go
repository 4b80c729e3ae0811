package services

import (
	"context"
	"errors"

	"github.com/gasonil/storefront/internal/domain"
	"github.com/gasonil/storefront/internal/session"
)

// ErrPaymentInvalidMethod indicates a method outside the closed set.
var ErrPaymentInvalidMethod = errors.New("payment service: invalid method")

var errPaymentSessionsRequired = errors.New("payment service: session service is required")

// PaymentServiceDeps wires session access for payment selection.
type PaymentServiceDeps struct {
	Sessions SessionService
}

type paymentService struct {
	sessions SessionService
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(deps PaymentServiceDeps) (PaymentService, error) {
	if deps.Sessions == nil {
		return nil, errPaymentSessionsRequired
	}
	return &paymentService{sessions: deps.Sessions}, nil
}

// Select stores the payment choice and returns the change-input policy for
// the selected method. Switching away from cash drops any tendered amount.
func (s *paymentService) Select(ctx context.Context, cmd SelectPaymentCommand) (domain.ChangeInputPolicy, error) {
	sess, err := s.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return domain.ChangeInputPolicy{}, err
	}
	if err := sess.SelectPayment(cmd.Method, cmd.Amount); err != nil {
		if errors.Is(err, session.ErrInvalidPayment) {
			return domain.ChangeInputPolicy{}, ErrPaymentInvalidMethod
		}
		return domain.ChangeInputPolicy{}, err
	}
	return domain.PolicyFor(cmd.Method), nil
}

// Current returns the stored selection alongside its change-input policy.
func (s *paymentService) Current(ctx context.Context, sessionID string) (domain.PaymentSelection, domain.ChangeInputPolicy, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.PaymentSelection{}, domain.ChangeInputPolicy{}, err
	}
	selection := sess.Payment()
	return selection, domain.PolicyFor(selection.Method), nil
}
