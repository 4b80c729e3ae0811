// Package services implements the order-building operations exposed over
// HTTP: session lifecycle, the address gate, cart mutation, and checkout.
package services

import (
	"context"
	"errors"

	"github.com/gasonil/storefront/internal/domain"
	"github.com/gasonil/storefront/internal/session"
)

// ErrSessionNotFound indicates the addressed visitor session does not exist
// or has expired.
var ErrSessionNotFound = errors.New("services: session not found")

// SessionService manages visitor session lifecycle.
type SessionService interface {
	Create(ctx context.Context) (*session.Session, error)
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	SweepExpired(ctx context.Context) (int, error)
}

// CartView is the render-from-scratch snapshot returned after every cart
// operation.
type CartView struct {
	Items          []domain.LineItem
	Total          domain.Centavos
	FormattedTotal string
	Empty          bool
}

// AddItemCommand adds one unit of a product to a session's cart.
type AddItemCommand struct {
	SessionID string
	Name      string
	UnitPrice domain.Centavos
}

// ItemCommand addresses a line item by its index in the rendered list.
type ItemCommand struct {
	SessionID string
	Index     int
}

// SetQuantityCommand stores an absolute quantity for a line item.
type SetQuantityCommand struct {
	SessionID string
	Index     int
	Quantity  int
}

// CartService mutates and reads session carts behind the address gate.
type CartService interface {
	View(ctx context.Context, sessionID string) (CartView, error)
	AddItem(ctx context.Context, cmd AddItemCommand) (CartView, error)
	SetQuantity(ctx context.Context, cmd SetQuantityCommand) (CartView, error)
	Increment(ctx context.Context, cmd ItemCommand) (CartView, error)
	Decrement(ctx context.Context, cmd ItemCommand) (CartView, error)
	Remove(ctx context.Context, cmd ItemCommand) (CartView, error)
}

// LookupCommand resolves a raw postal code for a session.
type LookupCommand struct {
	SessionID  string
	PostalCode string
}

// LookupResult reports a successful lookup.
type LookupResult struct {
	Address domain.PostalAddress
	Status  session.AddressStatus
}

// ConfirmDetailsCommand completes the address-detail form.
type ConfirmDetailsCommand struct {
	SessionID  string
	Number     string `validate:"required"`
	Complement string
	Reference  string
}

// AddressService is the validation gate in front of cart mutation.
type AddressService interface {
	Lookup(ctx context.Context, cmd LookupCommand) (LookupResult, error)
	ConfirmDetails(ctx context.Context, cmd ConfirmDetailsCommand) (domain.DeliveryAddress, error)
	GateOpen(ctx context.Context, sessionID string) (bool, error)
}

// SelectPaymentCommand stores the visitor's payment choice. Amount is the
// tendered cash value and only applies to the cash method.
type SelectPaymentCommand struct {
	SessionID string
	Method    domain.PaymentMethod
	Amount    *domain.Centavos
}

// PaymentService applies the payment selection policy.
type PaymentService interface {
	Select(ctx context.Context, cmd SelectPaymentCommand) (domain.ChangeInputPolicy, error)
	Current(ctx context.Context, sessionID string) (domain.PaymentSelection, domain.ChangeInputPolicy, error)
}

// CheckoutCommand finalises a session's order.
type CheckoutCommand struct {
	SessionID string
}

// CheckoutResult carries the rendered order message and the handoff URL.
type CheckoutResult struct {
	Message     string
	WhatsAppURL string
	Total       domain.Centavos
	// Change is set only for cash overpayment.
	Change *domain.Centavos
}

// CheckoutService validates order readiness and assembles the handoff.
type CheckoutService interface {
	Checkout(ctx context.Context, cmd CheckoutCommand) (CheckoutResult, error)
}
