package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gasonil/storefront/internal/domain"
	"github.com/gasonil/storefront/internal/session"
)

// Cart operation failures.
var (
	// ErrCartGateClosed indicates mutation was attempted before the delivery
	// address was confirmed.
	ErrCartGateClosed = errors.New("cart service: address gate closed")
	// ErrCartItemNotFound indicates the line-item index does not exist.
	ErrCartItemNotFound = errors.New("cart service: item not found")
	// ErrCartInvalidInput indicates the caller supplied invalid input.
	ErrCartInvalidInput = errors.New("cart service: invalid input")
)

var errCartSessionsRequired = errors.New("cart service: session service is required")

// CartServiceDeps wires session access for cart operations.
type CartServiceDeps struct {
	Sessions SessionService
}

type cartService struct {
	sessions SessionService
}

// NewCartService constructs a CartService.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Sessions == nil {
		return nil, errCartSessionsRequired
	}
	return &cartService{sessions: deps.Sessions}, nil
}

// View returns the current cart snapshot without mutating anything.
func (s *cartService) View(ctx context.Context, sessionID string) (CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return buildCartView(sess.Cart()), nil
}

// AddItem adds one unit of the named product, merging with an existing line
// item of the same name.
func (s *cartService) AddItem(ctx context.Context, cmd AddItemCommand) (CartView, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return CartView{}, fmt.Errorf("%w: name is required", ErrCartInvalidInput)
	}
	if cmd.UnitPrice < 0 {
		return CartView{}, fmt.Errorf("%w: unit price must be non-negative", ErrCartInvalidInput)
	}

	sess, err := s.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return CartView{}, err
	}
	if err := sess.AddItem(name, cmd.UnitPrice); err != nil {
		return CartView{}, translateSessionCartError(err)
	}
	return buildCartView(sess.Cart()), nil
}

// SetQuantity stores an absolute quantity, clamping values below 1 to 1.
func (s *cartService) SetQuantity(ctx context.Context, cmd SetQuantityCommand) (CartView, error) {
	return s.mutate(ctx, cmd.SessionID, func(sess *session.Session) error {
		return sess.SetQuantity(cmd.Index, cmd.Quantity)
	})
}

// Increment raises the quantity of the addressed item by one.
func (s *cartService) Increment(ctx context.Context, cmd ItemCommand) (CartView, error) {
	return s.mutate(ctx, cmd.SessionID, func(sess *session.Session) error {
		return sess.IncrementItem(cmd.Index)
	})
}

// Decrement lowers the quantity by one; at quantity 1 the item is removed.
func (s *cartService) Decrement(ctx context.Context, cmd ItemCommand) (CartView, error) {
	return s.mutate(ctx, cmd.SessionID, func(sess *session.Session) error {
		return sess.DecrementItem(cmd.Index)
	})
}

// Remove deletes the addressed item regardless of quantity.
func (s *cartService) Remove(ctx context.Context, cmd ItemCommand) (CartView, error) {
	return s.mutate(ctx, cmd.SessionID, func(sess *session.Session) error {
		return sess.RemoveItem(cmd.Index)
	})
}

func (s *cartService) mutate(ctx context.Context, sessionID string, op func(*session.Session) error) (CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	if err := op(sess); err != nil {
		return CartView{}, translateSessionCartError(err)
	}
	return buildCartView(sess.Cart()), nil
}

func translateSessionCartError(err error) error {
	switch {
	case errors.Is(err, session.ErrGateClosed):
		return ErrCartGateClosed
	case errors.Is(err, session.ErrItemNotFound):
		return ErrCartItemNotFound
	default:
		return err
	}
}

func buildCartView(cart domain.Cart) CartView {
	total := cart.Total()
	return CartView{
		Items:          cart.Items,
		Total:          total,
		FormattedTotal: total.Format(),
		Empty:          cart.IsEmpty(),
	}
}
