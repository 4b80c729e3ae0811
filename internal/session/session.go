// Package session owns the per-visitor order-building state: the cart, the
// address gate, the payment selection, and the dialog coordinator. All state
// lives on an explicit Session value; there are no package-level globals.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gasonil/storefront/internal/dialog"
	"github.com/gasonil/storefront/internal/domain"
)

var (
	// ErrGateClosed indicates a cart mutation was attempted before the
	// delivery address was confirmed.
	ErrGateClosed = errors.New("session: address gate closed")
	// ErrItemNotFound indicates the line-item index does not exist.
	ErrItemNotFound = errors.New("session: cart item not found")
	// ErrNoValidatedAddress indicates detail confirmation without a prior
	// successful postal-code lookup.
	ErrNoValidatedAddress = errors.New("session: no validated address")
	// ErrMissingNumber indicates the required house number was empty.
	ErrMissingNumber = errors.New("session: address number is required")
	// ErrInvalidPayment indicates a payment method outside the closed set.
	ErrInvalidPayment = errors.New("session: invalid payment method")
)

// AddressStatus is the user-visible state of the address gate, surfaced
// after every transition.
type AddressStatus string

// Address gate statuses.
const (
	StatusIdle            AddressStatus = "idle"
	StatusSearching       AddressStatus = "searching"
	StatusInvalidFormat   AddressStatus = "invalid_format"
	StatusNotFound        AddressStatus = "not_found"
	StatusConnectionError AddressStatus = "connection_error"
	StatusValidated       AddressStatus = "validated"
	StatusSaved           AddressStatus = "saved"
)

// EventType classifies change notifications emitted by a session.
type EventType string

// Session event types.
const (
	EventCartChanged   EventType = "cart_changed"
	EventAddressStatus EventType = "address_status"
	EventDialogChanged EventType = "dialog_changed"
	EventFocusRequest  EventType = "focus_request"
)

// Event is delivered to observers after every state transition. Consumers
// re-render from a fresh snapshot rather than diffing.
type Event struct {
	SessionID string
	Type      EventType
	Status    AddressStatus
	Dialog    dialog.ID
}

// Observer receives session events. Callbacks run on the mutating
// goroutine and must not call back into the session.
type Observer func(Event)

// Session is the single-writer state machine for one visitor. A mutex
// serialises mutations the way the browser event loop serialised the
// original widget's handlers.
type Session struct {
	id        string
	createdAt time.Time

	mu        sync.Mutex
	cart      domain.Cart
	validated *domain.PostalAddress
	delivery  *domain.DeliveryAddress
	payment   domain.PaymentSelection
	status    AddressStatus
	expiresAt time.Time

	dialogs   *dialog.Coordinator
	observers []Observer
}

// Deps configures session construction.
type Deps struct {
	ID         string
	Now        time.Time
	TTL        time.Duration
	FocusDelay time.Duration
	// Schedule overrides the dialog focus timer, for tests.
	Schedule func(time.Duration, func())
}

// New constructs an empty session: empty cart, closed gate, card payment
// preselected, no dialog visible.
func New(deps Deps) *Session {
	s := &Session{
		id:        strings.TrimSpace(deps.ID),
		createdAt: deps.Now,
		cart:      domain.Cart{Items: []domain.LineItem{}},
		payment:   domain.PaymentSelection{Method: domain.PaymentCard},
		status:    StatusIdle,
		expiresAt: deps.Now.Add(deps.TTL),
	}
	s.dialogs = dialog.NewCoordinator(dialog.CoordinatorDeps{
		FocusDelay: deps.FocusDelay,
		Schedule:   deps.Schedule,
		OnVisibilityChange: func(active dialog.ID) {
			s.notify(Event{SessionID: s.id, Type: EventDialogChanged, Dialog: active})
		},
		OnFocusRequest: func(id dialog.ID) {
			s.notify(Event{SessionID: s.id, Type: EventFocusRequest, Dialog: id})
		},
	})
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Dialogs exposes the session's dialog coordinator.
func (s *Session) Dialogs() *dialog.Coordinator { return s.dialogs }

// ExpiresAt returns the current expiry deadline.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Expired reports whether the session has passed its expiry deadline.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.expiresAt.After(now)
}

// Touch extends the expiry deadline, keeping active visitors alive.
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	s.expiresAt = now.Add(ttl)
	s.mu.Unlock()
}

// Subscribe registers an observer for all subsequent events.
func (s *Session) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Session) notify(event Event) {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(event)
	}
}

func (s *Session) notifyCartChanged() {
	s.notify(Event{SessionID: s.id, Type: EventCartChanged})
}

// SetAddressStatus records a gate status transition and signals observers.
func (s *Session) SetAddressStatus(status AddressStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.notify(Event{SessionID: s.id, Type: EventAddressStatus, Status: status})
}

// AddressStatus returns the last reported gate status.
func (s *Session) AddressStatus() AddressStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// GateOpen reports whether the delivery address has been confirmed. Once
// open the gate stays open; emptying the cart does not close it.
func (s *Session) GateOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivery != nil
}

// SetValidatedAddress stores a successful lookup result. With overlapping
// lookups the last completed response wins.
func (s *Session) SetValidatedAddress(addr domain.PostalAddress) {
	s.mu.Lock()
	dup := addr
	s.validated = &dup
	s.mu.Unlock()
}

// ClearAddressState drops both the validated address and any confirmed
// delivery details; called on lookup failure.
func (s *Session) ClearAddressState() {
	s.mu.Lock()
	s.validated = nil
	s.delivery = nil
	s.mu.Unlock()
}

// ValidatedAddress returns the stored lookup result, if any.
func (s *Session) ValidatedAddress() (domain.PostalAddress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.validated == nil {
		return domain.PostalAddress{}, false
	}
	return *s.validated, true
}

// ConfirmDetails merges visitor-entered details into the validated address,
// opening the gate. The house number is required; complement and reference
// are optional.
func (s *Session) ConfirmDetails(number, complement, reference string) (domain.DeliveryAddress, error) {
	number = strings.TrimSpace(number)

	s.mu.Lock()
	if s.validated == nil {
		s.mu.Unlock()
		return domain.DeliveryAddress{}, ErrNoValidatedAddress
	}
	if number == "" {
		s.mu.Unlock()
		return domain.DeliveryAddress{}, ErrMissingNumber
	}
	details := domain.DeliveryAddress{
		PostalAddress: *s.validated,
		Number:        number,
		Complement:    strings.TrimSpace(complement),
		Reference:     strings.TrimSpace(reference),
	}
	s.delivery = &details
	s.mu.Unlock()

	return details, nil
}

// DeliveryAddress returns the confirmed delivery address, if the gate is open.
func (s *Session) DeliveryAddress() (domain.DeliveryAddress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delivery == nil {
		return domain.DeliveryAddress{}, false
	}
	return *s.delivery, true
}

// AddItem appends or merges a line item. The gate must be open.
func (s *Session) AddItem(name string, unitPrice domain.Centavos) error {
	s.mu.Lock()
	if s.delivery == nil {
		s.mu.Unlock()
		return ErrGateClosed
	}
	s.cart.Add(name, unitPrice)
	s.mu.Unlock()

	s.notifyCartChanged()
	return nil
}

// SetQuantity stores a quantity at index, clamping values below 1 to 1.
func (s *Session) SetQuantity(index, quantity int) error {
	return s.mutateCart(func(cart *domain.Cart) bool {
		return cart.SetQuantity(index, quantity)
	})
}

// IncrementItem raises the quantity at index.
func (s *Session) IncrementItem(index int) error {
	return s.mutateCart(func(cart *domain.Cart) bool {
		return cart.Increment(index)
	})
}

// DecrementItem lowers the quantity at index, removing the item at quantity 1.
func (s *Session) DecrementItem(index int) error {
	return s.mutateCart(func(cart *domain.Cart) bool {
		return cart.Decrement(index)
	})
}

// RemoveItem deletes the item at index.
func (s *Session) RemoveItem(index int) error {
	return s.mutateCart(func(cart *domain.Cart) bool {
		return cart.Remove(index)
	})
}

func (s *Session) mutateCart(mutate func(*domain.Cart) bool) error {
	s.mu.Lock()
	if s.delivery == nil {
		s.mu.Unlock()
		return ErrGateClosed
	}
	if !mutate(&s.cart) {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	s.mu.Unlock()

	s.notifyCartChanged()
	return nil
}

// Cart returns a deep copy of the cart.
func (s *Session) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// SelectPayment stores the payment choice. Selecting any non-cash method
// clears a previously entered tendered amount.
func (s *Session) SelectPayment(method domain.PaymentMethod, amount *domain.Centavos) error {
	if !method.Valid() {
		return ErrInvalidPayment
	}

	s.mu.Lock()
	s.payment.Method = method
	if method == domain.PaymentCash {
		if amount != nil {
			dup := *amount
			s.payment.Amount = &dup
		}
	} else {
		s.payment.Amount = nil
	}
	s.mu.Unlock()
	return nil
}

// Payment returns the current payment selection.
func (s *Session) Payment() domain.PaymentSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	selection := s.payment
	if s.payment.Amount != nil {
		dup := *s.payment.Amount
		selection.Amount = &dup
	}
	return selection
}
