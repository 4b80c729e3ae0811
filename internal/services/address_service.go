package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/gasonil/storefront/internal/cep"
	"github.com/gasonil/storefront/internal/dialog"
	"github.com/gasonil/storefront/internal/domain"
	"github.com/gasonil/storefront/internal/session"
)

// Address gate failures, surfaced as inline status text by the UI.
var (
	// ErrLookupInvalidFormat indicates the postal code did not normalise to 8 digits.
	ErrLookupInvalidFormat = errors.New("address service: invalid postal code format")
	// ErrLookupNotFound indicates the service knows no such postal code.
	ErrLookupNotFound = errors.New("address service: postal code not found")
	// ErrLookupFailed indicates the lookup service could not be reached.
	ErrLookupFailed = errors.New("address service: lookup connection error")
	// ErrMissingNumber indicates the required house number was empty.
	ErrMissingNumber = errors.New("address service: house number is required")
	// ErrNoValidatedAddress indicates details were submitted before a successful lookup.
	ErrNoValidatedAddress = errors.New("address service: no validated postal code")
)

var errAddressSessionsRequired = errors.New("address service: session service is required")
var errAddressLookupRequired = errors.New("address service: lookup client is required")

type postalLookup interface {
	Lookup(ctx context.Context, rawPostalCode string) (domain.PostalAddress, error)
}

// AddressServiceDeps wires the session access and the external lookup client.
type AddressServiceDeps struct {
	Sessions SessionService
	Lookup   postalLookup
}

type addressService struct {
	sessions SessionService
	lookup   postalLookup
	validate *validator.Validate
}

// NewAddressService constructs the address gate service.
func NewAddressService(deps AddressServiceDeps) (AddressService, error) {
	if deps.Sessions == nil {
		return nil, errAddressSessionsRequired
	}
	if deps.Lookup == nil {
		return nil, errAddressLookupRequired
	}
	return &addressService{
		sessions: deps.Sessions,
		lookup:   deps.Lookup,
		validate: validator.New(),
	}, nil
}

// Lookup resolves the raw postal code. Failures clear any previously
// validated address; success stores the result and opens the detail dialog.
func (s *addressService) Lookup(ctx context.Context, cmd LookupCommand) (LookupResult, error) {
	sess, err := s.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return LookupResult{}, err
	}

	sess.SetAddressStatus(session.StatusSearching)

	addr, err := s.lookup.Lookup(ctx, cmd.PostalCode)
	if err != nil {
		switch {
		case errors.Is(err, cep.ErrInvalidFormat):
			// Format rejection happens before any network call and leaves
			// prior state intact.
			sess.SetAddressStatus(session.StatusInvalidFormat)
			return LookupResult{}, fmt.Errorf("%w: %v", ErrLookupInvalidFormat, err)
		case errors.Is(err, cep.ErrNotFound):
			sess.ClearAddressState()
			sess.SetAddressStatus(session.StatusNotFound)
			return LookupResult{}, fmt.Errorf("%w: %v", ErrLookupNotFound, err)
		default:
			sess.ClearAddressState()
			sess.SetAddressStatus(session.StatusConnectionError)
			return LookupResult{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
		}
	}

	sess.SetValidatedAddress(addr)
	sess.SetAddressStatus(session.StatusValidated)
	_ = sess.Dialogs().Open(dialog.AddressDetail)

	return LookupResult{Address: addr, Status: session.StatusValidated}, nil
}

// ConfirmDetails merges the visitor-entered details into the validated
// address, opening the gate and closing the detail dialog.
func (s *addressService) ConfirmDetails(ctx context.Context, cmd ConfirmDetailsCommand) (domain.DeliveryAddress, error) {
	sess, err := s.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return domain.DeliveryAddress{}, err
	}

	if err := s.validate.Struct(cmd); err != nil {
		return domain.DeliveryAddress{}, fmt.Errorf("%w: %v", ErrMissingNumber, err)
	}

	details, err := sess.ConfirmDetails(cmd.Number, cmd.Complement, cmd.Reference)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoValidatedAddress):
			return domain.DeliveryAddress{}, ErrNoValidatedAddress
		case errors.Is(err, session.ErrMissingNumber):
			return domain.DeliveryAddress{}, ErrMissingNumber
		default:
			return domain.DeliveryAddress{}, err
		}
	}

	sess.SetAddressStatus(session.StatusSaved)
	_ = sess.Dialogs().Close(dialog.AddressDetail)

	return details, nil
}

// GateOpen reports whether cart mutation is currently permitted.
func (s *addressService) GateOpen(ctx context.Context, sessionID string) (bool, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return sess.GateOpen(), nil
}
