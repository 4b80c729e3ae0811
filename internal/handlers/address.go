package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gasonil/storefront/internal/domain"
	"github.com/gasonil/storefront/internal/platform/httpx"
	"github.com/gasonil/storefront/internal/services"
)

// AddressHandlers exposes the postal-code lookup and detail confirmation
// endpoints that gate the cart.
type AddressHandlers struct {
	addresses services.AddressService
}

const maxAddressBodySize = 8 * 1024

// NewAddressHandlers constructs handlers delegating to the address service.
func NewAddressHandlers(addresses services.AddressService) *AddressHandlers {
	return &AddressHandlers{addresses: addresses}
}

// Routes wires the /address endpoints onto the provided router.
func (h *AddressHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/lookup", h.lookup)
	r.Post("/details", h.confirmDetails)
	r.Get("/gate", h.gate)
}

type lookupRequest struct {
	PostalCode string `json:"postal_code"`
}

type addressPayload struct {
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	District   string `json:"district"`
	City       string `json:"city"`
	StateCode  string `json:"state_code"`
}

type lookupResponse struct {
	Status  string         `json:"status"`
	Address addressPayload `json:"address"`
}

type confirmDetailsRequest struct {
	Number     string `json:"number"`
	Complement string `json:"complement"`
	Reference  string `json:"reference"`
}

type deliveryAddressResponse struct {
	Address    addressPayload `json:"address"`
	Number     string         `json:"number"`
	Complement string         `json:"complement,omitempty"`
	Reference  string         `json:"reference,omitempty"`
}

type gateResponse struct {
	GateOpen bool `json:"gate_open"`
}

func buildAddressPayload(addr domain.PostalAddress) addressPayload {
	return addressPayload{
		PostalCode: addr.PostalCode,
		Street:     addr.Street,
		District:   addr.District,
		City:       addr.City,
		StateCode:  addr.StateCode,
	}
}

func (h *AddressHandlers) lookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req lookupRequest
	if err := decodeJSONBody(r, maxAddressBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	result, err := h.addresses.Lookup(ctx, services.LookupCommand{
		SessionID:  sessionIDFromRequest(r),
		PostalCode: req.PostalCode,
	})
	if err != nil {
		h.writeAddressError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, lookupResponse{
		Status:  string(result.Status),
		Address: buildAddressPayload(result.Address),
	})
}

func (h *AddressHandlers) confirmDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req confirmDetailsRequest
	if err := decodeJSONBody(r, maxAddressBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	details, err := h.addresses.ConfirmDetails(ctx, services.ConfirmDetailsCommand{
		SessionID:  sessionIDFromRequest(r),
		Number:     req.Number,
		Complement: req.Complement,
		Reference:  req.Reference,
	})
	if err != nil {
		h.writeAddressError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, deliveryAddressResponse{
		Address:    buildAddressPayload(details.PostalAddress),
		Number:     details.Number,
		Complement: details.Complement,
		Reference:  details.Reference,
	})
}

func (h *AddressHandlers) gate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	open, err := h.addresses.GateOpen(ctx, sessionIDFromRequest(r))
	if err != nil {
		h.writeAddressError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, gateResponse{GateOpen: open})
}

func (h *AddressHandlers) writeAddressError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if writeSessionError(ctx, w, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrLookupInvalidFormat):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_postal_code", "postal code must have 8 digits", http.StatusBadRequest))
	case errors.Is(err, services.ErrLookupNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("postal_code_not_found", "postal code not found", http.StatusNotFound))
	case errors.Is(err, services.ErrLookupFailed):
		httpx.WriteError(ctx, w, httpx.NewError("lookup_unavailable", "postal code lookup is unavailable", http.StatusBadGateway))
	case errors.Is(err, services.ErrMissingNumber):
		httpx.WriteError(ctx, w, httpx.NewError("address_number_required", "house number is required", http.StatusBadRequest))
	case errors.Is(err, services.ErrNoValidatedAddress):
		httpx.WriteError(ctx, w, httpx.NewError("no_validated_address", "look up a postal code before confirming details", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("address_error", "failed to process address", http.StatusInternalServerError))
	}
}
