package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gasonil/storefront/internal/domain"
	"github.com/gasonil/storefront/internal/platform/httpx"
	"github.com/gasonil/storefront/internal/services"
)

// CheckoutHandlers exposes the order handoff endpoint.
type CheckoutHandlers struct {
	checkouts services.CheckoutService
}

// NewCheckoutHandlers constructs handlers delegating to the checkout service.
func NewCheckoutHandlers(checkouts services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{checkouts: checkouts}
}

type checkoutResponse struct {
	Message        string           `json:"message"`
	WhatsAppURL    string           `json:"whatsapp_url"`
	Total          domain.Centavos  `json:"total"`
	TotalFormatted string           `json:"total_formatted"`
	Change         *domain.Centavos `json:"change,omitempty"`
}

func (h *CheckoutHandlers) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.checkouts.Checkout(ctx, services.CheckoutCommand{
		SessionID: sessionIDFromRequest(r),
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, checkoutResponse{
		Message:        result.Message,
		WhatsAppURL:    result.WhatsAppURL,
		Total:          result.Total,
		TotalFormatted: result.Total.Format(),
		Change:         result.Change,
	})
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if writeSessionError(ctx, w, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrCheckoutEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("empty_cart", "add at least one item before checking out", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutMissingAddress):
		httpx.WriteError(ctx, w, httpx.NewError("missing_address", "confirm a delivery address before checking out", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutInsufficientPayment):
		h.writeInsufficientPayment(ctx, w, err)
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to assemble the order", http.StatusInternalServerError))
	}
}

func (h *CheckoutHandlers) writeInsufficientPayment(ctx context.Context, w http.ResponseWriter, err error) {
	httpErr := httpx.NewError("insufficient_payment", "tendered cash does not cover the order total", http.StatusConflict)

	var payErr *services.InsufficientPaymentError
	if errors.As(err, &payErr) {
		details := map[string]any{
			"required": payErr.Required.Format(),
		}
		if payErr.Entered != nil {
			details["entered"] = payErr.Entered.Format()
		}
		httpErr = httpErr.WithDetails(details)
	}
	httpx.WriteError(ctx, w, httpErr)
}
