package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gasonil/storefront/internal/domain"
	"github.com/gasonil/storefront/internal/platform/httpx"
	"github.com/gasonil/storefront/internal/services"
)

// PaymentHandlers exposes the payment selection endpoints.
type PaymentHandlers struct {
	payments services.PaymentService
}

const maxPaymentBodySize = 4 * 1024

// NewPaymentHandlers constructs handlers delegating to the payment service.
func NewPaymentHandlers(payments services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{payments: payments}
}

type selectPaymentRequest struct {
	Method string `json:"method"`
	// Amount is the tendered cash value in centavos.
	Amount *domain.Centavos `json:"amount,omitempty"`
	// AmountText carries the raw change field as typed by the visitor,
	// e.g. "70,00" or "R$ 70.00". Used when Amount is absent.
	AmountText string `json:"amount_text,omitempty"`
}

type changeInputPayload struct {
	Show     bool `json:"show"`
	Required bool `json:"required"`
}

type paymentPayload struct {
	Method      string             `json:"method"`
	Amount      *domain.Centavos   `json:"amount,omitempty"`
	ChangeInput changeInputPayload `json:"change_input"`
}

type paymentResponse struct {
	Payment paymentPayload `json:"payment"`
}

func buildPaymentPayload(selection domain.PaymentSelection, policy domain.ChangeInputPolicy) paymentPayload {
	return paymentPayload{
		Method: string(selection.Method),
		Amount: selection.Amount,
		ChangeInput: changeInputPayload{
			Show:     policy.Show,
			Required: policy.Required,
		},
	}
}

func (h *PaymentHandlers) selectPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req selectPaymentRequest
	if err := decodeJSONBody(r, maxPaymentBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	amount := req.Amount
	if amount == nil && req.AmountText != "" {
		parsed, err := domain.ParseDecimal(req.AmountText)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_amount", "amount must be a non-negative decimal value", http.StatusBadRequest))
			return
		}
		amount = &parsed
	}

	sessionID := sessionIDFromRequest(r)
	if _, err := h.payments.Select(ctx, services.SelectPaymentCommand{
		SessionID: sessionID,
		Method:    domain.PaymentMethod(req.Method),
		Amount:    amount,
	}); err != nil {
		h.writePaymentError(ctx, w, err)
		return
	}

	selection, policy, err := h.payments.Current(ctx, sessionID)
	if err != nil {
		h.writePaymentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, paymentResponse{Payment: buildPaymentPayload(selection, policy)})
}

func (h *PaymentHandlers) currentPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	selection, policy, err := h.payments.Current(ctx, sessionIDFromRequest(r))
	if err != nil {
		h.writePaymentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, paymentResponse{Payment: buildPaymentPayload(selection, policy)})
}

func (h *PaymentHandlers) writePaymentError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if writeSessionError(ctx, w, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrPaymentInvalidMethod):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_payment_method", "payment method must be cartao, dinheiro or pix", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("payment_error", "failed to store payment selection", http.StatusInternalServerError))
	}
}
