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

// CartHandlers exposes the session-scoped cart endpoints.
type CartHandlers struct {
	carts services.CartService
}

const maxCartBodySize = 16 * 1024

// NewCartHandlers constructs handlers delegating to the cart service.
func NewCartHandlers(carts services.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Post("/items", h.addItem)
	r.Post("/items/{index}/increment", h.incrementItem)
	r.Post("/items/{index}/decrement", h.decrementItem)
	r.Put("/items/{index}/quantity", h.setQuantity)
	r.Delete("/items/{index}", h.removeItem)
}

type cartItemPayload struct {
	Name               string          `json:"name"`
	UnitPrice          domain.Centavos `json:"unit_price"`
	UnitPriceFormatted string          `json:"unit_price_formatted"`
	Quantity           int             `json:"quantity"`
	Subtotal           domain.Centavos `json:"subtotal"`
	SubtotalFormatted  string          `json:"subtotal_formatted"`
}

type cartPayload struct {
	Items          []cartItemPayload `json:"items"`
	Total          domain.Centavos   `json:"total"`
	TotalFormatted string            `json:"total_formatted"`
	Empty          bool              `json:"empty"`
}

type cartResponse struct {
	Cart cartPayload `json:"cart"`
}

type addItemRequest struct {
	Name      string          `json:"name"`
	UnitPrice domain.Centavos `json:"unit_price"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func buildCartPayload(view services.CartView) cartPayload {
	items := make([]cartItemPayload, 0, len(view.Items))
	for _, item := range view.Items {
		subtotal := item.Subtotal()
		items = append(items, cartItemPayload{
			Name:               item.Name,
			UnitPrice:          item.UnitPrice,
			UnitPriceFormatted: item.UnitPrice.Format(),
			Quantity:           item.Quantity,
			Subtotal:           subtotal,
			SubtotalFormatted:  subtotal.Format(),
		})
	}
	return cartPayload{
		Items:          items,
		Total:          view.Total,
		TotalFormatted: view.FormattedTotal,
		Empty:          view.Empty,
	}
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.carts.View(ctx, sessionIDFromRequest(r))
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(view)})
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addItemRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	view, err := h.carts.AddItem(ctx, services.AddItemCommand{
		SessionID: sessionIDFromRequest(r),
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(view)})
}

func (h *CartHandlers) setQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	index, err := itemIndexFromRequest(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	var req setQuantityRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	view, err := h.carts.SetQuantity(ctx, services.SetQuantityCommand{
		SessionID: sessionIDFromRequest(r),
		Index:     index,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(view)})
}

func (h *CartHandlers) incrementItem(w http.ResponseWriter, r *http.Request) {
	h.itemOp(w, r, h.carts.Increment)
}

func (h *CartHandlers) decrementItem(w http.ResponseWriter, r *http.Request) {
	h.itemOp(w, r, h.carts.Decrement)
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	h.itemOp(w, r, h.carts.Remove)
}

func (h *CartHandlers) itemOp(w http.ResponseWriter, r *http.Request, op func(context.Context, services.ItemCommand) (services.CartView, error)) {
	ctx := r.Context()

	index, err := itemIndexFromRequest(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	view, err := op(ctx, services.ItemCommand{
		SessionID: sessionIDFromRequest(r),
		Index:     index,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{Cart: buildCartPayload(view)})
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if writeSessionError(ctx, w, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrCartGateClosed):
		httpx.WriteError(ctx, w, httpx.NewError("address_gate_closed", "confirm a delivery address before changing the cart", http.StatusConflict))
	case errors.Is(err, services.ErrCartItemNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("item_not_found", "cart item does not exist", http.StatusNotFound))
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to update cart", http.StatusInternalServerError))
	}
}
