package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gasonil/storefront/internal/platform/httpx"
	"github.com/gasonil/storefront/internal/platform/requestctx"
	"github.com/gasonil/storefront/internal/services"
)

// SessionHandlers exposes the visitor session lifecycle endpoints.
type SessionHandlers struct {
	sessions services.SessionService
	carts    services.CartService
	payments services.PaymentService
}

// NewSessionHandlers constructs handlers backed by the session service.
func NewSessionHandlers(sessions services.SessionService, carts services.CartService, payments services.PaymentService) *SessionHandlers {
	return &SessionHandlers{
		sessions: sessions,
		carts:    carts,
		payments: payments,
	}
}

// ComposeSessionRoutes wires the full /sessions group: lifecycle at the root,
// cart, address, payment, checkout and dialog routes scoped per session.
func ComposeSessionRoutes(sh *SessionHandlers, ch *CartHandlers, ah *AddressHandlers, ph *PaymentHandlers, kh *CheckoutHandlers, dh *DialogHandlers) RouteRegistrar {
	return func(r chi.Router) {
		if sh != nil {
			r.Post("/", sh.createSession)
		}
		r.Route("/{sessionID}", func(sr chi.Router) {
			sr.Use(sessionScopeMiddleware)
			if sh != nil {
				sr.Get("/", sh.getSession)
			}
			if ch != nil {
				sr.Route("/cart", ch.Routes)
			}
			if ah != nil {
				sr.Route("/address", ah.Routes)
			}
			if ph != nil {
				sr.Put("/payment", ph.selectPayment)
				sr.Get("/payment", ph.currentPayment)
			}
			if kh != nil {
				sr.Post("/checkout", kh.checkout)
			}
			if dh != nil {
				sr.Route("/dialogs", dh.Routes)
			}
		})
	}
}

// sessionScopeMiddleware records the routed session id in the request
// context so log lines can correlate per visitor.
func sessionScopeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := sessionIDFromRequest(r); id != "" {
			r = r.WithContext(requestctx.WithSessionID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionSummaryResponse struct {
	SessionID     string         `json:"session_id"`
	ExpiresAt     time.Time      `json:"expires_at"`
	AddressStatus string         `json:"address_status"`
	GateOpen      bool           `json:"gate_open"`
	ActiveDialog  string         `json:"active_dialog"`
	Cart          cartPayload    `json:"cart"`
	Payment       paymentPayload `json:"payment"`
}

func (h *SessionHandlers) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("session_unavailable", "session service is unavailable", http.StatusServiceUnavailable))
		return
	}

	sess, err := h.sessions.Create(ctx)
	if err != nil {
		if !writeSessionError(ctx, w, err) {
			httpx.WriteError(ctx, w, httpx.NewError("session_error", "failed to create session", http.StatusInternalServerError))
		}
		return
	}

	writeJSONResponse(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID(),
		ExpiresAt: sess.ExpiresAt(),
	})
}

func (h *SessionHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("session_unavailable", "session service is unavailable", http.StatusServiceUnavailable))
		return
	}

	id := sessionIDFromRequest(r)
	sess, err := h.sessions.Get(ctx, id)
	if err != nil {
		if !writeSessionError(ctx, w, err) {
			httpx.WriteError(ctx, w, httpx.NewError("session_error", "failed to load session", http.StatusInternalServerError))
		}
		return
	}

	view, err := h.carts.View(ctx, id)
	if err != nil {
		if !writeSessionError(ctx, w, err) {
			httpx.WriteError(ctx, w, httpx.NewError("session_error", "failed to load session", http.StatusInternalServerError))
		}
		return
	}
	selection, policy, err := h.payments.Current(ctx, id)
	if err != nil {
		if !writeSessionError(ctx, w, err) {
			httpx.WriteError(ctx, w, httpx.NewError("session_error", "failed to load session", http.StatusInternalServerError))
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, sessionSummaryResponse{
		SessionID:     sess.ID(),
		ExpiresAt:     sess.ExpiresAt(),
		AddressStatus: string(sess.AddressStatus()),
		GateOpen:      sess.GateOpen(),
		ActiveDialog:  string(sess.Dialogs().Active()),
		Cart:          buildCartPayload(view),
		Payment:       buildPaymentPayload(selection, policy),
	})
}
