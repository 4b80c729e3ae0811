package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gasonil/storefront/internal/dialog"
	"github.com/gasonil/storefront/internal/platform/httpx"
	"github.com/gasonil/storefront/internal/services"
	"github.com/gasonil/storefront/internal/session"
)

// DialogHandlers exposes the per-session dialog endpoints. The coordinator
// keeps at most one dialog visible at a time.
type DialogHandlers struct {
	sessions services.SessionService
}

// NewDialogHandlers constructs handlers backed by the session service.
func NewDialogHandlers(sessions services.SessionService) *DialogHandlers {
	return &DialogHandlers{sessions: sessions}
}

// Routes wires the /dialogs endpoints onto the provided router.
func (h *DialogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/close", h.closeAll)
	r.Post("/{dialog}/open", h.open)
	r.Post("/{dialog}/close", h.close)
}

type dialogResponse struct {
	ActiveDialog string `json:"active_dialog"`
}

func (h *DialogHandlers) open(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(sess *session.Session, id dialog.ID) error {
		return sess.Dialogs().Open(id)
	})
}

func (h *DialogHandlers) close(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(sess *session.Session, id dialog.ID) error {
		return sess.Dialogs().Close(id)
	})
}

func (h *DialogHandlers) closeAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.sessions.Get(ctx, sessionIDFromRequest(r))
	if err != nil {
		if !writeSessionError(ctx, w, err) {
			httpx.WriteError(ctx, w, httpx.NewError("dialog_error", "failed to update dialogs", http.StatusInternalServerError))
		}
		return
	}

	sess.Dialogs().CloseAll()
	writeJSONResponse(w, http.StatusOK, dialogResponse{ActiveDialog: string(sess.Dialogs().Active())})
}

func (h *DialogHandlers) apply(w http.ResponseWriter, r *http.Request, op func(*session.Session, dialog.ID) error) {
	ctx := r.Context()

	id, err := dialog.Parse(strings.TrimSpace(chi.URLParam(r, "dialog")))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("unknown_dialog", "dialog must be cart, help or address_detail", http.StatusBadRequest))
		return
	}

	sess, err := h.sessions.Get(ctx, sessionIDFromRequest(r))
	if err != nil {
		if !writeSessionError(ctx, w, err) {
			httpx.WriteError(ctx, w, httpx.NewError("dialog_error", "failed to update dialogs", http.StatusInternalServerError))
		}
		return
	}

	if err := op(sess, id); err != nil {
		if errors.Is(err, dialog.ErrUnknownDialog) {
			httpx.WriteError(ctx, w, httpx.NewError("unknown_dialog", "dialog must be cart, help or address_detail", http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("dialog_error", "failed to update dialogs", http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, dialogResponse{ActiveDialog: string(sess.Dialogs().Active())})
}
