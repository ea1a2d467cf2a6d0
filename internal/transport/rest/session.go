package rest

import (
	"net/http"
	"time"

	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/submission"
	"github.com/frahmantamala/expense-portal/internal/transport"
)

// SessionHandler stores an already issued viewer token as the session cookie.
// Issuing tokens, and checking who may get one, happens elsewhere.
type SessionHandler struct {
	*transport.BaseHandler
	issuer *auth.TokenIssuer
	cookie string
	secure bool
}

func NewSessionHandler(base *transport.BaseHandler, issuer *auth.TokenIssuer, cookie string, secure bool) *SessionHandler {
	return &SessionHandler{BaseHandler: base, issuer: issuer, cookie: cookie, secure: secure}
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	viewer, err := h.issuer.Parse(token)
	if err != nil {
		h.Logger.Warn("Start: rejected session token", "error", err)
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.issuer.TTL),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	h.Logger.Info("session started", "viewer_id", viewer.ID, "role", viewer.Role)
	http.Redirect(w, r, submission.ListPath, http.StatusSeeOther)
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, submission.ListPath, http.StatusSeeOther)
}
