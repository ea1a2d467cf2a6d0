package transport

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/expense-portal/internal/core/notify"
)

const DefaultFlashCookie = "expense_flash"

// Flash carries notifications across one redirect in a short-lived cookie,
// so a toast raised before navigating shows up on the destination page.
type Flash struct {
	Cookie string
	Secure bool
	logger *slog.Logger
}

func NewFlash(secure bool, logger *slog.Logger) *Flash {
	return &Flash{Cookie: DefaultFlashCookie, Secure: secure, logger: logger}
}

// Set stores the settled notifications; loading ones never survive a redirect.
func (f *Flash) Set(w http.ResponseWriter, notes []notify.Notification) {
	settled := make([]notify.Notification, 0, len(notes))
	for _, n := range notes {
		if !n.Transient() {
			settled = append(settled, n)
		}
	}
	if len(settled) == 0 {
		return
	}

	payload, err := json.Marshal(settled)
	if err != nil {
		f.logger.Error("failed to encode flash", "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     f.Cookie,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop reads and clears the flash. A missing or unreadable cookie yields nothing.
func (f *Flash) Pop(w http.ResponseWriter, r *http.Request) []notify.Notification {
	c, err := r.Cookie(f.Cookie)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     f.Cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		f.logger.Debug("discarding unreadable flash", "error", err)
		return nil
	}
	var notes []notify.Notification
	if err := json.Unmarshal(raw, &notes); err != nil {
		f.logger.Debug("discarding unreadable flash", "error", err)
		return nil
	}
	return notes
}
