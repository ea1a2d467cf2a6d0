package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
	"github.com/frahmantamala/expense-portal/internal/ui"
	"github.com/frahmantamala/expense-portal/pkg/logger"
)

const (
	headerHXRequest  = "HX-Request"
	headerHXTrigger  = "HX-Trigger"
	headerHXRedirect = "HX-Redirect"

	// NotificationEvent is the client-side event toasts listen for.
	NotificationEvent = "show-notification"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger   *slog.Logger
	Renderer *ui.Renderer
	Flash    *Flash
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger, renderer *ui.Renderer, flash *Flash) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg, Renderer: renderer, Flash: flash}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteHTML renders a template with the given status. A render failure is
// logged and answered with a bare 500.
func (h *BaseHandler) WriteHTML(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf strings.Builder
	if err := h.Renderer.Render(&buf, name, data); err != nil {
		h.Logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write([]byte(buf.String())); err != nil {
		h.Logger.Debug("failed to write HTML response", "error", err)
	}
}

// StatusFor maps an error to the status its screen should answer with.
func StatusFor(err error) int {
	if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(headerHXRequest) == "true"
}

type notificationTrigger struct {
	Items []notify.Notification `json:"items"`
}

// Notify attaches notifications to the response as an HX-Trigger event. It
// must run before the status is written. Loading notifications are skipped.
func (h *BaseHandler) Notify(w http.ResponseWriter, notes []notify.Notification) {
	settled := make([]notify.Notification, 0, len(notes))
	for _, n := range notes {
		if !n.Transient() {
			settled = append(settled, n)
		}
	}
	if len(settled) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]notificationTrigger{
		NotificationEvent: {Items: settled},
	})
	if err != nil {
		h.Logger.Error("failed to encode notifications", "error", err)
		return
	}
	w.Header().Set(headerHXTrigger, string(payload))
}

// Redirect navigates the browser: HX-Redirect for htmx requests, 303 otherwise.
func (h *BaseHandler) Redirect(w http.ResponseWriter, r *http.Request, to string) {
	if IsHTMX(r) {
		w.Header().Set(headerHXRedirect, to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
