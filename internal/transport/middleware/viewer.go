package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/transport"
	"github.com/frahmantamala/expense-portal/pkg/logger"
)

// ViewerParser turns a session token into a viewer.
type ViewerParser interface {
	Parse(token string) (*auth.Viewer, error)
}

// Viewer decodes the session token from the cookie, or from a Bearer header,
// and stores the viewer in the request context. Requests without a valid
// token continue anonymously; screens decide what that means.
func Viewer(parser ViewerParser, cookieName string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := transport.ExtractTokenFromHeader(r)
			if token == "" {
				if c, err := r.Cookie(cookieName); err == nil {
					token = c.Value
				}
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			viewer, err := parser.Parse(token)
			if err != nil {
				log.Debug("ignoring session token", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.ContextWithViewer(r.Context(), viewer)
			ctx = logger.With(ctx, "viewer_id", viewer.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
