package rest

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-portal/api"
	"github.com/frahmantamala/expense-portal/internal/approval"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/submission"
	"github.com/frahmantamala/expense-portal/internal/transport"
	"github.com/frahmantamala/expense-portal/internal/transport/middleware"
	"github.com/frahmantamala/expense-portal/internal/transport/swagger"
	"github.com/frahmantamala/expense-portal/internal/ui"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Base       *transport.BaseHandler
	Pages      *PagesHandler
	Health     *HealthHandler
	Session    *SessionHandler
	Submission *submission.Handler
	Approval   *approval.Handler
}

// Session decodes the viewer on every page request.
type Session struct {
	Parser     middleware.ViewerParser
	CookieName string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, session Session, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)
	})

	static, err := fs.Sub(ui.StaticFS, "static")
	if err != nil {
		logger.Error("failed to mount static assets", "error", err)
	} else {
		router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	router.Group(func(pr chi.Router) {
		pr.Use(middleware.SecurityHeaders(middleware.DefaultHeadersConfig()))
		pr.Use(middleware.Viewer(session.Parser, session.CookieName, logger))

		pr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, submission.ListPath, http.StatusFound)
		})
		pr.Get("/session", h.Session.Start)
		pr.Post("/session/end", h.Session.End)

		pr.Get("/expenses", h.Pages.Expenses)
		pr.Get("/expenses/new", h.Submission.NewExpense)
		pr.Post("/expenses", h.Submission.CreateExpense)

		pr.Get("/expenses/{id}", h.Approval.ShowExpense)
		pr.Get("/ui/expenses/{id}", h.Approval.ExpenseFragment)

		pr.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireApprover(h.Base))
			ar.Post("/expenses/{id}/approve", h.Approval.Decide(expense.DecisionApprove))
			ar.Post("/expenses/{id}/reject", h.Approval.Decide(expense.DecisionReject))
		})
	})

	router.NotFound(h.Pages.NotFound)
}
