package rest

import (
	"net/http"

	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/transport"
	"github.com/frahmantamala/expense-portal/internal/ui"
)

// PagesHandler serves the pages that belong to neither screen.
type PagesHandler struct {
	*transport.BaseHandler
}

func NewPagesHandler(base *transport.BaseHandler) *PagesHandler {
	return &PagesHandler{BaseHandler: base}
}

// Expenses is the navigation target after a submission; it shows whatever
// notifications were flashed on the way.
func (h *PagesHandler) Expenses(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())
	h.WriteHTML(w, http.StatusOK, ui.TemplateExpensesPage, ui.ExpensesPage{
		Layout: ui.Layout{
			Title:         "Expenses",
			Viewer:        viewer,
			Notifications: h.Flash.Pop(w, r),
		},
	})
}

func (h *PagesHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())
	h.WriteHTML(w, http.StatusNotFound, ui.TemplateNotFoundPage, ui.Layout{
		Title:  "Not Found",
		Viewer: viewer,
	})
}
