package approval

import (
	"errors"
	"net/http"

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
	"github.com/frahmantamala/expense-portal/internal/transport"
	"github.com/frahmantamala/expense-portal/internal/ui"
	"github.com/go-chi/chi"
)

const MsgNotFound = "Expense not found."

type Handler struct {
	*transport.BaseHandler
	api ExpenseAPI
	bus notify.Dispatcher
}

func NewHandler(base *transport.BaseHandler, api ExpenseAPI, bus notify.Dispatcher) *Handler {
	return &Handler{BaseHandler: base, api: api, bus: bus}
}

// ShowExpense renders the page shell with skeletons; the body loads the
// detail fragment once the page is up.
func (h *Handler) ShowExpense(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())
	h.WriteHTML(w, http.StatusOK, ui.TemplateExpenseDetailPage, ui.ExpenseDetailPage{
		Layout: ui.Layout{
			Title:         "Expense Details",
			Viewer:        viewer,
			Notifications: h.Flash.Pop(w, r),
		},
		ID: chi.URLParam(r, "id"),
	})
}

// ExpenseFragment mounts a view for the request's lifetime and renders
// whatever it settles on.
func (h *Handler) ExpenseFragment(w http.ResponseWriter, r *http.Request) {
	view, rec, ok := h.mount(w, r)
	if !ok {
		return
	}
	defer view.Unmount()

	h.render(w, r, view, rec)
}

// Decide returns the handler for one of the approve/reject routes.
func (h *Handler) Decide(decision expense.Decision) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, rec, ok := h.mount(w, r)
		if !ok {
			return
		}
		defer view.Unmount()

		if view.State().Ready() {
			if _, err := view.Act(r.Context(), decision); err != nil {
				h.refused(r, rec, err)
			}
		}

		if !transport.IsHTMX(r) && view.State().Ready() {
			h.Flash.Set(w, rec.Settled())
			h.Redirect(w, r, "/expenses/"+chi.URLParam(r, "id"))
			return
		}
		h.render(w, r, view, rec)
	}
}

func (h *Handler) mount(w http.ResponseWriter, r *http.Request) (*View, *notify.Recorder, bool) {
	viewer, _ := auth.ViewerFromContext(r.Context())
	rec := notify.NewRecorder()
	view := NewView(h.api, viewer, notify.Multi(rec, h.bus), h.Logger)

	view.Mount(r.Context(), chi.URLParam(r, "id"))
	if err := view.Wait(r.Context()); err != nil {
		view.Unmount()
		h.Logger.Debug("ExpenseFragment: client went away", "error", err)
		return nil, nil, false
	}
	return view, rec, true
}

// refused turns a guard error from Act into a toast. API failures already
// produced their own notification through the transition.
func (h *Handler) refused(r *http.Request, rec *notify.Recorder, err error) {
	var appErr *internal.AppError
	if !errors.As(err, &appErr) {
		return
	}
	switch {
	case errors.Is(err, internal.ErrActionNotPermitted),
		errors.Is(err, internal.ErrActionInFlight),
		errors.Is(err, internal.ErrViewNotReady),
		errors.Is(err, internal.ErrUnknownDecision):
		rec.Dispatch(r.Context(), notify.Error(appErr.Message))
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, view *View, rec *notify.Recorder) {
	state := view.State()
	htmx := transport.IsHTMX(r)
	h.Notify(w, rec.All())

	if !state.Ready() {
		status := http.StatusNotFound
		switch {
		case htmx:
			status = http.StatusOK
		case state.Err != nil:
			status = transport.StatusFor(state.Err)
		}
		h.WriteHTML(w, status, ui.TemplateNotFound, ui.NotFound{Message: MsgNotFound})
		return
	}

	h.WriteHTML(w, http.StatusOK, ui.TemplateExpenseDetail, ui.ExpenseDetail{
		Expense:         state.Expense,
		Submitter:       state.Submitter,
		CanTakeAction:   view.CanTakeAction(),
		ActionsDisabled: state.ActionsDisabled(),
	})
}
