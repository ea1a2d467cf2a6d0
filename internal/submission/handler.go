package submission

import (
	"net/http"

	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
	"github.com/frahmantamala/expense-portal/internal/transport"
	"github.com/frahmantamala/expense-portal/internal/ui"
)

type Handler struct {
	*transport.BaseHandler
	submitter *Submitter
	picker    DatePicker
	currency  string
	bus       notify.Dispatcher
}

func NewHandler(base *transport.BaseHandler, submitter *Submitter, picker DatePicker, currency string, bus notify.Dispatcher) *Handler {
	return &Handler{
		BaseHandler: base,
		submitter:   submitter,
		picker:      picker,
		currency:    currency,
		bus:         bus,
	}
}

// NewExpense renders the blank form with today's date preselected.
func (h *Handler) NewExpense(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())
	state := FormState{Values: DefaultValues(h.picker), Errors: FieldErrors{}}
	h.WriteHTML(w, http.StatusOK, ui.TemplateExpenseFormPage, h.formView(state, viewer, nil))
}

// CreateExpense handles the posted form. Success navigates to the list with
// the notification carried over; anything else re-renders the form with the
// user's values intact.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Logger.Warn("CreateExpense: unreadable form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	viewer, _ := auth.ViewerFromContext(r.Context())
	values := DecodeForm(r.PostForm, h.picker)

	rec := notify.NewRecorder()
	state, outcome := h.submitter.Submit(r.Context(), viewer, values, notify.Multi(rec, h.bus))

	if outcome.NavigateTo != "" {
		h.Flash.Set(w, rec.Settled())
		h.Redirect(w, r, outcome.NavigateTo)
		return
	}

	if transport.IsHTMX(r) {
		h.Notify(w, rec.All())
		h.WriteHTML(w, http.StatusOK, ui.TemplateExpenseForm, h.formView(state, viewer, nil))
		return
	}

	h.WriteHTML(w, transport.StatusFor(outcome.Err), ui.TemplateExpenseFormPage, h.formView(state, viewer, rec.Settled()))
}

func (h *Handler) formView(state FormState, viewer *auth.Viewer, notes []notify.Notification) ui.ExpenseForm {
	minDate, maxDate := h.picker.Bounds()
	return ui.ExpenseForm{
		Layout: ui.Layout{
			Title:         "Submit an Expense",
			Viewer:        viewer,
			Notifications: notes,
		},
		Merchant:    state.Values.Merchant,
		Amount:      state.Values.Amount,
		Date:        state.Values.DateInput(),
		Category:    state.Values.Category,
		Description: state.Values.Description,
		Errors:      map[string]string(state.Errors),
		Categories:  expense.Categories,
		MinDate:     minDate,
		MaxDate:     maxDate,
		Currency:    h.currency,
		Submitting:  state.Submitting,
	}
}
