package submission

import (
	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
)

// ListPath is where a successful submission navigates to.
const ListPath = "/expenses"

const (
	MsgViewerRequired = "You must be logged in to submit an expense."
	MsgSubmitting     = "Submitting expense..."
	MsgSubmitted      = "Expense submitted successfully!"
	MsgSubmitFailed   = "Failed to submit expense. Please try again."
)

type FormState struct {
	Values     FormValues
	Errors     FieldErrors
	Submitting bool
}

// Outcome is the effect of one transition: notifications to show, the path
// to navigate to on success and the error that kept the form open.
type Outcome struct {
	Notifications []notify.Notification
	NavigateTo    string
	Err           error
}

type Event interface {
	isFormEvent()
}

type ViewerMissing struct{}

type ValidationFailed struct {
	Errors FieldErrors
}

type SubmitRequested struct{}

type SubmitSucceeded struct {
	Expense *expense.Expense
}

type SubmitFailed struct {
	Err error
}

func (ViewerMissing) isFormEvent()    {}
func (ValidationFailed) isFormEvent() {}
func (SubmitRequested) isFormEvent()  {}
func (SubmitSucceeded) isFormEvent()  {}
func (SubmitFailed) isFormEvent()     {}

// Reduce is the form's transition function. It has no side effects; the
// caller dispatches the outcome.
func Reduce(state FormState, event Event) (FormState, Outcome) {
	switch e := event.(type) {
	case ViewerMissing:
		state.Submitting = false
		return state, Outcome{
			Notifications: []notify.Notification{notify.Error(MsgViewerRequired)},
			Err:           internal.ErrViewerRequired,
		}

	case ValidationFailed:
		state.Submitting = false
		state.Errors = e.Errors
		return state, Outcome{Err: internal.ErrFormInvalid}

	case SubmitRequested:
		if state.Submitting {
			return state, Outcome{}
		}
		state.Submitting = true
		state.Errors = FieldErrors{}
		return state, Outcome{Notifications: []notify.Notification{notify.Loading(MsgSubmitting)}}

	case SubmitSucceeded:
		return FormState{Errors: FieldErrors{}}, Outcome{
			Notifications: []notify.Notification{notify.Success(MsgSubmitted)},
			NavigateTo:    ListPath,
		}

	case SubmitFailed:
		state.Submitting = false
		return state, Outcome{
			Notifications: []notify.Notification{notify.Error(MsgSubmitFailed)},
			Err:           internal.NewExternalError(MsgSubmitFailed, e.Err),
		}
	}
	return state, Outcome{}
}
