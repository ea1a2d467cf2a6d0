package approval

import (
	"fmt"

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/apiclient"
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
)

const MsgLoadFailed = "Failed to load expense details."

type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhaseReady    Phase = "ready"
	PhaseNotFound Phase = "not-found"
)

// ViewState is what the detail screen renders. Expense and Submitter are
// either both set (PhaseReady) or both nil.
type ViewState struct {
	Phase     Phase
	Expense   *expense.Expense
	Submitter *user.User
	// Pending is the decision currently being sent, empty when idle.
	Pending expense.Decision
	// Err is why the view landed in PhaseNotFound.
	Err error
}

func (s ViewState) Ready() bool {
	return s.Phase == PhaseReady && s.Expense != nil && s.Submitter != nil
}

// ActionsDisabled is true for both controls while any decision is in flight.
func (s ViewState) ActionsDisabled() bool {
	return s.Pending != ""
}

func (s ViewState) CanTakeAction(viewer *auth.Viewer) bool {
	return s.Ready() && CanTakeAction(viewer, s.Expense.Status)
}

type Event interface {
	isViewEvent()
}

type LoadStarted struct{}

type Loaded struct {
	Expense   *expense.Expense
	Submitter *user.User
}

type LoadFailed struct {
	Err error
}

type ActionStarted struct {
	Decision expense.Decision
}

type ActionSucceeded struct {
	Decision expense.Decision
	Expense  *expense.Expense
}

type ActionFailed struct {
	Decision expense.Decision
	Err      error
}

func (LoadStarted) isViewEvent()     {}
func (Loaded) isViewEvent()          {}
func (LoadFailed) isViewEvent()      {}
func (ActionStarted) isViewEvent()   {}
func (ActionSucceeded) isViewEvent() {}
func (ActionFailed) isViewEvent()    {}

// Transition is the detail screen's state machine. Notifications come back as
// values for the caller to dispatch.
func Transition(s ViewState, event Event) (ViewState, []notify.Notification) {
	switch e := event.(type) {
	case LoadStarted:
		return ViewState{Phase: PhaseLoading}, nil

	case Loaded:
		if e.Expense == nil {
			return ViewState{Phase: PhaseNotFound, Err: internal.ErrExpenseNotFound}, []notify.Notification{notify.Error(MsgLoadFailed)}
		}
		if e.Submitter == nil {
			return ViewState{Phase: PhaseNotFound, Err: internal.ErrUserNotFound}, []notify.Notification{notify.Error(MsgLoadFailed)}
		}
		return ViewState{Phase: PhaseReady, Expense: e.Expense, Submitter: e.Submitter}, nil

	case LoadFailed:
		return ViewState{Phase: PhaseNotFound, Err: e.Err}, []notify.Notification{notify.Error(MsgLoadFailed)}

	case ActionStarted:
		if !s.Ready() || s.Pending != "" {
			return s, nil
		}
		s.Pending = e.Decision
		return s, []notify.Notification{notify.Loading(fmt.Sprintf("Processing %s...", e.Decision))}

	case ActionSucceeded:
		if e.Expense == nil {
			return Transition(s, ActionFailed{Decision: e.Decision})
		}
		s.Pending = ""
		s.Expense = e.Expense
		return s, []notify.Notification{notify.Success(fmt.Sprintf("Expense %s successfully!", e.Decision.PastTense()))}

	case ActionFailed:
		s.Pending = ""
		return s, []notify.Notification{notify.Error(actionFailedMessage(e.Decision, e.Err))}
	}
	return s, nil
}

func actionFailedMessage(d expense.Decision, err error) string {
	msg := fmt.Sprintf("Failed to %s expense.", d)
	if text := apiclient.Message(err); text != "" {
		msg += " " + text
	}
	return msg
}
