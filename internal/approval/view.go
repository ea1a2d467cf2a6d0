package approval

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/apiclient"
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
)

type ExpenseAPI interface {
	GetExpense(ctx context.Context, id string) (*expense.Expense, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	Decide(ctx context.Context, id string, decision expense.Decision, approverID string) (*expense.Expense, error)
}

// View is one mounted detail screen. Its fetch runs on a context owned by the
// view; once unmounted, late results change nothing.
type View struct {
	api        ExpenseAPI
	viewer     *auth.Viewer
	dispatcher notify.Dispatcher
	logger     *slog.Logger

	mu     sync.Mutex
	state  ViewState
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func NewView(api ExpenseAPI, viewer *auth.Viewer, dispatcher notify.Dispatcher, logger *slog.Logger) *View {
	closed := make(chan struct{})
	close(closed)
	return &View{
		api:        api,
		viewer:     viewer,
		dispatcher: dispatcher,
		logger:     logger,
		state:      ViewState{Phase: PhaseLoading},
		done:       closed,
	}
}

// Mount starts fetching the expense, then its submitter. Mounting again
// abandons the previous fetch.
func (v *View) Mount(ctx context.Context, id string) {
	fetchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen
	v.cancel = cancel
	v.done = done
	notes := v.apply(LoadStarted{})
	v.mu.Unlock()
	notify.DispatchAll(ctx, v.dispatcher, notes)

	go func() {
		defer close(done)
		v.settle(fetchCtx, gen, v.fetch(fetchCtx, id))
	}()
}

func (v *View) fetch(ctx context.Context, id string) Event {
	exp, err := v.api.GetExpense(ctx, id)
	if err != nil {
		v.logger.Warn("View: fetch expense failed", "expense_id", id, "error", err)
		return LoadFailed{Err: loadError(err, internal.ErrExpenseNotFound)}
	}

	submitter, err := v.api.GetUser(ctx, exp.UserID)
	if err != nil {
		v.logger.Warn("View: fetch submitter failed", "expense_id", id, "user_id", exp.UserID, "error", err)
		return LoadFailed{Err: loadError(err, internal.ErrUserNotFound)}
	}

	return Loaded{Expense: exp, Submitter: submitter}
}

// loadError maps an API 404 to notFound and any other failure to an
// upstream error, keeping the original as the cause.
func loadError(err error, notFound *internal.AppError) error {
	if errors.Is(err, apiclient.ErrNotFound) {
		return notFound.WithCause(err)
	}
	return internal.NewExternalError(MsgLoadFailed, err)
}

func (v *View) settle(ctx context.Context, gen uint64, event Event) {
	v.mu.Lock()
	if gen != v.gen || ctx.Err() != nil {
		v.mu.Unlock()
		v.logger.Debug("View: dropping result of abandoned fetch")
		return
	}
	notes := v.apply(event)
	v.mu.Unlock()
	notify.DispatchAll(ctx, v.dispatcher, notes)
}

// Unmount cancels the outstanding fetch. Results that still arrive are dropped.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// Wait blocks until the current fetch has settled or ctx is done.
func (v *View) Wait(ctx context.Context) error {
	v.mu.Lock()
	done := v.done
	v.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *View) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// CanTakeAction is recomputed from the current state on each call.
func (v *View) CanTakeAction() bool {
	return v.State().CanTakeAction(v.viewer)
}

// Act sends one decision. Only one decision per view is in flight at a time;
// on success the expense is replaced by the server's copy, on failure the
// state is left as it was.
func (v *View) Act(ctx context.Context, decision expense.Decision) (ViewState, error) {
	if _, ok := expense.ParseDecision(string(decision)); !ok {
		return v.State(), internal.ErrUnknownDecision
	}

	v.mu.Lock()
	switch {
	case !v.state.Ready():
		v.mu.Unlock()
		return v.State(), internal.ErrViewNotReady
	case v.state.Pending != "":
		v.mu.Unlock()
		return v.State(), internal.ErrActionInFlight
	case !CanTakeAction(v.viewer, v.state.Expense.Status):
		v.mu.Unlock()
		return v.State(), internal.ErrActionNotPermitted
	}
	gen := v.gen
	id := v.state.Expense.ID
	notes := v.apply(ActionStarted{Decision: decision})
	v.mu.Unlock()
	notify.DispatchAll(ctx, v.dispatcher, notes)

	updated, err := v.api.Decide(ctx, id, decision, v.viewer.ID)

	var event Event = ActionSucceeded{Decision: decision, Expense: updated}
	if err != nil {
		v.logger.Error("View: decision failed",
			"expense_id", id,
			"decision", decision,
			"approver_id", v.viewer.ID,
			"error", err)
		event = ActionFailed{Decision: decision, Err: err}
	} else {
		v.logger.Info("expense decided", "expense_id", id, "decision", decision, "approver_id", v.viewer.ID)
	}

	v.mu.Lock()
	if gen != v.gen {
		v.state.Pending = ""
		state := v.state
		v.mu.Unlock()
		return state, err
	}
	notes = v.apply(event)
	state := v.state
	v.mu.Unlock()
	notify.DispatchAll(ctx, v.dispatcher, notes)

	return state, err
}

// apply runs a transition; callers hold v.mu.
func (v *View) apply(event Event) []notify.Notification {
	var notes []notify.Notification
	v.state, notes = Transition(v.state, event)
	return notes
}
