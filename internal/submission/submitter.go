package submission

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
)

type ExpenseCreator interface {
	CreateExpense(ctx context.Context, req expense.CreateRequest) (*expense.Expense, error)
}

// Submitter runs one submission: guard, validate, post, transition.
type Submitter struct {
	api    ExpenseCreator
	logger *slog.Logger
}

func NewSubmitter(api ExpenseCreator, logger *slog.Logger) *Submitter {
	return &Submitter{api: api, logger: logger}
}

// Submit dispatches every transition's notifications to d as they happen and
// returns the final form state with the last outcome. No request is sent
// without a viewer or while any field is invalid.
func (s *Submitter) Submit(ctx context.Context, viewer *auth.Viewer, values FormValues, d notify.Dispatcher) (FormState, Outcome) {
	state := FormState{Values: values, Errors: FieldErrors{}}

	step := func(e Event) Outcome {
		var out Outcome
		state, out = Reduce(state, e)
		notify.DispatchAll(ctx, d, out.Notifications)
		return out
	}

	if viewer == nil {
		return state, step(ViewerMissing{})
	}

	if errs := Validate(values); len(errs) > 0 {
		s.logger.Debug("Submit: validation failed", "fields", len(errs))
		return state, step(ValidationFailed{Errors: errs})
	}

	req, err := CreateRequest(values, viewer)
	if err != nil {
		return state, step(SubmitFailed{Err: err})
	}

	step(SubmitRequested{})

	created, err := s.api.CreateExpense(ctx, req)
	if err != nil {
		s.logger.Error("Submit: create expense failed",
			"error", err,
			"user_id", viewer.ID,
			"trace_id", internal.TraceIDFromContext(ctx))
		return state, step(SubmitFailed{Err: err})
	}

	s.logger.Info("expense submitted", "expense_id", created.ID, "user_id", viewer.ID)
	return state, step(SubmitSucceeded{Expense: created})
}
