package approval_test

import (
	"context"
	"sync"

	"github.com/frahmantamala/expense-portal/internal/apiclient"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
)

type decideCall struct {
	ID         string
	Decision   expense.Decision
	ApproverID string
}

// fakeAPI serves one expense and one user. A held call blocks until its gate
// channel is closed. Each decision appends one history entry, like the API.
type fakeAPI struct {
	mu sync.Mutex

	expense *expense.Expense
	user    *user.User

	expenseErr error
	userErr    error
	decideErr  error

	expenseGates map[string]chan struct{}
	decideGate   chan struct{}

	userCalls int
	decisions []decideCall
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		expense: pendingExpense(),
		user:    &user.User{ID: "u1", Name: "Ana Employee", Role: user.RoleEmployee},
	}
}

func pendingExpense() *expense.Expense {
	return &expense.Expense{
		ID:       "e1",
		Merchant: "Cloudflare Cafe",
		Amount:   decimal.RequireFromString("25.50"),
		Currency: "USD",
		Date:     expense.FromMillis(1709251200000),
		Category: expense.CategoryMeals,
		UserID:   "u1",
		Status:   expense.StatusPending,
	}
}

func (f *fakeAPI) GetExpense(_ context.Context, id string) (*expense.Expense, error) {
	f.mu.Lock()
	gate := f.expenseGates[id]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expenseErr != nil {
		return nil, f.expenseErr
	}
	if f.expense == nil || f.expense.ID != id {
		return nil, &apiclient.Error{StatusCode: 404, Message: "Expense not found", Method: "GET", Path: "/api/expenses/" + id}
	}
	cp := *f.expense
	return &cp, nil
}

// hold makes GetExpense for id block until the returned channel is closed.
func (f *fakeAPI) hold(id string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expenseGates == nil {
		f.expenseGates = map[string]chan struct{}{}
	}
	gate := make(chan struct{})
	f.expenseGates[id] = gate
	return gate
}

func (f *fakeAPI) GetUser(_ context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeAPI) Decide(_ context.Context, id string, decision expense.Decision, approverID string) (*expense.Expense, error) {
	f.mu.Lock()
	f.decisions = append(f.decisions, decideCall{ID: id, Decision: decision, ApproverID: approverID})
	gate := f.decideGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decideErr != nil {
		return nil, f.decideErr
	}
	cp := *f.expense
	cp.Status = decision.Outcome()
	cp.History = append(append([]expense.HistoryEntry(nil), cp.History...), expense.HistoryEntry{
		ApproverName: approverID,
		Status:       cp.Status,
		Timestamp:    expense.FromMillis(1709290800000),
	})
	f.expense = &cp
	out := cp
	return &out, nil
}

func (f *fakeAPI) Decisions() []decideCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]decideCall(nil), f.decisions...)
}

func (f *fakeAPI) UserCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userCalls
}
