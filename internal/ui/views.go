package ui

import (
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
)

// Layout is shared by every full page.
type Layout struct {
	Title         string
	Viewer        *auth.Viewer
	Notifications []notify.Notification
}

type ExpensesPage struct {
	Layout
}

// ExpenseForm renders the submission form, either as a page or as the form
// fragment HTMX swaps after a failed submit.
type ExpenseForm struct {
	Layout
	Merchant    string
	Amount      string
	Date        string
	Category    string
	Description string
	Errors      map[string]string
	Categories  []expense.Category
	MinDate     string
	MaxDate     string
	Currency    string
	Submitting  bool
}

func (f ExpenseForm) Error(field string) string {
	return f.Errors[field]
}

type ExpenseDetailPage struct {
	Layout
	ID string
}

type ExpenseDetail struct {
	Expense         *expense.Expense
	Submitter       *user.User
	CanTakeAction   bool
	ActionsDisabled bool
}

type NotFound struct {
	Message string
}
