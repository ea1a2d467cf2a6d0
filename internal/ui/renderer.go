package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
)

const (
	TemplateExpensesPage      = "expenses_page"
	TemplateExpenseFormPage   = "expense_form_page"
	TemplateExpenseForm       = "expense_form"
	TemplateExpenseDetailPage = "expense_detail_page"
	TemplateExpenseDetail     = "expense_detail"
	TemplateNotFound          = "expense_not_found"
	TemplateNotFoundPage      = "not_found_page"
)

// Renderer executes the embedded templates. Dates are shown in loc; amounts
// without a currency fall back to currency.
type Renderer struct {
	tpl      *template.Template
	loc      *time.Location
	currency string
}

func NewRenderer(loc *time.Location, currency string) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := &Renderer{loc: loc, currency: currency}

	tpl, err := template.New("ui").Funcs(r.funcs()).ParseFS(templatesFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.tpl = tpl
	return r, nil
}

// Render executes into a buffer first so a failing template never leaves a
// half-written response.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	buf := bytes.Buffer{}
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate":      r.formatDate,
		"formatTimestamp": r.formatTimestamp,
		"formatAmount":    r.formatAmount,
		"badgeClass":      BadgeClass,
		"historyClass":    HistoryClass,
		"initials":        user.Initials,
	}
}

func (r *Renderer) formatDate(t expense.EpochMillis) string {
	if t.IsZero() {
		return ""
	}
	return t.In(r.loc).Format("Jan 2, 2006")
}

func (r *Renderer) formatTimestamp(t expense.EpochMillis) string {
	if t.IsZero() {
		return ""
	}
	return t.In(r.loc).Format("Jan 2, 2006, 3:04 PM")
}

// formatAmount always shows two decimals followed by the currency code.
func (r *Renderer) formatAmount(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = r.currency
	}
	return amount.StringFixed(2) + " " + currency
}

// BadgeClass maps a status to its badge variant. Approved gets its own
// colouring on top of the default variant.
func BadgeClass(s expense.Status) string {
	switch s {
	case expense.StatusPending:
		return "badge badge-secondary"
	case expense.StatusApproved:
		return "badge badge-default badge-approved"
	case expense.StatusRejected:
		return "badge badge-destructive"
	}
	return "badge badge-outline"
}

func HistoryClass(s expense.Status) string {
	if s == expense.StatusApproved {
		return "history-status history-approved"
	}
	return "history-status history-rejected"
}
