package submission

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/common/validation"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

const (
	MsgMerchantTooShort = "Merchant name must be at least 2 characters."
	MsgAmountInvalid    = "Amount must be a positive number."
	MsgDateRequired     = "A date is required."
	MsgDateInvalid      = "That's not a valid date."
	MsgCategoryRequired = "Please select a category."

	MerchantMinLength    = 2
	DescriptionMaxLength = 500
)

// FormValues is what the user typed. Amount stays a string until validation
// has accepted it; Date only ever holds a day the picker accepted.
type FormValues struct {
	Merchant    string
	Amount      string
	Date        time.Time
	Category    string
	Description string

	dateErr error
}

// FieldErrors maps a form field name to its single message.
type FieldErrors map[string]string

func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// DefaultValues is the blank form: every field empty, date set to today.
func DefaultValues(picker DatePicker) FormValues {
	return FormValues{Date: picker.Today()}
}

// DecodeForm reads a posted form. The date goes through the picker; a day it
// refuses is dropped and remembered only as the reason.
func DecodeForm(form url.Values, picker DatePicker) FormValues {
	values := FormValues{
		Merchant:    strings.TrimSpace(form.Get("merchant")),
		Amount:      strings.TrimSpace(form.Get("amount")),
		Category:    form.Get("category"),
		Description: strings.TrimSpace(form.Get("description")),
	}
	values.Date, values.dateErr = picker.Select(form.Get("date"))
	return values
}

// DateInput renders the date for an <input type="date">.
func (v FormValues) DateInput() string {
	if v.Date.IsZero() {
		return ""
	}
	return v.Date.Format(DateLayout)
}

// Validate checks every field and returns one message per failing field.
// An empty result means the form may be submitted.
func Validate(values FormValues) FieldErrors {
	categories := make([]string, len(expense.Categories))
	for i, c := range expense.Categories {
		categories[i] = string(c)
	}

	v := validation.NewValidator()
	v.Field("merchant", values.Merchant).
		MinLength(MerchantMinLength, MsgMerchantTooShort, internal.ErrCodeInvalidMerchant)
	v.Field("amount", values.Amount).
		Positive(MsgAmountInvalid, internal.ErrCodeInvalidAmount)
	v.Field("date", values.Date).
		Custom(pickerRule(values.dateErr)).
		Required(MsgDateRequired, internal.ErrCodeDateRequired)
	v.Field("category", values.Category).
		OneOf(categories, MsgCategoryRequired, internal.ErrCodeInvalidCategory)
	v.Field("description", values.Description).
		MaxLength(DescriptionMaxLength, "", internal.ErrCodeValidationFailed)

	appErr := v.Validate()
	if appErr == nil {
		return FieldErrors{}
	}
	details, ok := appErr.Details.(internal.ValidationErrors)
	if !ok {
		return FieldErrors{}
	}
	return FieldErrors(details.FieldMessages())
}

// pickerRule reports why the picker refused the typed day. It runs before
// Required so a refused day is not mistaken for an empty field.
func pickerRule(selectErr error) validation.ValidatorFunc {
	return func(interface{}) *internal.AppError {
		switch {
		case errors.Is(selectErr, ErrDateNotSelectable):
			return internal.NewValidationFieldError("date", MsgDateInvalid, internal.ErrCodeDateOutOfRange)
		case errors.Is(selectErr, ErrDateInvalid):
			return internal.NewValidationFieldError("date", MsgDateInvalid, internal.ErrCodeInvalidDate)
		}
		return nil
	}
}

// CreateRequest builds the API body from validated values. The date becomes
// epoch milliseconds of the day's midnight, the viewer becomes the owner.
func CreateRequest(values FormValues, viewer *auth.Viewer) (expense.CreateRequest, error) {
	amount, err := decimal.NewFromString(values.Amount)
	if err != nil {
		return expense.CreateRequest{}, internal.NewValidationFieldError("amount", MsgAmountInvalid, internal.ErrCodeInvalidAmount)
	}
	if viewer == nil {
		return expense.CreateRequest{}, internal.ErrViewerRequired
	}
	return expense.CreateRequest{
		Merchant:    values.Merchant,
		Amount:      amount,
		Date:        values.Date.UnixMilli(),
		Category:    expense.Category(values.Category),
		Description: values.Description,
		UserID:      viewer.ID,
	}, nil
}
