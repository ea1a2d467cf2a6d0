package expense

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Category string

const (
	CategoryMeals          Category = "Meals"
	CategoryTravel         Category = "Travel"
	CategorySoftware       Category = "Software"
	CategoryOfficeSupplies Category = "Office Supplies"
	CategoryUtilities      Category = "Utilities"
	CategoryOther          Category = "Other"
)

// Categories is the fixed set offered by the submission form, in display order.
var Categories = []Category{
	CategoryMeals,
	CategoryTravel,
	CategorySoftware,
	CategoryOfficeSupplies,
	CategoryUtilities,
	CategoryOther,
}

// Decision is an approver's verdict on a pending expense.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), true
	}
	return "", false
}

// Outcome is the status an expense is expected to land in after the decision.
func (d Decision) Outcome() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// PastTense renders "approved" / "rejected" for notifications.
func (d Decision) PastTense() string {
	return string(d.Outcome())
}

// EpochMillis is a point in time carried on the wire as milliseconds since the epoch.
type EpochMillis struct {
	time.Time
}

func NewEpochMillis(t time.Time) EpochMillis {
	return EpochMillis{Time: t}
}

func FromMillis(ms int64) EpochMillis {
	return EpochMillis{Time: time.UnixMilli(ms).UTC()}
}

func (e EpochMillis) Millis() int64 {
	return e.Time.UnixMilli()
}

func (e EpochMillis) MarshalJSON() ([]byte, error) {
	if e.Time.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, e.Time.UnixMilli(), 10), nil
}

// UnmarshalJSON accepts epoch millis (integer or float) and, leniently, RFC 3339 strings.
func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		e.Time = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("epoch millis: %w", err)
		}
		e.Time = t
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("epoch millis: %w", err)
	}
	if ms, err := n.Int64(); err == nil {
		e.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("epoch millis: %w", err)
	}
	e.Time = time.UnixMilli(int64(f)).UTC()
	return nil
}

// amountJSON writes an amount as a bare JSON number, the way the expense API
// expects it. Decoding needs no help: decimal accepts quoted and unquoted input.
type amountJSON decimal.Decimal

func (a amountJSON) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

// HistoryEntry is one recorded decision. Produced by the API, read-only here.
type HistoryEntry struct {
	ApproverName string      `json:"approverName"`
	Status       Status      `json:"status"`
	Timestamp    EpochMillis `json:"timestamp"`
	Notes        string      `json:"notes,omitempty"`
}

type Expense struct {
	ID          string          `json:"id"`
	Merchant    string          `json:"merchant"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Date        EpochMillis     `json:"date"`
	Category    Category        `json:"category"`
	Description string          `json:"description,omitempty"`
	UserID      string          `json:"userId"`
	Status      Status          `json:"status"`
	History     []HistoryEntry  `json:"history"`
}

func (e Expense) MarshalJSON() ([]byte, error) {
	type plain Expense
	return json.Marshal(struct {
		plain
		Amount amountJSON `json:"amount"`
	}{plain(e), amountJSON(e.Amount)})
}

// CreateRequest is the body of POST /api/expenses.
type CreateRequest struct {
	Merchant    string          `json:"merchant"`
	Amount      decimal.Decimal `json:"amount"`
	Date        int64           `json:"date"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	UserID      string          `json:"userId"`
}

func (r CreateRequest) MarshalJSON() ([]byte, error) {
	type plain CreateRequest
	return json.Marshal(struct {
		plain
		Amount amountJSON `json:"amount"`
	}{plain(r), amountJSON(r.Amount)})
}

// DecisionRequest is the body of POST /api/expenses/{id}/approve|reject.
type DecisionRequest struct {
	ApproverID string `json:"approverId"`
}
