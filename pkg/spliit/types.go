// Package spliit provides a Spliit API client and types.
//
// Spliit exposes a tRPC API: queries are GET requests with the procedure input
// passed as an `input` query parameter, mutations are POST requests, and both
// wrap their payloads in a `json` envelope.
package spliit

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Split modes supported by Spliit expenses.
const (
	SplitModeEvenly       = "EVENLY"
	SplitModeByShares     = "BY_SHARES"
	SplitModeByPercentage = "BY_PERCENTAGE"
	SplitModeByAmount     = "BY_AMOUNT"
)

// Participant represents a group participant.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Group represents a Spliit group.
type Group struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency,omitempty"`
	Participants []Participant `json:"participants"`
}

// Category represents an expense category.
type Category struct {
	ID       int64  `json:"id"`
	Grouping string `json:"grouping"`
	Name     string `json:"name"`
}

// Path returns the category name in "Grouping/Name" form.
func (c Category) Path() string {
	grouping := c.Grouping
	if grouping == "" {
		grouping = "Uncategorized"
	}
	name := c.Name
	if name == "" {
		name = "General"
	}
	return grouping + "/" + name
}

// Share represents one participant's part of an expense. The meaning of
// Shares depends on the expense split mode: equal weights for EVENLY,
// relative weights for BY_SHARES, basis points for BY_PERCENTAGE and minor
// currency units for BY_AMOUNT.
type Share struct {
	Participant Participant `json:"participant"`
	Shares      int64       `json:"shares"`
}

// Expense represents an expense in a Spliit group. Amounts are unsigned
// decimals in major currency units.
type Expense struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Amount          decimal.Decimal `json:"amount"`
	PaidBy          Participant     `json:"paidBy"`
	PaidFor         []Share         `json:"paidFor"`
	SplitMode       string          `json:"splitMode"`
	IsReimbursement bool            `json:"isReimbursement"`
	ExpenseDate     string          `json:"expenseDate"`
	CreatedAt       time.Time       `json:"createdAt"`
	Category        *Category       `json:"category,omitempty"`
}

// DateString returns the expense date as YYYY-MM-DD, falling back to today
// when the date is absent or malformed.
func (e Expense) DateString() string {
	raw := strings.TrimSpace(e.ExpenseDate)
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.Format("2006-01-02")
		}
		if len(raw) >= 10 {
			if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return time.Now().Format("2006-01-02")
}

// CategoryID returns the expense category ID, 0 (General) when unset.
func (e Expense) CategoryID() int64 {
	if e.Category == nil {
		return 0
	}
	return e.Category.ID
}

// ShareInput is a participant share in an expense creation request.
type ShareInput struct {
	Participant string `json:"participant"`
	Shares      int64  `json:"shares"`
}

// ExpenseFormValues is the expense payload for groups.expenses.create.
type ExpenseFormValues struct {
	Title                       string          `json:"title"`
	Amount                      decimal.Decimal `json:"amount"`
	ExpenseDate                 string          `json:"expenseDate"`
	Category                    int64           `json:"category"`
	PaidBy                      string          `json:"paidBy"`
	PaidFor                     []ShareInput    `json:"paidFor"`
	SplitMode                   string          `json:"splitMode"`
	IsReimbursement             bool            `json:"isReimbursement"`
	SaveDefaultSplittingOptions bool            `json:"saveDefaultSplittingOptions"`
	Documents                   []string        `json:"documents"`
	RecurrenceRule              string          `json:"recurrenceRule"`
	Notes                       string          `json:"notes,omitempty"`
}
