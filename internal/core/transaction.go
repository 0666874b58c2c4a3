package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

// ISODate is the wire format for transaction dates (no time component).
const ISODate = "2006-01-02"

type (
	// Type distinguishes money coming in from money going out.
	// There is no third state.
	Type string

	// Date is a calendar date. The zero value marks a date that could not
	// be parsed; it never matches a month/year window or a bounded range.
	Date struct {
		time.Time
	}

	// Transaction is a single recorded income or expense event.
	// Amount is a magnitude; its sign is derived from Type and is never
	// stored negative. Category is free text; the suggested vocabulary is
	// advisory only.
	Transaction struct {
		ID       int64   `json:"id"`
		Name     string  `json:"name"`
		Amount   float64 `json:"amount"`
		Date     Date    `json:"date"`
		Category string  `json:"category"`
		Type     Type    `json:"type"`
		Notes    string  `json:"notes,omitempty"`
	}
)

var (
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrEmptyName           = errors.New("empty transaction name")
	ErrNegativeAmount      = errors.New("negative amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidWindow       = errors.New("invalid time window")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ParseType validates a raw type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Income, Expense:
		return Type(s), nil
	default:
		return "", ErrInvalidType
	}
}

// IsValid reports whether t is one of the two known types.
func (t Type) IsValid() bool {
	return t == Income || t == Expense
}

// ParseDate parses an ISO-8601 calendar date (yyyy-mm-dd).
func ParseDate(s string) (Date, error) {
	ts, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: ts}, nil
}

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON encodes the date as a quoted yyyy-mm-dd string.
// The zero date encodes as an empty string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(ISODate) + `"`), nil
}

// UnmarshalJSON is deliberately tolerant: a malformed date inside a
// stored blob degrades to the zero Date instead of failing the whole
// load. It accepts plain dates and full timestamps.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{ISODate, time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			d.Time = ts
			return nil
		}
	}
	d.Time = time.Time{}
	return nil
}

// Validate checks the fields the form layer must guarantee before a
// transaction reaches the store. The store itself does not validate.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Amount < 0 {
		return ErrNegativeAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

var (
	incomeCategories  = []string{"Salary", "Freelance", "Investments", "Gifts", "Other"}
	expenseCategories = []string{"Groceries", "Transportation", "Entertainment", "Bills", "Food", "Shopping", "Healthcare", "Other"}
)

// SuggestedCategories returns the recommended category vocabulary for a
// transaction type. The list is a UI suggestion, not a constraint.
func SuggestedCategories(t Type) []string {
	switch t {
	case Income:
		return append([]string(nil), incomeCategories...)
	case Expense:
		return append([]string(nil), expenseCategories...)
	default:
		return nil
	}
}
