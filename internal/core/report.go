// Package core holds the transaction domain model and the derived-view
// computations shared by the list, dashboard and reporting endpoints.
//
// Everything in this file is a pure function over a transaction
// snapshot; nothing here mutates the collection.
package core

import "strings"

const (
	WindowThisMonth Window = "month"
	WindowThisYear  Window = "year"
	WindowAllTime   Window = "all"
)

type (
	// Window is a named date-range filter applied relative to a
	// reference instant ("now").
	Window string

	// Totals aggregates amounts over a snapshot.
	Totals struct {
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
		Balance  float64 `json:"balance"`
	}

	// Filter is the conjunction of the list view's criteria. Unset
	// fields match everything; the date range only applies when both
	// bounds are set.
	Filter struct {
		Category string
		Start    Date
		End      Date
		Search   string
	}

	// CategoryTotal is one label/value pair for charting.
	CategoryTotal struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
	}
)

// ParseWindow validates a raw window selector.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowThisMonth, WindowThisYear, WindowAllTime:
		return Window(s), nil
	default:
		return "", ErrInvalidWindow
	}
}

// Contains reports whether d falls inside the window relative to now.
// All-time is the identity filter and also admits unparseable dates;
// the calendar windows never match them.
func (w Window) Contains(now Date, d Date) bool {
	switch w {
	case WindowThisMonth:
		return !d.IsZero() && d.Year() == now.Year() && d.Month() == now.Month()
	case WindowThisYear:
		return !d.IsZero() && d.Year() == now.Year()
	default:
		return true
	}
}

// Summarize computes income, expense and balance totals over a
// snapshot. An empty snapshot yields zero for all three.
func Summarize(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			t.Income += tx.Amount
		case Expense:
			t.Expenses += tx.Amount
		}
	}
	t.Balance = t.Income - t.Expenses
	return t
}

// SavingsRate returns (income - expenses) / income * 100. When income
// is zero the result is not finite (NaN or -Inf); callers must decide
// how to display that, it is never a valid percentage.
func (t Totals) SavingsRate() float64 {
	return (t.Income - t.Expenses) / t.Income * 100
}

// FilterByWindow retains the transactions whose date falls within the
// window relative to now.
func FilterByWindow(txs []Transaction, w Window, now Date) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if w.Contains(now, tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// Matches reports whether t satisfies every set criterion: exact
// category, inclusive date range (both bounds required), and
// case-insensitive substring match on the name.
func (f Filter) Matches(t Transaction) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if !f.Start.IsZero() && !f.End.IsZero() {
		if t.Date.IsZero() || t.Date.Before(f.Start.Time) || t.Date.After(f.End.Time) {
			return false
		}
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// ApplyFilter returns the transactions matching all of f's criteria,
// preserving insertion order.
func ApplyFilter(txs []Transaction, f Filter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// ExpensesByCategory sums expense amounts grouped by category. The
// result keeps the insertion order of each category's first occurrence,
// which keeps chart colors stable across refreshes. Callers apply the
// time window before calling.
func ExpensesByCategory(txs []Transaction) []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			index[tx.Category] = len(out)
			out = append(out, CategoryTotal{Category: tx.Category})
			i = len(out) - 1
		}
		out[i].Total += tx.Amount
	}
	return out
}

// Categories returns the distinct categories present in the snapshot,
// in first-seen order. Feeds the list view's filter dropdown.
func Categories(txs []Transaction) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tx := range txs {
		if _, ok := seen[tx.Category]; ok {
			continue
		}
		seen[tx.Category] = struct{}{}
		out = append(out, tx.Category)
	}
	return out
}
