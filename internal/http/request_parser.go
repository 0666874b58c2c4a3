package http

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"masroofy/internal/core"
	"masroofy/internal/store"
)

// transactionRequest is the JSON body of POST /api/transactions. The
// amount is a pointer so a missing field is distinguishable from zero.
type transactionRequest struct {
	Name     string   `json:"name"`
	Amount   *float64 `json:"amount"`
	Date     string   `json:"date"`
	Category string   `json:"category"`
	Type     string   `json:"type"`
	Notes    string   `json:"notes"`
}

// toInput validates the form fields the way the entry form does: all
// of name, amount, date, category and type are required.
func (r transactionRequest) toInput() (store.Input, error) {
	txType, err := core.ParseType(r.Type)
	if err != nil {
		return store.Input{}, err
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return store.Input{}, core.ErrEmptyName
	}
	if r.Amount == nil || *r.Amount < 0 {
		return store.Input{}, core.ErrNegativeAmount
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return store.Input{}, err
	}
	if strings.TrimSpace(r.Category) == "" {
		return store.Input{}, errors.New("category is required")
	}
	return store.Input{
		Name:     name,
		Amount:   *r.Amount,
		Date:     date,
		Category: r.Category,
		Type:     txType,
		Notes:    r.Notes,
	}, nil
}

// transactionPatch is the JSON body of PUT /api/transactions/{id}.
// Absent fields keep their current value.
type transactionPatch struct {
	Name     *string  `json:"name"`
	Amount   *float64 `json:"amount"`
	Date     *string  `json:"date"`
	Category *string  `json:"category"`
	Type     *string  `json:"type"`
	Notes    *string  `json:"notes"`
}

func (r transactionPatch) toPatch() (store.Patch, error) {
	var p store.Patch
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return store.Patch{}, core.ErrEmptyName
		}
		p.Name = &name
	}
	if r.Amount != nil {
		if *r.Amount < 0 {
			return store.Patch{}, core.ErrNegativeAmount
		}
		p.Amount = r.Amount
	}
	if r.Date != nil {
		date, err := core.ParseDate(*r.Date)
		if err != nil {
			return store.Patch{}, err
		}
		p.Date = &date
	}
	if r.Category != nil {
		if strings.TrimSpace(*r.Category) == "" {
			return store.Patch{}, errors.New("category is required")
		}
		p.Category = r.Category
	}
	if r.Type != nil {
		txType, err := core.ParseType(*r.Type)
		if err != nil {
			return store.Patch{}, err
		}
		p.Type = &txType
	}
	if r.Notes != nil {
		p.Notes = r.Notes
	}
	return p, nil
}

// parseFilter builds the list filter from query parameters. The date
// range is applied only when both bounds parse; a single bound is a
// client error rather than a silent no-op.
func parseFilter(q url.Values) (core.Filter, error) {
	f := core.Filter{
		Category: q.Get("category"),
		Search:   q.Get("q"),
	}

	start, end := q.Get("start"), q.Get("end")
	if start != "" {
		d, err := core.ParseDate(start)
		if err != nil {
			return core.Filter{}, errors.New("invalid start date, want YYYY-MM-DD")
		}
		f.Start = d
	}
	if end != "" {
		d, err := core.ParseDate(end)
		if err != nil {
			return core.Filter{}, errors.New("invalid end date, want YYYY-MM-DD")
		}
		f.End = d
	}
	return f, nil
}

// parseIDPath extracts the numeric id from /api/transactions/{id}.
func parseIDPath(path string) (int64, error) {
	raw := strings.TrimPrefix(path, "/api/transactions/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, errors.New("missing transaction id")
	}
	return strconv.ParseInt(raw, 10, 64)
}
