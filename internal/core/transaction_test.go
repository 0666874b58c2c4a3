package core

import (
	"encoding/json"
	"testing"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"income", true},
		{"expense", true},
		{"transfer", false},
		{"", false},
		{"Income", false},
	}
	for _, tc := range cases {
		_, err := ParseType(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseType(%q): unexpected error %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseType(%q): expected error", tc.in)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-08-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2026 || int(d.Month()) != 8 || d.Day() != 15 {
		t.Fatalf("wrong date: %v", d)
	}

	for _, bad := range []string{"", "15/08/2026", "2026-13-01", "soon"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q): expected error", bad)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2026, 8, 15)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-08-15"` {
		t.Fatalf("unexpected encoding: %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}

func TestDateUnmarshalTolerant(t *testing.T) {
	// Malformed dates degrade to the zero Date instead of erroring so a
	// single bad record cannot poison a whole stored blob.
	for _, raw := range []string{`"not-a-date"`, `""`, `null`} {
		var d Date
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			t.Fatalf("unmarshal %s: unexpected error %v", raw, err)
		}
		if !d.IsZero() {
			t.Fatalf("unmarshal %s: expected zero date, got %v", raw, d)
		}
	}

	// Full timestamps are accepted too.
	var d Date
	if err := json.Unmarshal([]byte(`"2026-08-15T10:30:00Z"`), &d); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if d.IsZero() {
		t.Fatal("expected timestamp to parse")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Name:     "Rent",
		Amount:   850,
		Date:     NewDate(2026, 8, 1),
		Category: "Bills",
		Type:     Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"bad type", func(tx *Transaction) { tx.Type = "loan" }, ErrInvalidType},
		{"empty name", func(tx *Transaction) { tx.Name = "  " }, ErrEmptyName},
		{"negative amount", func(tx *Transaction) { tx.Amount = -1 }, ErrNegativeAmount},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		tx := good
		tc.mut(&tx)
		if err := tx.Validate(); err != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestSuggestedCategories(t *testing.T) {
	income := SuggestedCategories(Income)
	expense := SuggestedCategories(Expense)
	if len(income) != 5 || income[0] != "Salary" {
		t.Fatalf("unexpected income vocabulary: %v", income)
	}
	if len(expense) != 8 || expense[0] != "Groceries" {
		t.Fatalf("unexpected expense vocabulary: %v", expense)
	}
	if SuggestedCategories("other") != nil {
		t.Fatal("unknown type should have no suggestions")
	}

	// Returned slices are copies; mutating them must not leak back.
	income[0] = "Hacked"
	if SuggestedCategories(Income)[0] != "Salary" {
		t.Fatal("suggestion list was mutated through a returned slice")
	}
}
