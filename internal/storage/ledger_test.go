package storage

import (
	"context"
	"errors"
	"testing"

	"masroofy/internal/core"
	"masroofy/internal/kv"
)

func TestLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(kv.NewMemoryStore())

	txs := []core.Transaction{
		{ID: 1724000000000, Name: "Salary", Amount: 2500, Date: core.NewDate(2026, 8, 1), Category: "Salary", Type: core.Income},
		{ID: 1724000000001, Name: "Pizza", Amount: 18.5, Date: core.NewDate(2026, 8, 2), Category: "Food", Type: core.Expense, Notes: "friday"},
	}
	if err := ledger.Save(ctx, txs); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := ledger.Load(ctx)
	if len(got) != len(txs) {
		t.Fatalf("got %d transactions, want %d", len(got), len(txs))
	}
	for i := range txs {
		if got[i].ID != txs[i].ID || got[i].Name != txs[i].Name ||
			got[i].Amount != txs[i].Amount || got[i].Category != txs[i].Category ||
			got[i].Type != txs[i].Type || got[i].Notes != txs[i].Notes ||
			!got[i].Date.Equal(txs[i].Date.Time) {
			t.Fatalf("transaction %d mismatch:\n got %+v\nwant %+v", i, got[i], txs[i])
		}
	}
}

func TestLedgerRoundTripEmpty(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(kv.NewMemoryStore())
	if err := ledger.Save(ctx, nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	if got := ledger.Load(ctx); len(got) != 0 {
		t.Fatalf("expected empty collection, got %v", got)
	}
}

func TestLedgerLoadMissingKey(t *testing.T) {
	ledger := NewLedger(kv.NewMemoryStore())
	if got := ledger.Load(context.Background()); got != nil {
		t.Fatalf("missing blob must load as empty, got %v", got)
	}
}

func TestLedgerLoadCorruptBlob(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	if err := store.Set(ctx, TransactionsKey, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ledger := NewLedger(store)
	if got := ledger.Load(ctx); len(got) != 0 {
		t.Fatalf("corrupt blob must load as empty, got %v", got)
	}
}

func TestLedgerLoadIgnoresUnknownFields(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	blob := `[{"id":42,"name":"Bus","amount":2.4,"date":"2026-08-03","category":"Transportation","type":"expense","color":"#fff"}]`
	if err := store.Set(ctx, TransactionsKey, []byte(blob)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got := NewLedger(store).Load(ctx)
	if len(got) != 1 || got[0].ID != 42 || got[0].Name != "Bus" {
		t.Fatalf("unexpected load result: %v", got)
	}
}

type failingStore struct{ kv.Store }

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestLedgerSaveSurfacesPersistenceError(t *testing.T) {
	ledger := NewLedger(failingStore{kv.NewMemoryStore()})
	err := ledger.Save(context.Background(), []core.Transaction{{ID: 1}})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
