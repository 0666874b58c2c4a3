package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"masroofy/internal/core"
	"masroofy/internal/kv"
	"masroofy/internal/notify"
	"masroofy/internal/storage"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *storage.Ledger, *notify.Notifier) {
	t.Helper()
	ledger := storage.NewLedger(kv.NewMemoryStore())
	notifier := notify.New(time.Hour) // expiry is exercised in notify's own tests
	return New(context.Background(), ledger, notifier, opts...), ledger, notifier
}

func sampleInput() Input {
	return Input{
		Name:     "Groceries run",
		Amount:   42.5,
		Date:     core.NewDate(2026, 8, 20),
		Category: "Groceries",
		Type:     core.Expense,
		Notes:    "weekly",
	}
}

func TestAddAppendsAndPreservesFields(t *testing.T) {
	ctx := context.Background()
	s, ledger, notifier := newTestStore(t)

	before := len(s.List())
	tx, err := s.Add(ctx, sampleInput())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	list := s.List()
	if len(list) != before+1 {
		t.Fatalf("list grew by %d, want 1", len(list)-before)
	}
	got := list[len(list)-1]
	in := sampleInput()
	if got.Name != in.Name || got.Amount != in.Amount || got.Category != in.Category ||
		got.Type != in.Type || got.Notes != in.Notes || !got.Date.Equal(in.Date.Time) {
		t.Fatalf("input fields not preserved: %+v", got)
	}
	if got.ID == 0 || got.ID != tx.ID {
		t.Fatalf("expected a fresh assigned id, got %d / %d", got.ID, tx.ID)
	}

	// Write-through: the persisted blob equals the in-memory collection.
	persisted := ledger.Load(ctx)
	if len(persisted) != len(list) || persisted[0].ID != list[0].ID {
		t.Fatalf("persisted blob diverged from memory: %v vs %v", persisted, list)
	}

	n, visible := notifier.Current()
	if !visible || n.Message != notify.TransactionAdded || n.Kind != notify.Success {
		t.Fatalf("unexpected notification state: %+v visible=%v", n, visible)
	}
}

func TestAddAssignsUniqueIDsInSameMillisecond(t *testing.T) {
	ctx := context.Background()
	frozen := time.UnixMilli(1724000000000)
	s, _, _ := newTestStore(t, WithClock(func() time.Time { return frozen }))

	a, _ := s.Add(ctx, sampleInput())
	b, _ := s.Add(ctx, sampleInput())
	c, _ := s.Add(ctx, sampleInput())
	if a.ID == b.ID || b.ID == c.ID || a.ID == c.ID {
		t.Fatalf("ids must stay unique under a frozen clock: %d %d %d", a.ID, b.ID, c.ID)
	}
	if !(a.ID < b.ID && b.ID < c.ID) {
		t.Fatalf("ids should be monotonic: %d %d %d", a.ID, b.ID, c.ID)
	}
}

func TestEditMergesPatchShallowly(t *testing.T) {
	ctx := context.Background()
	s, _, notifier := newTestStore(t)
	tx, _ := s.Add(ctx, sampleInput())

	name := "X"
	if err := s.Edit(ctx, tx.ID, Patch{Name: &name}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	got := s.List()[0]
	if got.Name != "X" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	in := sampleInput()
	if got.ID != tx.ID || got.Amount != in.Amount || got.Category != in.Category ||
		got.Type != in.Type || got.Notes != in.Notes || !got.Date.Equal(in.Date.Time) {
		t.Fatalf("edit touched fields outside the patch: %+v", got)
	}

	n, visible := notifier.Current()
	if !visible || n.Message != notify.TransactionUpdated {
		t.Fatalf("unexpected notification after edit: %+v", n)
	}
}

func TestEditUnknownID(t *testing.T) {
	ctx := context.Background()
	s, _, notifier := newTestStore(t)
	tx, _ := s.Add(ctx, sampleInput())
	notifier.Clear()

	name := "X"
	err := s.Edit(ctx, tx.ID+999, Patch{Name: &name})
	if !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
	if got := s.List()[0]; got.Name != sampleInput().Name {
		t.Fatal("collection changed on a failed edit")
	}
	if _, visible := notifier.Current(); visible {
		t.Fatal("failed edit must not emit a notification")
	}
}

func TestDeleteRemovesByID(t *testing.T) {
	ctx := context.Background()
	s, ledger, notifier := newTestStore(t)
	keep, _ := s.Add(ctx, sampleInput())
	gone, _ := s.Add(ctx, sampleInput())

	if err := s.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list := s.List()
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Fatalf("unexpected collection after delete: %v", list)
	}
	for _, tx := range list {
		if tx.ID == gone.ID {
			t.Fatal("deleted id still present")
		}
	}
	if persisted := ledger.Load(ctx); len(persisted) != 1 {
		t.Fatalf("delete not written through: %v", persisted)
	}
	if n, visible := notifier.Current(); !visible || n.Message != notify.TransactionDeleted {
		t.Fatalf("unexpected notification after delete: %+v", n)
	}
}

func TestDeleteUnknownIDLeavesCollectionButNotifies(t *testing.T) {
	ctx := context.Background()
	s, _, notifier := newTestStore(t)
	tx, _ := s.Add(ctx, sampleInput())
	notifier.Clear()

	if err := s.Delete(ctx, tx.ID+999); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
	if len(s.List()) != 1 {
		t.Fatal("collection changed when deleting a missing id")
	}
	// Delete is idempotent: the banner shows regardless.
	if n, visible := notifier.Current(); !visible || n.Message != notify.TransactionDeleted {
		t.Fatalf("expected unconditional delete notification, got %+v", n)
	}
}

type failingKV struct{ kv.Store }

func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func TestMutationsSurfacePersistenceFailure(t *testing.T) {
	ctx := context.Background()
	ledger := storage.NewLedger(failingKV{kv.NewMemoryStore()})
	notifier := notify.New(time.Hour)
	s := New(ctx, ledger, notifier)

	_, err := s.Add(ctx, sampleInput())
	if !errors.Is(err, storage.ErrPersistence) {
		t.Fatalf("expected ErrPersistence from add, got %v", err)
	}
	if len(s.List()) != 0 {
		t.Fatal("failed save must not commit to memory")
	}
	if _, visible := notifier.Current(); visible {
		t.Fatal("failed mutation must not claim success")
	}
}

func TestOnChangeFiresAfterCommit(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	fired := 0
	s.OnChange(func() { fired++ })

	tx, _ := s.Add(ctx, sampleInput())
	name := "Y"
	_ = s.Edit(ctx, tx.ID, Patch{Name: &name})
	_ = s.Delete(ctx, tx.ID)
	if fired != 3 {
		t.Fatalf("change listener fired %d times, want 3", fired)
	}

	// A rejected edit is not a change.
	if err := s.Edit(ctx, 12345, Patch{Name: &name}); err == nil {
		t.Fatal("expected error")
	}
	if fired != 3 {
		t.Fatal("listener fired for a failed mutation")
	}
}

type recordingPublisher struct {
	created, updated, deleted int
}

func (r *recordingPublisher) TransactionCreated(context.Context, core.Transaction) error {
	r.created++
	return nil
}
func (r *recordingPublisher) TransactionUpdated(context.Context, core.Transaction) error {
	r.updated++
	return nil
}
func (r *recordingPublisher) TransactionDeleted(context.Context, int64) error {
	r.deleted++
	return nil
}

func TestEventsMirrorCommittedMutations(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s, _, _ := newTestStore(t, WithEventPublisher(pub))

	tx, _ := s.Add(ctx, sampleInput())
	name := "Z"
	_ = s.Edit(ctx, tx.ID, Patch{Name: &name})
	_ = s.Delete(ctx, tx.ID)
	_ = s.Delete(ctx, tx.ID) // nothing removed, no event

	if pub.created != 1 || pub.updated != 1 || pub.deleted != 1 {
		t.Fatalf("unexpected event counts: %+v", pub)
	}
}

func TestNewSeedsLastIDFromLoadedData(t *testing.T) {
	ctx := context.Background()
	ledger := storage.NewLedger(kv.NewMemoryStore())
	future := time.Now().Add(24 * time.Hour).UnixMilli()
	seed := []core.Transaction{{ID: future, Name: "imported", Type: core.Income, Date: core.NewDate(2026, 1, 1)}}
	if err := ledger.Save(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := New(ctx, ledger, notify.New(time.Hour))
	tx, _ := s.Add(ctx, sampleInput())
	if tx.ID <= future {
		t.Fatalf("new id %d must advance past the highest loaded id %d", tx.ID, future)
	}
}

func TestEveryRegisteredListenerFires(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	var first, second int
	s.OnChange(func() { first++ })
	s.OnChange(func() { second++ })

	_, _ = s.Add(ctx, sampleInput())
	if first != 1 || second != 1 {
		t.Fatalf("listeners fired %d/%d times, want 1/1", first, second)
	}
}

func TestWithLoggerRoutesStoreLogs(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ledger := storage.NewLedger(kv.NewMemoryStore())
	s := New(ctx, ledger, notify.New(time.Hour), WithLogger(logger))
	_, _ = s.Add(ctx, sampleInput())

	if !strings.Contains(buf.String(), "Transaction store loaded") {
		t.Fatalf("injected logger saw no store output: %s", buf.String())
	}
}
