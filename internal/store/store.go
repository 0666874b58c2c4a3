// Package store owns the canonical in-memory transaction collection.
// Every mutation is written through the ledger before it is committed,
// so a persisted blob always equals a full serialization of the
// in-memory state a reader can observe.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"masroofy/internal/core"
	"masroofy/internal/notify"
	"masroofy/internal/storage"
)

type (
	// Input carries the fields of a new transaction. The form layer
	// guarantees they are present and well-typed before Add is called;
	// the store does not validate.
	Input struct {
		Name     string
		Amount   float64
		Date     core.Date
		Category string
		Type     core.Type
		Notes    string
	}

	// Patch updates a subset of fields on Edit. Nil fields keep their
	// current value; the id itself is immutable.
	Patch struct {
		Name     *string
		Amount   *float64
		Date     *core.Date
		Category *string
		Type     *core.Type
		Notes    *string
	}

	// EventPublisher mirrors committed mutations to an external
	// consumer, e.g. the AMQP exchange the export worker reads.
	// Publish failures never fail the mutation.
	EventPublisher interface {
		TransactionCreated(ctx context.Context, tx core.Transaction) error
		TransactionUpdated(ctx context.Context, tx core.Transaction) error
		TransactionDeleted(ctx context.Context, id int64) error
	}

	// Store is constructed once at startup and passed by handle to
	// every consumer. There is no package-level instance.
	Store struct {
		mu       sync.Mutex
		ledger   *storage.Ledger
		notifier *notify.Notifier
		events   EventPublisher
		logger   *slog.Logger
		now      func() time.Time
		txs      []core.Transaction
		lastID   int64

		listenerMu sync.Mutex
		listeners  []func()
	}

	Option func(*Store)
)

// WithEventPublisher attaches a mutation event publisher.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Store) { s.events = p }
}

// WithClock overrides the id clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger scopes the store's log output; defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New loads the persisted collection and returns a ready store. A
// missing or corrupt blob starts the store empty; that is never fatal.
func New(ctx context.Context, ledger *storage.Ledger, notifier *notify.Notifier, opts ...Option) *Store {
	s := &Store{
		ledger:   ledger,
		notifier: notifier,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.txs = ledger.Load(ctx)
	for _, tx := range s.txs {
		if tx.ID > s.lastID {
			s.lastID = tx.ID
		}
	}
	s.logger.InfoContext(ctx, "Transaction store loaded", "transactions", len(s.txs))
	return s
}

// OnChange registers a listener fired after every committed mutation,
// outside the store lock. Used by the HTTP layer to invalidate its
// report cache.
func (s *Store) OnChange(fn func()) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// List returns a snapshot copy of the collection in insertion order.
func (s *Store) List() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...)
}

// Add assigns a fresh id, appends the transaction, persists the full
// collection and emits the success notification. On a persistence
// failure nothing is committed and the error carries
// storage.ErrPersistence.
func (s *Store) Add(ctx context.Context, in Input) (core.Transaction, error) {
	s.mu.Lock()
	tx := core.Transaction{
		ID:       s.nextID(),
		Name:     in.Name,
		Amount:   in.Amount,
		Date:     in.Date,
		Category: in.Category,
		Type:     in.Type,
		Notes:    in.Notes,
	}
	next := append(append([]core.Transaction(nil), s.txs...), tx)
	if err := s.ledger.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.txs = next
	s.lastID = tx.ID
	s.mu.Unlock()

	s.notifier.PublishSuccess(notify.TransactionAdded)
	s.emit(ctx, "created", func(p EventPublisher) error { return p.TransactionCreated(ctx, tx) })
	s.fireChange()
	return tx, nil
}

// Edit merges the set patch fields over the matching transaction and
// persists. An unknown id returns core.ErrTransactionNotFound without
// touching the collection or the notification channel.
func (s *Store) Edit(ctx context.Context, id int64, patch Patch) error {
	s.mu.Lock()
	idx := -1
	for i := range s.txs {
		if s.txs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("edit transaction %d: %w", id, core.ErrTransactionNotFound)
	}

	next := append([]core.Transaction(nil), s.txs...)
	merged := next[idx]
	patch.apply(&merged)
	next[idx] = merged
	if err := s.ledger.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("edit transaction %d: %w", id, err)
	}
	s.txs = next
	s.mu.Unlock()

	s.notifier.PublishSuccess(notify.TransactionUpdated)
	s.emit(ctx, "updated", func(p EventPublisher) error { return p.TransactionUpdated(ctx, merged) })
	s.fireChange()
	return nil
}

// Delete removes every transaction matching id (filter-out semantics)
// and persists. The success notification is emitted even when nothing
// matched; delete is idempotent from the user's point of view.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	next := make([]core.Transaction, 0, len(s.txs))
	removed := 0
	for _, tx := range s.txs {
		if tx.ID == id {
			removed++
			continue
		}
		next = append(next, tx)
	}
	if err := s.ledger.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.txs = next
	s.mu.Unlock()

	s.notifier.PublishSuccess(notify.TransactionDeleted)
	if removed > 0 {
		s.emit(ctx, "deleted", func(p EventPublisher) error { return p.TransactionDeleted(ctx, id) })
	}
	s.fireChange()
	return nil
}

// nextID returns a creation-time millisecond timestamp, bumped past
// the last issued id when two mutations land in the same millisecond.
// Caller holds s.mu.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}

func (s *Store) emit(ctx context.Context, action string, publish func(EventPublisher) error) {
	if s.events == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping", "action", action)
		return
	}
	if err := publish(s.events); err != nil {
		// The mutation is already durable; a lost event only delays the
		// external mirror.
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action, "error", err)
	}
}

func (s *Store) fireChange() {
	s.listenerMu.Lock()
	listeners := append(make([]func(), 0, len(s.listeners)), s.listeners...)
	s.listenerMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (p Patch) apply(tx *core.Transaction) {
	if p.Name != nil {
		tx.Name = *p.Name
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Notes != nil {
		tx.Notes = *p.Notes
	}
}
