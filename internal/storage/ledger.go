// Package storage adapts the key-value facility into the ledger the
// transaction store writes through: the whole collection serialized as
// one JSON blob under a single namespaced key.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"masroofy/internal/core"
	"masroofy/internal/kv"
)

// TransactionsKey is the fixed namespaced key the collection lives
// under. It matches the layout the browser build of Masroofy used, so
// an exported blob stays loadable.
const TransactionsKey = "masroofy_transactions"

// ErrPersistence marks a failed durable write. Callers surface it to
// the user as "change not saved"; it is never fatal.
var ErrPersistence = errors.New("persistence failure")

type Ledger struct {
	kv  kv.Store
	key string
}

func NewLedger(store kv.Store) *Ledger {
	return &Ledger{kv: store, key: TransactionsKey}
}

// Load reads the full collection. It fails soft: a missing key, an
// unreadable backend or an undecodable blob all yield the empty
// collection. Unknown fields inside records are ignored.
func (l *Ledger) Load(ctx context.Context) []core.Transaction {
	data, err := l.kv.Get(ctx, l.key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		slog.WarnContext(ctx, "Could not read stored transactions, starting empty",
			"key", l.key, "error", err)
		return nil
	}

	var txs []core.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		slog.WarnContext(ctx, "Stored transactions blob is corrupt, starting empty",
			"key", l.key, "error", err)
		return nil
	}
	return txs
}

// Save serializes the full collection and overwrites the stored blob.
// No deltas, no retries; the error is reported so the caller can tell
// the user the change was not durably saved.
func (l *Ledger) Save(ctx context.Context, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("%w: encode transactions: %v", ErrPersistence, err)
	}
	if err := l.kv.Set(ctx, l.key, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, l.key, err)
	}
	return nil
}
