// Package notify holds the transient status banner state: at most one
// visible notification that auto-expires unless a newer mutation
// replaces it first.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a banner stays visible without a replacement.
const DefaultTTL = 3 * time.Second

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Fixed messages emitted by the transaction store.
const (
	TransactionAdded   = "Transaction added successfully!"
	TransactionUpdated = "Transaction updated successfully!"
	TransactionDeleted = "Transaction deleted successfully!"
)

type Kind string

type Notification struct {
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
}

// Notifier is the single-slot notification channel. Publishing while a
// notification is visible replaces it and restarts the expiry timer;
// there is no queueing. A generation counter guards against a
// superseded timer clearing a newer message.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Notification
	timer   *time.Timer
	gen     uint64
}

func New(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{ttl: ttl}
}

// Publish makes a notification visible and schedules its expiry.
func (n *Notifier) Publish(kind Kind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.current = &Notification{Message: message, Kind: kind}
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
}

// PublishSuccess is the common case for store mutations.
func (n *Notifier) PublishSuccess(message string) {
	n.Publish(Success, message)
}

// Current returns the visible notification, if any.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Clear hides the notification and cancels the pending expiry.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.current = nil
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.gen {
		// A newer notification replaced this one; its own timer owns
		// the expiry now.
		return
	}
	n.current = nil
	n.timer = nil
}
