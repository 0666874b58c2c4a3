package amqp

import (
	"encoding/json"
	"time"

	"masroofy/internal/core"
)

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

type Action string

// TransactionEventMessage mirrors one committed store mutation.
// Created and updated events carry the full record so the export
// worker needs no callback into the server's storage; deletes carry
// only the id.
type TransactionEventMessage struct {
	Action      Action            `json:"action"`
	ID          int64             `json:"id"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewTransactionEvent(action Action, tx core.Transaction) *TransactionEventMessage {
	return &TransactionEventMessage{
		Action:      action,
		ID:          tx.ID,
		Transaction: &tx,
		Timestamp:   time.Now(),
	}
}

func NewDeleteEvent(id int64) *TransactionEventMessage {
	return &TransactionEventMessage{
		Action:    ActionDeleted,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
