package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"finance/internal/core"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

func (t EventType) Valid() bool {
	return t == EventCreated || t == EventUpdated || t == EventDeleted
}

// TransactionEvent is a snapshot of a transaction at the moment it changed.
// Amounts travel as decimal strings.
type TransactionEvent struct {
	Type          EventType `json:"type"`
	UserID        int64     `json:"userId"`
	TransactionID int64     `json:"transactionId"`
	Kind          string    `json:"kind"`
	Amount        string    `json:"amount"`
	CategoryID    int64     `json:"categoryId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
	Description   string    `json:"description,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(t EventType, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Type:          t,
		UserID:        tx.UserID,
		TransactionID: tx.ID,
		Kind:          tx.Kind.String(),
		Amount:        tx.Amount.String(),
		CategoryID:    tx.CategoryID,
		OccurredAt:    tx.OccurredAt,
		Description:   tx.Description,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes and sanity-checks a message body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.TransactionID <= 0 || msg.UserID <= 0 {
		return nil, fmt.Errorf("event without transaction or user id")
	}
	return &msg, nil
}
