// Package events publishes ledger change notifications.
package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	TransactionCreated      = "transaction.created"
	TransactionDeleted      = "transaction.deleted"
	SettlementRecorded      = "settlement.recorded"
	SettlementStatusChanged = "settlement.status_changed"
)

// Event describes one write to a group ledger together with the member
// balances after the write.
type Event struct {
	Type       string          `json:"type"`
	GroupID    string          `json:"group_id"`
	SubjectID  string          `json:"subject_id"`
	ActorID    string          `json:"actor_id,omitempty"`
	Balances   []MemberBalance `json:"balances"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type MemberBalance struct {
	MemberID   string  `json:"member_id"`
	NetBalance float64 `json:"net_balance"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

func (e Event) toJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }
