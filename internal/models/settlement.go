package models

import "fmt"

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
	SettlementCancelled SettlementStatus = "cancelled"
)

// ParseSettlementStatus converts a wire value to a SettlementStatus.
// An empty string means pending.
func ParseSettlementStatus(s string) (SettlementStatus, error) {
	switch SettlementStatus(s) {
	case "":
		return SettlementPending, nil
	case SettlementPending, SettlementCompleted, SettlementCancelled:
		return SettlementStatus(s), nil
	}
	return "", fmt.Errorf("unknown settlement status %q", s)
}

// CanTransitionTo reports whether a settlement may move from s to next.
// Pending settlements can complete or be cancelled; completed ones can only
// be cancelled; cancelled is final.
func (s SettlementStatus) CanTransitionTo(next SettlementStatus) bool {
	switch s {
	case SettlementPending:
		return next == SettlementCompleted || next == SettlementCancelled
	case SettlementCompleted:
		return next == SettlementCancelled
	}
	return false
}

// Settlement represents a payment between group members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromID is the member who paid (debtor settling up).
	FromID string

	// ToID is the member who received payment (creditor being paid).
	ToID string

	// Amount is the payment amount.
	Amount float64

	// Status is pending until the recipient confirms it.
	Status SettlementStatus

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// Note is an optional description for the settlement.
	Note string
}
