package models

// Transaction is a shared expense paid by one member and split across members.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// GroupID is the group whose ledger holds this transaction.
	GroupID string

	// Description is the human-readable label (e.g., "Groceries").
	Description string

	// PayerID is the member who paid the full amount.
	PayerID string

	// TotalAmount is the amount paid, including tax and tip.
	TotalAmount float64

	// Splits attribute the total to members. They are expected to sum to
	// TotalAmount; a split for the payer is their own share.
	Splits []Split

	// CreatedBy is the user who recorded the transaction.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64
}

// Split is the monetary share of a transaction attributed to one member.
type Split struct {
	MemberID string
	Amount   float64
}
