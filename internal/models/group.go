package models

// Group is a shared ledger between members.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// CreatedBy is the ID of the user who created the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a participant in a group's ledger.
// Members are referenced by ID from transactions and settlements; their
// identity never changes once created.
type Member struct {
	ID      string
	GroupID string

	// DisplayName is how the member is shown in balances and suggestions.
	DisplayName string

	// IsActive is false for members who left the group. Inactive members
	// keep their history and still take part in netting.
	IsActive bool

	// UserID links the member to a registered account. Empty for members
	// who do not have one.
	UserID string

	CreatedAt int64
}
