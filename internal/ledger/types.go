// Package ledger nets shared-expense transactions and settlement payments
// into pairwise balances, per-member totals and settlement suggestions.
//
// Every function in this package is pure: inputs are read-only snapshots and
// each call builds fresh output tables. Callers own fetching inputs, caching
// results and resolving member ids to display names.
//
// The pipeline runs in four stages:
//
//	Build     transactions + settlements -> DebtTable
//	Simplify  DebtTable -> BalanceTable (one direction per pair, cents)
//	Aggregate members + BalanceTable -> []MemberBalance
//	Suggest   viewer + balances + BalanceTable -> []Suggestion
package ledger

import "sort"

// Member is a group member as seen by the netting engine.
type Member struct {
	ID          string
	DisplayName string
	IsActive    bool
}

// Split is the share of a transaction attributed to one member.
type Split struct {
	MemberID string
	Amount   float64
}

// Transaction is a shared expense paid by one member and split across members.
// The splits are expected to sum to TotalAmount; see ValidateTransaction.
type Transaction struct {
	ID          string
	PayerID     string
	Splits      []Split
	TotalAmount float64
}

// SettlementStatus is the lifecycle state of a settlement payment.
type SettlementStatus string

const (
	StatusPending   SettlementStatus = "pending"
	StatusCompleted SettlementStatus = "completed"
	StatusCancelled SettlementStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s SettlementStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Settlement is a payment from FromID to ToID that reduces what FromID owes.
type Settlement struct {
	ID     string
	FromID string // Who paid (debtor settling up)
	ToID   string // Who received (creditor being paid)
	Amount float64
	Status SettlementStatus
}

// Active reports whether the settlement takes part in netting.
// Only cancelled settlements are inactive.
func (s Settlement) Active() bool {
	return s.Status != StatusCancelled
}

// DebtTable holds raw pairwise debts: table[debtor][creditor] = amount.
// Amounts are unrounded and may be negative after settlements are applied.
type DebtTable map[string]map[string]float64

// Get returns table[debtor][creditor], or 0 when absent.
func (t DebtTable) Get(debtor, creditor string) float64 {
	return t[debtor][creditor]
}

func (t DebtTable) add(debtor, creditor string, amount float64) {
	row, ok := t[debtor]
	if !ok {
		row = make(map[string]float64)
		t[debtor] = row
	}
	row[creditor] += amount
}

// BalanceTable holds simplified debts: table[debtor][creditor] = amount.
// Amounts are positive and rounded to cents, and for any pair at most one
// direction is present.
type BalanceTable map[string]map[string]float64

// Get returns table[debtor][creditor], or 0 when absent.
func (t BalanceTable) Get(debtor, creditor string) float64 {
	return t[debtor][creditor]
}

func (t BalanceTable) set(debtor, creditor string, amount float64) {
	if amount == 0 {
		return
	}
	row, ok := t[debtor]
	if !ok {
		row = make(map[string]float64)
		t[debtor] = row
	}
	row[creditor] = amount
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

// Edges flattens the table into edges ordered by debtor, then creditor.
func (t BalanceTable) Edges() []DebtEdge {
	edges := make([]DebtEdge, 0, len(t))
	for from, row := range t {
		for to, amount := range row {
			edges = append(edges, DebtEdge{From: from, To: to, Amount: amount})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberID   string
	TotalPaid  float64 // Amount others must pay this member
	TotalOwed  float64 // Amount this member must pay others
	NetBalance float64 // Positive = owed money, Negative = owes money
}

// SuggestionKind tells how a suggestion relates to the viewer.
type SuggestionKind string

const (
	KindYouOwe    SuggestionKind = "you_owe"
	KindOwedToYou SuggestionKind = "owed_to_you"
	KindOthers    SuggestionKind = "others"
)

// Suggestion proposes a payment of Amount from FromID to ToID.
type Suggestion struct {
	FromID string
	ToID   string
	Amount float64
	Kind   SuggestionKind
}
