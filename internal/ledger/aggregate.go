package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Aggregate derives per-member totals from a simplified table.
//
// For member M, TotalOwed is the sum of simplified[M][*] and TotalPaid the sum
// of simplified[*][M]. Every member gets an entry, including members with no
// debts at all. The result is ordered by NetBalance descending (creditors
// first); ties keep the order of members.
func Aggregate(members []Member, simplified BalanceTable) []MemberBalance {
	paid := make(map[string]decimal.Decimal)
	owed := make(map[string]decimal.Decimal)

	// Table values are already cents, so decimal sums are exact
	for debtor, row := range simplified {
		for creditor, amount := range row {
			owed[debtor] = owed[debtor].Add(dec(amount))
			paid[creditor] = paid[creditor].Add(dec(amount))
		}
	}

	balances := make([]MemberBalance, 0, len(members))
	for _, m := range members {
		p, o := paid[m.ID], owed[m.ID]
		balances = append(balances, MemberBalance{
			MemberID:   m.ID,
			TotalPaid:  p.InexactFloat64(),
			TotalOwed:  o.InexactFloat64(),
			NetBalance: p.Sub(o).InexactFloat64(),
		})
	}

	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].NetBalance > balances[j].NetBalance
	})

	return balances
}
