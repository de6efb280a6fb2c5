package ledger

type pair struct {
	a, b string
}

// Simplify collapses both debt directions of every member pair into a single
// one-way debt rounded to cents.
//
// Each unordered pair present in table is visited once. With
// net = table[a][b] - table[b][a], a positive net becomes simplified[a][b],
// a negative one simplified[b][a], and a net that rounds to zero is dropped.
// This is the only stage that rounds, so later sums work on cent values.
func Simplify(table DebtTable) BalanceTable {
	simplified := make(BalanceTable)
	visited := make(map[pair]bool)

	for a, row := range table {
		for b := range row {
			if a == b || visited[pair{a, b}] {
				continue
			}
			visited[pair{a, b}] = true
			visited[pair{b, a}] = true

			net := table.Get(a, b) - table.Get(b, a)
			switch {
			case net > 0:
				simplified.set(a, b, Round2(net))
			case net < 0:
				simplified.set(b, a, Round2(-net))
			}
		}
	}

	return simplified
}
