package ledger

// Build converts transactions and settlements into a raw pairwise debt table.
//
// Each split charged to someone other than the payer adds to
// table[split.MemberID][payer]. Each active settlement subtracts its amount
// from table[from][to], which may leave a negative entry (an overpayment)
// that Simplify resolves. Negative settlement amounts and self-payments
// contribute nothing. No rounding happens here.
func Build(transactions []Transaction, settlements []Settlement) DebtTable {
	table := make(DebtTable)

	for _, tx := range transactions {
		for _, split := range tx.Splits {
			// The payer is never charged against themselves
			if split.MemberID == tx.PayerID {
				continue
			}
			table.add(split.MemberID, tx.PayerID, split.Amount)
		}
	}

	for _, s := range settlements {
		if !s.Active() || s.Amount < 0 || s.FromID == s.ToID {
			continue
		}
		table.add(s.FromID, s.ToID, -s.Amount)
	}

	return table
}
