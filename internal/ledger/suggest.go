package ledger

import "github.com/shopspring/decimal"

// Suggest proposes settlement payments from the viewer's perspective.
//
// The result is not a group-wide minimum; it depends on the sign of the
// viewer's net balance:
//
//   - viewer owes: one payment to each creditor the viewer has a direct debt
//     to, capped by that creditor's net balance (KindYouOwe);
//   - viewer is owed: one payment from each debtor with a direct debt to the
//     viewer, capped by the viewer's net balance (KindOwedToYou);
//   - viewer is balanced: debtors are matched to creditors in balance order,
//     each payment capped by the debtor's remaining debt, the creditor's net
//     balance and their direct debt (KindOthers).
//
// A viewer missing from balances is treated as balanced. Amounts are rounded
// to cents and only positive amounts are emitted. Suggestions whose directed
// pair already has an active settlement are dropped.
func Suggest(viewerID string, balances []MemberBalance, simplified BalanceTable, activeSettlements []Settlement) []Suggestion {
	viewerNet := decimal.Zero
	for _, b := range balances {
		if b.MemberID == viewerID {
			viewerNet = dec(b.NetBalance)
			break
		}
	}

	var suggestions []Suggestion
	switch viewerNet.Sign() {
	case -1:
		suggestions = suggestYouOwe(viewerID, balances, simplified)
	case 1:
		suggestions = suggestOwedToYou(viewerID, viewerNet, balances, simplified)
	default:
		suggestions = suggestOthers(viewerID, balances, simplified)
	}

	return withoutSettledPairs(suggestions, activeSettlements)
}

func suggestYouOwe(viewerID string, balances []MemberBalance, simplified BalanceTable) []Suggestion {
	var out []Suggestion
	for _, creditor := range balances {
		if creditor.MemberID == viewerID || creditor.NetBalance <= 0 {
			continue
		}
		exact := dec(simplified.Get(viewerID, creditor.MemberID))
		if !exact.IsPositive() {
			continue
		}
		amount := decimal.Min(exact, dec(creditor.NetBalance))
		out = appendSuggestion(out, viewerID, creditor.MemberID, amount, KindYouOwe)
	}
	return out
}

func suggestOwedToYou(viewerID string, viewerNet decimal.Decimal, balances []MemberBalance, simplified BalanceTable) []Suggestion {
	var out []Suggestion
	for _, debtor := range balances {
		if debtor.MemberID == viewerID || debtor.NetBalance >= 0 {
			continue
		}
		exact := dec(simplified.Get(debtor.MemberID, viewerID))
		if !exact.IsPositive() {
			continue
		}
		amount := decimal.Min(exact, viewerNet)
		out = appendSuggestion(out, debtor.MemberID, viewerID, amount, KindOwedToYou)
	}
	return out
}

func suggestOthers(viewerID string, balances []MemberBalance, simplified BalanceTable) []Suggestion {
	var out []Suggestion
	for _, debtor := range balances {
		if debtor.MemberID == viewerID || debtor.NetBalance >= 0 {
			continue
		}
		remaining := dec(debtor.NetBalance).Abs()

		for _, creditor := range balances {
			if !remaining.IsPositive() {
				break
			}
			if creditor.MemberID == viewerID || creditor.NetBalance <= 0 {
				continue
			}
			exact := dec(simplified.Get(debtor.MemberID, creditor.MemberID))
			if !exact.IsPositive() {
				continue
			}
			amount := decimal.Min(remaining, dec(creditor.NetBalance), exact).Round(2)
			if !amount.IsPositive() {
				continue
			}
			out = appendSuggestion(out, debtor.MemberID, creditor.MemberID, amount, KindOthers)
			remaining = remaining.Sub(amount)
		}
	}
	return out
}

func appendSuggestion(out []Suggestion, from, to string, amount decimal.Decimal, kind SuggestionKind) []Suggestion {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return out
	}
	return append(out, Suggestion{
		FromID: from,
		ToID:   to,
		Amount: amount.InexactFloat64(),
		Kind:   kind,
	})
}

// withoutSettledPairs drops suggestions whose directed pair already has an
// active settlement, whatever its amount.
func withoutSettledPairs(suggestions []Suggestion, settlements []Settlement) []Suggestion {
	if len(suggestions) == 0 {
		return suggestions
	}

	settled := make(map[pair]bool, len(settlements))
	for _, s := range settlements {
		if s.Active() {
			settled[pair{s.FromID, s.ToID}] = true
		}
	}

	filtered := suggestions[:0]
	for _, s := range suggestions {
		if !settled[pair{s.FromID, s.ToID}] {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
