package ledger

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// Input is one immutable snapshot of a group's ledger.
type Input struct {
	Members      []Member
	Transactions []Transaction
	Settlements  []Settlement
	ViewerID     string
}

// Result is the output of one pipeline run.
type Result struct {
	Simplified  BalanceTable
	Balances    []MemberBalance
	Suggestions []Suggestion

	// ZeroSumResidual is the sum of all net balances. It stays within a cent
	// of zero when every transaction passes ValidateTransaction.
	ZeroSumResidual float64
}

// Compute runs Build, Simplify, Aggregate and Suggest over in.
// Identical inputs always produce identical results.
func Compute(in Input) Result {
	simplified := Simplify(Build(in.Transactions, in.Settlements))
	balances := Aggregate(in.Members, simplified)

	var active []Settlement
	for _, s := range in.Settlements {
		if s.Active() {
			active = append(active, s)
		}
	}

	return Result{
		Simplified:      simplified,
		Balances:        balances,
		Suggestions:     Suggest(in.ViewerID, balances, simplified, active),
		ZeroSumResidual: netSum(balances),
	}
}

func netSum(balances []MemberBalance) float64 {
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(dec(b.NetBalance))
	}
	return sum.InexactFloat64()
}

// LogValue summarizes the result as a trace event, so callers can log a run
// without the pipeline logging anything itself.
func (r Result) LogValue() slog.Value {
	pairs := 0
	for _, row := range r.Simplified {
		pairs += len(row)
	}
	return slog.GroupValue(
		slog.Int("members", len(r.Balances)),
		slog.Int("debt_pairs", pairs),
		slog.Int("suggestions", len(r.Suggestions)),
		slog.Float64("zero_sum_residual", r.ZeroSumResidual),
	)
}
