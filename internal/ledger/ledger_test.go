package ledger

import (
	"math"
	"testing"
)

func members(ids ...string) []Member {
	out := make([]Member, len(ids))
	for i, id := range ids {
		out[i] = Member{ID: id, DisplayName: id, IsActive: true}
	}
	return out
}

// scenarioOne: A pays 90 split between B and C.
func scenarioOne() ([]Member, []Transaction) {
	return members("A", "B", "C"), []Transaction{
		{
			ID:          "T1",
			PayerID:     "A",
			TotalAmount: 90,
			Splits: []Split{
				{MemberID: "A", Amount: 0},
				{MemberID: "B", Amount: 45},
				{MemberID: "C", Amount: 45},
			},
		},
	}
}

func assertBalances(t *testing.T, got []MemberBalance, want map[string]float64, order []string) {
	t.Helper()
	if len(got) != len(order) {
		t.Fatalf("balances count = %d, want %d", len(got), len(order))
	}
	for i, id := range order {
		if got[i].MemberID != id {
			t.Errorf("balances[%d] = %s, want %s", i, got[i].MemberID, id)
		}
		if math.Abs(got[i].NetBalance-want[id]) > 0.01 {
			t.Errorf("%s net balance = %v, want %v", id, got[i].NetBalance, want[id])
		}
	}
}

func TestCompute_SinglePayerTwoDebtors(t *testing.T) {
	ms, txs := scenarioOne()
	res := Compute(Input{Members: ms, Transactions: txs})

	if got := res.Simplified.Get("B", "A"); got != 45 {
		t.Errorf("simplified[B][A] = %v, want 45", got)
	}
	if got := res.Simplified.Get("C", "A"); got != 45 {
		t.Errorf("simplified[C][A] = %v, want 45", got)
	}
	if _, ok := res.Simplified["A"]; ok {
		t.Errorf("payer should owe nobody, got %v", res.Simplified["A"])
	}

	assertBalances(t, res.Balances,
		map[string]float64{"A": 90, "B": -45, "C": -45},
		[]string{"A", "B", "C"},
	)
	if res.Balances[0].TotalPaid != 90 || res.Balances[0].TotalOwed != 0 {
		t.Errorf("A totals = paid %v owed %v, want 90/0", res.Balances[0].TotalPaid, res.Balances[0].TotalOwed)
	}
}

func TestCompute_PartialSettlement(t *testing.T) {
	ms, txs := scenarioOne()
	settlements := []Settlement{{ID: "S1", FromID: "B", ToID: "A", Amount: 20, Status: StatusCompleted}}

	res := Compute(Input{Members: ms, Transactions: txs, Settlements: settlements})

	if got := res.Simplified.Get("B", "A"); got != 25 {
		t.Errorf("simplified[B][A] = %v, want 25", got)
	}
	assertBalances(t, res.Balances,
		map[string]float64{"A": 70, "B": -25, "C": -45},
		[]string{"A", "B", "C"},
	)
	if math.Abs(res.ZeroSumResidual) > 0.01 {
		t.Errorf("zero-sum residual = %v", res.ZeroSumResidual)
	}
}

func TestCompute_CancelledSettlementIgnored(t *testing.T) {
	ms, txs := scenarioOne()
	settlements := []Settlement{{ID: "S1", FromID: "B", ToID: "A", Amount: 20, Status: StatusCancelled}}

	withCancelled := Compute(Input{Members: ms, Transactions: txs, Settlements: settlements})
	without := Compute(Input{Members: ms, Transactions: txs})

	for i := range without.Balances {
		if withCancelled.Balances[i] != without.Balances[i] {
			t.Errorf("balances[%d] = %+v, want %+v", i, withCancelled.Balances[i], without.Balances[i])
		}
	}
	if got := withCancelled.Simplified.Get("B", "A"); got != 45 {
		t.Errorf("simplified[B][A] = %v, want 45", got)
	}
}

func TestCompute_ViewerOwes(t *testing.T) {
	ms, txs := scenarioOne()
	res := Compute(Input{Members: ms, Transactions: txs, ViewerID: "B"})

	want := []Suggestion{{FromID: "B", ToID: "A", Amount: 45, Kind: KindYouOwe}}
	assertSuggestions(t, res.Suggestions, want)
}

func TestCompute_ViewerIsOwed(t *testing.T) {
	ms, txs := scenarioOne()
	res := Compute(Input{Members: ms, Transactions: txs, ViewerID: "A"})

	want := []Suggestion{
		{FromID: "B", ToID: "A", Amount: 45, Kind: KindOwedToYou},
		{FromID: "C", ToID: "A", Amount: 45, Kind: KindOwedToYou},
	}
	assertSuggestions(t, res.Suggestions, want)
}

func TestCompute_BalancedViewerSeesThirdPartyDebt(t *testing.T) {
	ms := members("A", "B", "C", "D")
	txs := []Transaction{{
		ID:          "T1",
		PayerID:     "D",
		TotalAmount: 30,
		Splits:      []Split{{MemberID: "D", Amount: 0}, {MemberID: "C", Amount: 30}},
	}}

	res := Compute(Input{Members: ms, Transactions: txs, ViewerID: "A"})

	want := []Suggestion{{FromID: "C", ToID: "D", Amount: 30, Kind: KindOthers}}
	assertSuggestions(t, res.Suggestions, want)
}

func TestCompute_EmptyInput(t *testing.T) {
	res := Compute(Input{ViewerID: "nobody"})

	if len(res.Simplified) != 0 {
		t.Errorf("expected empty table, got %v", res.Simplified)
	}
	if len(res.Balances) != 0 {
		t.Errorf("expected no balances, got %v", res.Balances)
	}
	if len(res.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", res.Suggestions)
	}
	if res.ZeroSumResidual != 0 {
		t.Errorf("residual = %v, want 0", res.ZeroSumResidual)
	}
}

func TestCompute_MembersWithoutActivityAreListed(t *testing.T) {
	res := Compute(Input{Members: members("X", "Y")})

	if len(res.Balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(res.Balances))
	}
	for _, b := range res.Balances {
		if b.TotalPaid != 0 || b.TotalOwed != 0 || b.NetBalance != 0 {
			t.Errorf("%s should be all zero, got %+v", b.MemberID, b)
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	ms, txs := scenarioOne()
	in := Input{
		Members:      ms,
		Transactions: txs,
		Settlements:  []Settlement{{ID: "S1", FromID: "C", ToID: "A", Amount: 10, Status: StatusPending}},
		ViewerID:     "A",
	}

	first := Compute(in)
	second := Compute(in)

	if len(first.Simplified) != len(second.Simplified) {
		t.Fatalf("simplified tables differ: %v vs %v", first.Simplified, second.Simplified)
	}
	for from, row := range first.Simplified {
		for to, amount := range row {
			if second.Simplified.Get(from, to) != amount {
				t.Errorf("simplified[%s][%s]: %v vs %v", from, to, amount, second.Simplified.Get(from, to))
			}
		}
	}
	for i := range first.Balances {
		if first.Balances[i] != second.Balances[i] {
			t.Errorf("balances[%d]: %+v vs %+v", i, first.Balances[i], second.Balances[i])
		}
	}
	assertSuggestions(t, second.Suggestions, first.Suggestions)
}

func TestResult_LogValue(t *testing.T) {
	ms, txs := scenarioOne()
	res := Compute(Input{Members: ms, Transactions: txs, ViewerID: "B"})

	attrs := res.LogValue().Group()
	got := make(map[string]int64)
	for _, a := range attrs {
		if a.Key == "zero_sum_residual" {
			continue
		}
		got[a.Key] = a.Value.Int64()
	}
	if got["members"] != 3 || got["debt_pairs"] != 2 || got["suggestions"] != 1 {
		t.Errorf("unexpected trace attributes: %v", got)
	}
}

func assertSuggestions(t *testing.T, got, want []Suggestion) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("suggestions = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].FromID != want[i].FromID || got[i].ToID != want[i].ToID || got[i].Kind != want[i].Kind {
			t.Errorf("suggestion[%d] = %+v, want %+v", i, got[i], want[i])
		}
		if math.Abs(got[i].Amount-want[i].Amount) > 0.01 {
			t.Errorf("suggestion[%d] amount = %v, want %v", i, got[i].Amount, want[i].Amount)
		}
	}
}
