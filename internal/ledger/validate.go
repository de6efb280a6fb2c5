package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrSplitMismatch     = errors.New("splits do not sum to transaction total")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrMissingPayer      = errors.New("transaction has no payer")
	ErrSelfSettlement    = errors.New("settlement sender and recipient must differ")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)

// splitTolerance is half a cent: anything smaller is float noise.
var splitTolerance = decimal.New(5, -3)

// ValidateTransaction checks the preconditions Build relies on for the
// zero-sum property: a payer, non-negative amounts and splits that add up to
// the total. Build itself never calls it.
func ValidateTransaction(tx Transaction) error {
	if tx.PayerID == "" {
		return ErrMissingPayer
	}
	if tx.TotalAmount < 0 {
		return fmt.Errorf("total %.2f: %w", tx.TotalAmount, ErrNegativeAmount)
	}

	sum := decimal.Zero
	for _, s := range tx.Splits {
		if s.Amount < 0 {
			return fmt.Errorf("split for %s: %w", s.MemberID, ErrNegativeAmount)
		}
		sum = sum.Add(dec(s.Amount))
	}

	if sum.Sub(dec(tx.TotalAmount)).Abs().GreaterThan(splitTolerance) {
		return fmt.Errorf("%w: splits %s, total %s", ErrSplitMismatch, sum.StringFixed(2), dec(tx.TotalAmount).StringFixed(2))
	}
	return nil
}

// ValidateSettlement checks that a settlement moves a positive amount between
// two different members.
func ValidateSettlement(s Settlement) error {
	if s.FromID == s.ToID {
		return ErrSelfSettlement
	}
	if s.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	return nil
}
