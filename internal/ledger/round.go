package ledger

import "github.com/shopspring/decimal"

// Round2 rounds x to two decimal places, halves away from zero.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

func dec(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x)
}
