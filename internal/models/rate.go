package models

import "github.com/shopspring/decimal"

// ConversionRate maps an ordered currency pair to a positive multiplier.
// Rates are directional: rate(A->B) need not equal 1/rate(B->A), and no
// reciprocal is ever derived from a single entry.
type ConversionRate struct {
	FromCurrency string
	ToCurrency   string
	Rate         decimal.Decimal
}
