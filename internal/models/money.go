package models

import "github.com/shopspring/decimal"

// RoundMoney rounds a money value to 2 decimal places, half up.
// decimal.Round rounds half away from zero, which is identical to
// half-up for the non-negative amounts the engine admits.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
