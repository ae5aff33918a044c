package interfaces

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoRate is returned by RateStore.Lookup when the directional table
// has no entry for the requested pair.
var ErrNoRate = errors.New("no conversion rate for currency pair")

// RateStore resolves a conversion multiplier for an ordered currency
// pair. Lookups are directional: a missing (from,to) entry is a miss
// even if (to,from) exists — no reciprocal fallback.
type RateStore interface {
	Lookup(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
}
