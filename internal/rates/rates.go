package rates

import (
	"context"

	interfaces "github.com/sheikh-saqib/fx-transfer-ledger-system/internal/interfaces"
	"github.com/shopspring/decimal"
)

// Service resolves conversion multipliers for ordered currency pairs.
// It is read-only: it never mutates the underlying table and is safe
// for unsynchronized concurrent use.
type Service struct {
	store interfaces.RateStore
}

// NewService creates a rate lookup backed by any RateStore implementation.
func NewService(store interfaces.RateStore) *Service {
	return &Service{store: store}
}

// Resolve returns the multiplier that converts an amount from
// fromCurrency into toCurrency.
//
// Equal currencies short-circuit to a multiplier of 1 without consulting
// the table at all. Otherwise the directional table is queried for an
// exact (from,to) entry; a miss surfaces as interfaces.ErrNoRate. There
// is no fallback to a reciprocal rate or an intermediate currency.
func (s *Service) Resolve(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	if fromCurrency == toCurrency {
		return decimal.NewFromInt(1), nil
	}
	return s.store.Lookup(ctx, fromCurrency, toCurrency)
}
