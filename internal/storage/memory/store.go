package memory

import (
	"context"
	"fmt"
	"sync"

	interfaces "github.com/sheikh-saqib/fx-transfer-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/models"
	"github.com/shopspring/decimal"
)

// AccountStore is an in-memory implementation of interfaces.AccountStore.
// A single mutex guards the whole map, so SaveAccounts is trivially
// atomic: both balances are written under one critical section.
type AccountStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
}

// NewAccountStore creates an in-memory account store seeded with the
// given accounts.
func NewAccountStore(seed ...models.Account) *AccountStore {
	s := &AccountStore{accounts: make(map[string]models.Account)}
	for _, a := range seed {
		s.accounts[a.ID] = a
	}
	return s
}

// GetAccount returns a copy of the stored account so callers can never
// mutate internal state through the return value.
func (s *AccountStore) GetAccount(ctx context.Context, id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[id]
	if !exists {
		return models.Account{}, fmt.Errorf("%w: %s", interfaces.ErrNoAccount, id)
	}
	return account, nil
}

// SaveAccounts writes both accounts under one lock acquisition, so a
// concurrent GetAccount observes either both updates or neither.
func (s *AccountStore) SaveAccounts(ctx context.Context, a, b models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[a.ID] = a
	s.accounts[b.ID] = b
	return nil
}

// RateStore is an in-memory implementation of interfaces.RateStore.
// The table is fixed at construction and read-only afterwards, so
// lookups need no synchronization of their own beyond the map being
// never written again.
type RateStore struct {
	rates map[string]decimal.Decimal // keyed "FROM->TO"
}

// NewRateStore creates a rate table from the given directional entries.
func NewRateStore(entries ...models.ConversionRate) *RateStore {
	s := &RateStore{rates: make(map[string]decimal.Decimal)}
	for _, r := range entries {
		s.rates[rateKey(r.FromCurrency, r.ToCurrency)] = r.Rate
	}
	return s
}

func (s *RateStore) Lookup(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	rate, exists := s.rates[rateKey(fromCurrency, toCurrency)]
	if !exists {
		return decimal.Decimal{}, fmt.Errorf("%w: %s->%s", interfaces.ErrNoRate, fromCurrency, toCurrency)
	}
	return rate, nil
}

func rateKey(from, to string) string {
	return from + "->" + to
}

// Compile-time checks: both stores implement their interfaces.
var (
	_ interfaces.AccountStore = (*AccountStore)(nil)
	_ interfaces.RateStore    = (*RateStore)(nil)
)
