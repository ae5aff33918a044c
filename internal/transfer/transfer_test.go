package transfer_test

import (
	"context"
	"sync"
	"testing"

	interfaces "github.com/sheikh-saqib/fx-transfer-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/models"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/rates"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/storage/memory"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/transfer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newFixture wires an engine over seeded in-memory stores: Alice holds
// 1000.00 USD, Bob holds 500.00 AUD, and the rate table knows
// USD->AUD = 2 and AUD->USD = 0.5.
func newFixture(feeRate decimal.Decimal) (*transfer.Engine, *memory.AccountStore) {
	accounts := memory.NewAccountStore(
		models.Account{ID: "alice", Owner: "Alice", Currency: "USD", Balance: dec("1000.00")},
		models.Account{ID: "bob", Owner: "Bob", Currency: "AUD", Balance: dec("500.00")},
	)
	fxRates := memory.NewRateStore(
		models.ConversionRate{FromCurrency: "USD", ToCurrency: "AUD", Rate: dec("2")},
		models.ConversionRate{FromCurrency: "AUD", ToCurrency: "USD", Rate: dec("0.5")},
	)
	return transfer.NewEngine(accounts, rates.NewService(fxRates), feeRate), accounts
}

func balance(t *testing.T, store *memory.AccountStore, id string) decimal.Decimal {
	t.Helper()
	account, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return account.Balance
}

func TestTransferCrossCurrency(t *testing.T) {
	t.Parallel()

	engine, store := newFixture(dec("0.01"))

	// 100 USD from Alice to Bob: fee 1.00, debit 101.00, credit
	// round(100 * 2, 2) = 200.00.
	result, err := engine.Transfer(context.Background(), "alice", "bob", dec("100"))
	require.NoError(t, err)

	assert.True(t, result.TotalDebit.Equal(dec("101.00")), "total debit %s", result.TotalDebit)
	assert.True(t, result.CreditedAmount.Equal(dec("200.00")), "credited %s", result.CreditedAmount)
	assert.Equal(t, "USD", result.FromCurrency)
	assert.Equal(t, "AUD", result.ToCurrency)

	assert.True(t, balance(t, store, "alice").Equal(dec("899.00")))
	assert.True(t, balance(t, store, "bob").Equal(dec("700.00")))
}

func TestTransferSameCurrency(t *testing.T) {
	t.Parallel()

	accounts := memory.NewAccountStore(
		models.Account{ID: "alice", Currency: "USD", Balance: dec("1000.00")},
		models.Account{ID: "bob", Currency: "USD", Balance: dec("500.00")},
	)
	// No rate entries at all: a same-currency transfer must never
	// consult the table.
	engine := transfer.NewEngine(accounts, rates.NewService(memory.NewRateStore()), dec("0.01"))

	result, err := engine.Transfer(context.Background(), "alice", "bob", dec("100.00"))
	require.NoError(t, err)

	// Credit is the amount exactly, no rounding applied.
	assert.True(t, result.CreditedAmount.Equal(dec("100.00")))
	assert.True(t, balance(t, accounts, "alice").Equal(dec("899.00")))
	assert.True(t, balance(t, accounts, "bob").Equal(dec("600.00")))
}

func TestTransferRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fromId  string
		toId    string
		amount  decimal.Decimal
		wantErr error
	}{
		{
			name:    "same account",
			fromId:  "alice",
			toId:    "alice",
			amount:  dec("10"),
			wantErr: transfer.ErrSameAccount,
		},
		{
			name:    "source not found",
			fromId:  "ghost",
			toId:    "bob",
			amount:  dec("10"),
			wantErr: transfer.ErrAccountNotFound,
		},
		{
			name:    "destination not found",
			fromId:  "alice",
			toId:    "ghost",
			amount:  dec("10"),
			wantErr: transfer.ErrAccountNotFound,
		},
		{
			name:    "insufficient funds",
			fromId:  "alice",
			toId:    "bob",
			amount:  dec("1000.00"), // fee pushes the debit past the balance
			wantErr: transfer.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine, store := newFixture(dec("0.01"))

			_, err := engine.Transfer(context.Background(), tt.fromId, tt.toId, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)

			// No rejection may leave a partial mutation behind.
			assert.True(t, balance(t, store, "alice").Equal(dec("1000.00")))
			assert.True(t, balance(t, store, "bob").Equal(dec("500.00")))
		})
	}
}

func TestTransferUnsupportedConversion(t *testing.T) {
	t.Parallel()

	accounts := memory.NewAccountStore(
		models.Account{ID: "alice", Currency: "CNY", Balance: dec("1000.00")},
		models.Account{ID: "bob", Currency: "AUD", Balance: dec("500.00")},
	)
	engine := transfer.NewEngine(accounts, rates.NewService(memory.NewRateStore()), dec("0.01"))

	_, err := engine.Transfer(context.Background(), "alice", "bob", dec("40.00"))
	assert.ErrorIs(t, err, transfer.ErrUnsupportedConversion)

	// The debit passed its check before the rate lookup failed; neither
	// side may show any trace of it.
	assert.True(t, balance(t, accounts, "alice").Equal(dec("1000.00")))
	assert.True(t, balance(t, accounts, "bob").Equal(dec("500.00")))
}

func TestInsufficientFundsBoundary(t *testing.T) {
	t.Parallel()

	// Balance 101.00 covers amount 100.00 plus the 1.00 fee exactly.
	accounts := memory.NewAccountStore(
		models.Account{ID: "a", Currency: "USD", Balance: dec("101.00")},
		models.Account{ID: "b", Currency: "USD", Balance: dec("0")},
	)
	engine := transfer.NewEngine(accounts, rates.NewService(memory.NewRateStore()), dec("0.01"))

	_, err := engine.Transfer(context.Background(), "a", "b", dec("100.00"))
	require.NoError(t, err)
	assert.True(t, balance(t, accounts, "a").Equal(dec("0")))
	assert.True(t, balance(t, accounts, "b").Equal(dec("100.00")))

	// One cent more than the balance covers must reject.
	_, err = engine.Transfer(context.Background(), "b", "a", dec("99.01"))
	assert.ErrorIs(t, err, transfer.ErrInsufficientFunds)
	assert.True(t, balance(t, accounts, "b").Equal(dec("100.00")))
}

func TestCreditComputedFromFullAmount(t *testing.T) {
	t.Parallel()

	engine, store := newFixture(dec("0.01"))

	// The fee reduces only the source side: Bob is credited from the
	// full 100, not 100 minus the fee.
	result, err := engine.Transfer(context.Background(), "alice", "bob", dec("100"))
	require.NoError(t, err)

	assert.True(t, result.CreditedAmount.Equal(dec("200.00")))
	assert.True(t, balance(t, store, "bob").Equal(dec("700.00")))
}

func TestConversionRoundsHalfUp(t *testing.T) {
	t.Parallel()

	accounts := memory.NewAccountStore(
		models.Account{ID: "a", Currency: "USD", Balance: dec("1000.00")},
		models.Account{ID: "b", Currency: "AUD", Balance: dec("0")},
	)
	fxRates := memory.NewRateStore(
		models.ConversionRate{FromCurrency: "USD", ToCurrency: "AUD", Rate: dec("0.1")},
	)
	engine := transfer.NewEngine(accounts, rates.NewService(fxRates), dec("0.01"))

	// 1.25 * 0.1 = 0.125 rounds up to 0.13.
	result, err := engine.Transfer(context.Background(), "a", "b", dec("1.25"))
	require.NoError(t, err)
	assert.True(t, result.CreditedAmount.Equal(dec("0.13")), "credited %s", result.CreditedAmount)
}

func TestConfigurableFeeRate(t *testing.T) {
	t.Parallel()

	accounts := memory.NewAccountStore(
		models.Account{ID: "a", Currency: "USD", Balance: dec("1000.00")},
		models.Account{ID: "b", Currency: "USD", Balance: dec("0")},
	)
	engine := transfer.NewEngine(accounts, rates.NewService(memory.NewRateStore()), dec("0.05"))

	result, err := engine.Transfer(context.Background(), "a", "b", dec("100"))
	require.NoError(t, err)
	assert.True(t, result.TotalDebit.Equal(dec("105.00")), "total debit %s", result.TotalDebit)
	assert.True(t, balance(t, accounts, "a").Equal(dec("895.00")))
}

func TestTransferBumpsVersions(t *testing.T) {
	t.Parallel()

	engine, store := newFixture(dec("0.01"))

	_, err := engine.Transfer(context.Background(), "alice", "bob", dec("10"))
	require.NoError(t, err)

	alice, err := store.GetAccount(context.Background(), "alice")
	require.NoError(t, err)
	bob, err := store.GetAccount(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.Version)
	assert.Equal(t, int64(1), bob.Version)
}

// TestConcurrentTransfersMatchSequential runs a fixed set of transfers
// in both directions concurrently and checks the final balances against
// a single-threaded execution of the same set. It doubles as a deadlock
// check for opposite-direction transfers on the same pair: without
// canonical lock ordering this test would hang.
func TestConcurrentTransfersMatchSequential(t *testing.T) {
	t.Parallel()

	const rounds = 25

	run := func(concurrent bool) (decimal.Decimal, decimal.Decimal) {
		engine, store := newFixture(dec("0.01"))

		var wg sync.WaitGroup
		for i := 0; i < rounds; i++ {
			do := func() {
				_, err := engine.Transfer(context.Background(), "alice", "bob", dec("10.00"))
				require.NoError(t, err)
				_, err = engine.Transfer(context.Background(), "bob", "alice", dec("4.00"))
				require.NoError(t, err)
			}
			if concurrent {
				wg.Add(1)
				go func() {
					defer wg.Done()
					do()
				}()
			} else {
				do()
			}
		}
		wg.Wait()

		return balance(t, store, "alice"), balance(t, store, "bob")
	}

	wantAlice, wantBob := run(false)
	gotAlice, gotBob := run(true)

	assert.True(t, gotAlice.Equal(wantAlice), "alice: got %s want %s", gotAlice, wantAlice)
	assert.True(t, gotBob.Equal(wantBob), "bob: got %s want %s", gotBob, wantBob)
}

// A store that reports every account as missing, to pin down which
// side the engine blames first.
type emptyStore struct{}

func (emptyStore) GetAccount(ctx context.Context, id string) (models.Account, error) {
	return models.Account{}, interfaces.ErrNoAccount
}

func (emptyStore) SaveAccounts(ctx context.Context, a, b models.Account) error {
	return nil
}

func TestNotFoundNamesTheSide(t *testing.T) {
	t.Parallel()

	engine := transfer.NewEngine(emptyStore{}, rates.NewService(memory.NewRateStore()), dec("0.01"))

	_, err := engine.Transfer(context.Background(), "src", "dst", dec("1"))
	require.ErrorIs(t, err, transfer.ErrAccountNotFound)
	assert.Contains(t, err.Error(), "source")
}
