package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	interfaces "github.com/sheikh-saqib/fx-transfer-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/models"
	"github.com/shopspring/decimal"
)

// RateResolver is the slice of the rate lookup the engine needs.
// A miss must surface as interfaces.ErrNoRate.
type RateResolver interface {
	Resolve(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
}

// Engine moves funds between two accounts as one atomic unit: fee
// computation, currency conversion, and both balance mutations succeed
// together or not at all.
//
// Correctness under concurrency comes from exclusive per-account locks
// held for the whole operation. The locks live in a lazily populated
// map keyed by account id; the map itself is guarded by its own mutex.
type Engine struct {
	accounts interfaces.AccountStore
	rates    RateResolver
	feeRate  decimal.Decimal // fraction of the amount charged to the source

	muMap map[string]*sync.Mutex // one mutex per account id
	mapMu sync.Mutex             // protects the muMap itself
}

// Result reports what a successful transfer did to each side.
type Result struct {
	TotalDebit     decimal.Decimal // amount + fee, in the source currency
	CreditedAmount decimal.Decimal // in the destination currency
	FromCurrency   string
	ToCurrency     string
}

// NewEngine creates a transfer engine. feeRate is the fraction of every
// transfer amount charged to the source account (0.01 for 1%); it is a
// fixed property of the engine, not configurable per call.
func NewEngine(accounts interfaces.AccountStore, rates RateResolver, feeRate decimal.Decimal) *Engine {
	return &Engine{
		accounts: accounts,
		rates:    rates,
		feeRate:  feeRate,
		muMap:    make(map[string]*sync.Mutex),
	}
}

func (e *Engine) accountLock(accountId string) *sync.Mutex {
	e.mapMu.Lock()
	defer e.mapMu.Unlock()

	if _, exists := e.muMap[accountId]; !exists {
		e.muMap[accountId] = &sync.Mutex{}
	}
	return e.muMap[accountId]
}

// Transfer moves amount from the account fromId to the account toId,
// charging the fee to the source and converting into the destination
// currency when the two differ.
//
// Validation is fail-fast, first failing check wins:
//  1. fromId == toId rejects with ErrSameAccount before any lock is taken.
//  2. Either account missing rejects with ErrAccountNotFound.
//  3. source balance < amount + fee rejects with ErrInsufficientFunds.
//  4. Differing currencies with no table entry reject with
//     ErrUnsupportedConversion.
//
// On any rejection both balances are untouched: the engine builds a
// proposed pair of updated accounts only after every check has passed,
// and hands them to the store in a single atomic save. There is no
// window in which a one-sided mutation is observable.
func (e *Engine) Transfer(ctx context.Context, fromId, toId string, amount decimal.Decimal) (Result, error) {
	if fromId == toId {
		return Result{}, ErrSameAccount
	}

	// Lock both accounts in ascending id order, regardless of which
	// side is the source. Two opposite-direction transfers on the same
	// pair then always contend on the same first lock and cannot
	// deadlock.
	firstId, secondId := fromId, toId
	if secondId < firstId {
		firstId, secondId = secondId, firstId
	}
	first := e.accountLock(firstId)
	second := e.accountLock(secondId)
	first.Lock()
	defer first.Unlock()
	second.Lock()
	defer second.Unlock()

	from, err := e.accounts.GetAccount(ctx, fromId)
	if err != nil {
		return Result{}, notFound("source", fromId, err)
	}
	to, err := e.accounts.GetAccount(ctx, toId)
	if err != nil {
		return Result{}, notFound("destination", toId, err)
	}

	// Fee is charged in the source currency, computed before any
	// conversion takes place.
	fee := amount.Mul(e.feeRate)
	totalDebit := amount.Add(fee)

	if from.Balance.Cmp(totalDebit) < 0 {
		return Result{}, fmt.Errorf("%w: balance %s, required %s",
			ErrInsufficientFunds, from.Balance, totalDebit)
	}

	// The destination is credited based on the full amount, not
	// amount minus fee. Same currency credits the amount exactly;
	// conversion rounds to 2 decimal places, half up.
	creditedAmount := amount
	if from.Currency != to.Currency {
		rate, err := e.rates.Resolve(ctx, from.Currency, to.Currency)
		if err != nil {
			if errors.Is(err, interfaces.ErrNoRate) {
				return Result{}, fmt.Errorf("%w: %s to %s",
					ErrUnsupportedConversion, from.Currency, to.Currency)
			}
			return Result{}, err
		}
		creditedAmount = models.RoundMoney(amount.Mul(rate))
	}

	// All checks passed: build the proposed mutation pair. from and to
	// are snapshot copies, so nothing shared has been touched yet.
	from.Balance = from.Balance.Sub(totalDebit)
	from.Version++
	to.Balance = to.Balance.Add(creditedAmount)
	to.Version++

	// Both balances become durable together or not at all.
	if err := e.accounts.SaveAccounts(ctx, from, to); err != nil {
		return Result{}, err
	}

	return Result{
		TotalDebit:     totalDebit,
		CreditedAmount: creditedAmount,
		FromCurrency:   from.Currency,
		ToCurrency:     to.Currency,
	}, nil
}

// notFound keeps the two sides apart in the message ("source" vs
// "destination") while surfacing the same error kind for both.
func notFound(side, id string, err error) error {
	if errors.Is(err, interfaces.ErrNoAccount) {
		return fmt.Errorf("%w: %s %s", ErrAccountNotFound, side, id)
	}
	return err
}
