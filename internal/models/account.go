package models

import "github.com/shopspring/decimal"

// Account is a ledger account holding a balance in a single currency.
// Balance arithmetic uses decimal.Decimal throughout so money values are
// exact — binary floating point never touches a balance.
type Account struct {
	ID       string          // opaque, stable, unique identifier
	Owner    string          // display label only, no semantic constraint
	Currency string          // 3-4 letter currency code, immutable per transfer
	Balance  decimal.Decimal // exact decimal, never negative after a debit
	Version  int64           // generation counter, bumped on every engine write
}
