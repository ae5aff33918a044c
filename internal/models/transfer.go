package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer represents an intent to move money between two accounts.
// It is ephemeral: the engine produces two balance mutations (or none)
// from it, but never persists the transfer itself.
type Transfer struct {
	ID          string
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}
