package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferCompleted is published by the boundary layer after a transfer
// has been durably committed. The engine itself never emits events.
type TransferCompleted struct {
	TransferID     string          `json:"transfer_id"`
	FromAccount    string          `json:"from_account"`
	ToAccount      string          `json:"to_account"`
	Amount         decimal.Decimal `json:"amount"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	CreditedAmount decimal.Decimal `json:"credited_amount"`
	FromCurrency   string          `json:"from_currency"`
	ToCurrency     string          `json:"to_currency"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
