package interfaces

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/models"
)

// ErrNoAccount is returned by AccountStore.GetAccount when no account
// exists with the requested id.
var ErrNoAccount = errors.New("no such account")

// AccountStore is the storage abstraction the transfer engine depends on.
// The engine holds exclusive per-account locks around every call, so a
// store only has to guarantee that SaveAccounts is atomic: both balances
// become durable together, or neither does.
type AccountStore interface {
	// GetAccount returns a snapshot copy of the account with the given id,
	// or ErrNoAccount if it does not exist. Mutating the returned value
	// must not affect stored state.
	GetAccount(ctx context.Context, id string) (models.Account, error)

	// SaveAccounts persists both updated accounts in one atomic scope.
	// A concurrent reader must observe either both new balances or both
	// old ones, never a one-sided update.
	SaveAccounts(ctx context.Context, a, b models.Account) error
}
