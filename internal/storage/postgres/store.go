package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver
	interfaces "github.com/sheikh-saqib/fx-transfer-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/models"
	"github.com/shopspring/decimal"
)

// Store backs the account and rate interfaces with postgres.
//
// Tables:
//
//	accounts(id text primary key, owner text, currency text,
//	         balance numeric, version bigint)
//	fx_rates(from_currency text, to_currency text, rate numeric,
//	         primary key (from_currency, to_currency))
type Store struct {
	db *sql.DB
}

// Open connects to postgres with the given URL and verifies the
// connection before returning a store.
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetAccount(ctx context.Context, id string) (models.Account, error) {
	const query = `SELECT id, owner, currency, balance, version FROM accounts WHERE id = $1`

	var account models.Account
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Owner,
		&account.Currency,
		&account.Balance,
		&account.Version,
	)
	if err == sql.ErrNoRows {
		return models.Account{}, fmt.Errorf("%w: %s", interfaces.ErrNoAccount, id)
	}
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// SaveAccounts writes both balances inside one database transaction,
// so other readers observe both updates or neither. Each UPDATE is
// guarded by the previous version number; under the engine's locking
// discipline a mismatch means something outside the engine touched the
// row, and the whole transaction rolls back.
func (s *Store) SaveAccounts(ctx context.Context, a, b models.Account) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if err = saveAccount(ctx, dbTx, a); err != nil {
		return err
	}
	if err = saveAccount(ctx, dbTx, b); err != nil {
		return err
	}
	return dbTx.Commit()
}

func saveAccount(ctx context.Context, dbTx *sql.Tx, account models.Account) error {
	const query = `UPDATE accounts SET balance = $1, version = $2
	WHERE id = $3 AND version = $4`

	res, err := dbTx.ExecContext(ctx, query,
		account.Balance, account.Version, account.ID, account.Version-1)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("account %s modified concurrently (version %d)",
			account.ID, account.Version-1)
	}
	return nil
}

func (s *Store) Lookup(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	const query = `SELECT rate FROM fx_rates WHERE from_currency = $1 AND to_currency = $2`

	var rate decimal.Decimal
	err := s.db.QueryRowContext(ctx, query, fromCurrency, toCurrency).Scan(&rate)
	if err == sql.ErrNoRows {
		return decimal.Decimal{}, fmt.Errorf("%w: %s->%s", interfaces.ErrNoRate, fromCurrency, toCurrency)
	}
	if err != nil {
		return decimal.Decimal{}, err
	}
	return rate, nil
}

var (
	_ interfaces.AccountStore = (*Store)(nil)
	_ interfaces.RateStore    = (*Store)(nil)
)
