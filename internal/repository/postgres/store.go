package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accountsys/ledger/internal/ledger"
)

// Store is the PostgreSQL implementation of ledger.AccountStore.
// Optimistic concurrency rides on the accounts.version column: Save only
// updates a row whose stored version matches the one the caller loaded.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	acc_num         UUID PRIMARY KEY,
	name            TEXT NOT NULL,
	address         TEXT NOT NULL,
	email           TEXT NOT NULL,
	overdraft_limit NUMERIC NOT NULL,
	balance         NUMERIC NOT NULL,
	version         BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	seq               BIGSERIAL PRIMARY KEY,
	id                UUID NOT NULL UNIQUE,
	account_number    UUID NOT NULL REFERENCES accounts (acc_num) ON DELETE CASCADE,
	type              TEXT NOT NULL,
	amount            NUMERIC NOT NULL,
	occurred_at       TIMESTAMPTZ NOT NULL,
	resulting_balance NUMERIC NOT NULL
);
`

// InitSchema creates the accounts and transactions tables if they do not
// exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

func (s *Store) Load(ctx context.Context, accountNumber uuid.UUID) (*ledger.Account, error) {
	a := &ledger.Account{Transactions: []ledger.Transaction{}}
	query := `
		SELECT acc_num, name, address, email, overdraft_limit, balance, version
		FROM accounts
		WHERE acc_num = $1
	`
	err := s.db.QueryRow(ctx, query, accountNumber).Scan(
		&a.AccountNumber, &a.Profile.Name, &a.Profile.Address, &a.Profile.Email,
		&a.OverdraftLimit, &a.Balance, &a.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, err
	}

	query = `
		SELECT id, account_number, type, amount, occurred_at, resulting_balance
		FROM transactions
		WHERE account_number = $1
		ORDER BY occurred_at, seq
	`
	rows, err := s.db.Query(ctx, query, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t ledger.Transaction
		if err := rows.Scan(&t.ID, &t.AccountNumber, &t.Type, &t.Amount, &t.OccurredAt, &t.ResultingBalance); err != nil {
			return nil, err
		}
		a.Transactions = append(a.Transactions, t)
	}
	return a, rows.Err()
}

func (s *Store) Save(ctx context.Context, account *ledger.Account) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if account.Version == 0 {
		tag, err := tx.Exec(ctx, `
			INSERT INTO accounts (acc_num, name, address, email, overdraft_limit, balance, version)
			VALUES ($1, $2, $3, $4, $5, $6, 1)
			ON CONFLICT (acc_num) DO NOTHING`,
			account.AccountNumber, account.Profile.Name, account.Profile.Address,
			account.Profile.Email, account.OverdraftLimit, account.Balance,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ledger.ErrConflict
		}
	} else {
		tag, err := tx.Exec(ctx, `
			UPDATE accounts
			SET name = $2, address = $3, email = $4, overdraft_limit = $5, balance = $6, version = version + 1
			WHERE acc_num = $1 AND version = $7`,
			account.AccountNumber, account.Profile.Name, account.Profile.Address,
			account.Profile.Email, account.OverdraftLimit, account.Balance, account.Version,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ledger.ErrConflict
		}
	}

	// History is append-only; rows already present are left untouched.
	for _, t := range account.Transactions {
		_, err := tx.Exec(ctx, `
			INSERT INTO transactions (id, account_number, type, amount, occurred_at, resulting_balance)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			t.ID, t.AccountNumber, t.Type, t.Amount, t.OccurredAt, t.ResultingBalance,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	account.Version++
	return nil
}

func (s *Store) Delete(ctx context.Context, accountNumber uuid.UUID) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM accounts WHERE acc_num = $1", accountNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

func (s *Store) LoadAll(ctx context.Context) ([]*ledger.Account, error) {
	// Repeatable read gives a single consistent snapshot across both tables.
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT acc_num, name, address, email, overdraft_limit, balance, version
		FROM accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*ledger.Account
	byNumber := make(map[uuid.UUID]*ledger.Account)
	for rows.Next() {
		a := &ledger.Account{Transactions: []ledger.Transaction{}}
		if err := rows.Scan(
			&a.AccountNumber, &a.Profile.Name, &a.Profile.Address, &a.Profile.Email,
			&a.OverdraftLimit, &a.Balance, &a.Version,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
		byNumber[a.AccountNumber] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	txRows, err := tx.Query(ctx, `
		SELECT id, account_number, type, amount, occurred_at, resulting_balance
		FROM transactions
		ORDER BY occurred_at, seq`)
	if err != nil {
		return nil, err
	}
	defer txRows.Close()

	for txRows.Next() {
		var t ledger.Transaction
		if err := txRows.Scan(&t.ID, &t.AccountNumber, &t.Type, &t.Amount, &t.OccurredAt, &t.ResultingBalance); err != nil {
			return nil, err
		}
		if a, ok := byNumber[t.AccountNumber]; ok {
			a.Transactions = append(a.Transactions, t)
		}
	}
	if err := txRows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return accounts, nil
}

var _ ledger.AccountStore = (*Store)(nil)
