package treasury

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	id "vaultgate/pkg/domain"
)

// PostgresStore keeps the pool balance in a single-row table and recipient
// accounts in a second table. Transfer runs in one DB transaction with the
// pool row locked, so the balance check and the debit cannot be split by a
// concurrent writer.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the treasury tables and seeds the pool row.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS treasury_pool (
			id      BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
			balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0)
		);
		INSERT INTO treasury_pool (id, balance) VALUES (TRUE, 0)
			ON CONFLICT (id) DO NOTHING;
		CREATE TABLE IF NOT EXISTS treasury_accounts (
			address TEXT PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
			closed  BOOLEAN NOT NULL DEFAULT FALSE
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate treasury schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddToPool(ctx context.Context, amount int64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE treasury_pool SET balance = balance + $1 WHERE id
	`, amount)
	if err != nil {
		return fmt.Errorf("credit pool: %w", err)
	}
	return nil
}

func (s *PostgresStore) PoolBalance(ctx context.Context) (int64, error) {
	var balance int64
	if err := s.pool.QueryRow(ctx, `SELECT balance FROM treasury_pool WHERE id`).Scan(&balance); err != nil {
		return 0, fmt.Errorf("read pool balance: %w", err)
	}
	return balance, nil
}

func (s *PostgresStore) Transfer(ctx context.Context, recipient id.Address, amount int64) error {
	dbTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	defer dbTx.Rollback(ctx)

	var closed bool
	err = dbTx.QueryRow(ctx, `
		SELECT closed FROM treasury_accounts WHERE address = $1
	`, recipient.String()).Scan(&closed)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check recipient account: %w", err)
	}
	if closed {
		return ErrAccountClosed
	}

	var balance int64
	err = dbTx.QueryRow(ctx, `
		SELECT balance FROM treasury_pool WHERE id FOR UPDATE
	`).Scan(&balance)
	if err != nil {
		return fmt.Errorf("lock pool balance: %w", err)
	}
	if balance < amount {
		return ErrInsufficientFunds
	}

	if _, err := dbTx.Exec(ctx, `
		UPDATE treasury_pool SET balance = balance - $1 WHERE id
	`, amount); err != nil {
		return fmt.Errorf("debit pool: %w", err)
	}
	if _, err := dbTx.Exec(ctx, `
		INSERT INTO treasury_accounts (address, balance) VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET balance = treasury_accounts.balance + $2
	`, recipient.String(), amount); err != nil {
		return fmt.Errorf("credit recipient: %w", err)
	}
	return dbTx.Commit(ctx)
}

func (s *PostgresStore) AccountBalance(ctx context.Context, addr id.Address) (int64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx, `
		SELECT balance FROM treasury_accounts WHERE address = $1
	`, addr.String()).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read account balance: %w", err)
	}
	return balance, nil
}

func (s *PostgresStore) SetAccountClosed(ctx context.Context, addr id.Address, closed bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO treasury_accounts (address, closed) VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET closed = $2
	`, addr.String(), closed)
	if err != nil {
		return fmt.Errorf("set account closed: %w", err)
	}
	return nil
}
