package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaultgate/internal/wallet/models"
	id "vaultgate/pkg/domain"
	"vaultgate/pkg/platform/sentinel"
)

// Postgres persists the ledger in two tables: transactions and approvals.
// Dense id allocation relies on the wallet service serializing proposals; the
// insert still runs in a transaction so a concurrent writer from another
// process hits the primary key instead of creating a gap.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the ledger tables when they do not exist yet.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id             BIGINT PRIMARY KEY,
			recipient      TEXT NOT NULL,
			value          BIGINT NOT NULL CHECK (value >= 0),
			approval_count INT NOT NULL DEFAULT 0,
			executed       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS approvals (
			transaction_id BIGINT NOT NULL REFERENCES transactions (id),
			owner          TEXT NOT NULL,
			approved_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (transaction_id, owner)
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate ledger schema: %w", err)
	}
	return nil
}

func (s *Postgres) Append(ctx context.Context, recipient id.Address, value int64) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.pool.QueryRow(ctx, `
		INSERT INTO transactions (id, recipient, value)
		VALUES ((SELECT COALESCE(MAX(id) + 1, 0) FROM transactions), $1, $2)
		RETURNING id, recipient, value, approval_count, executed, created_at
	`, recipient.String(), value).Scan(
		&tx.ID, &tx.Recipient, &tx.Value, &tx.ApprovalCount, &tx.Executed, &tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}
	return &tx, nil
}

func (s *Postgres) Get(ctx context.Context, txID uint64) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.pool.QueryRow(ctx, `
		SELECT id, recipient, value, approval_count, executed, created_at
		FROM transactions
		WHERE id = $1
	`, txID).Scan(&tx.ID, &tx.Recipient, &tx.Value, &tx.ApprovalCount, &tx.Executed, &tx.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", txID, err)
	}
	return &tx, nil
}

func (s *Postgres) Count(ctx context.Context) (uint64, error) {
	var count uint64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func (s *Postgres) AddApproval(ctx context.Context, txID uint64, owner id.Address) error {
	dbTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin approval: %w", err)
	}
	defer dbTx.Rollback(ctx)

	_, err = dbTx.Exec(ctx, `
		INSERT INTO approvals (transaction_id, owner) VALUES ($1, $2)
	`, txID, owner.String())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // duplicate approval
				return sentinel.ErrConflict
			case "23503": // unknown transaction
				return sentinel.ErrNotFound
			}
		}
		return fmt.Errorf("record approval: %w", err)
	}

	tag, err := dbTx.Exec(ctx, `
		UPDATE transactions SET approval_count = approval_count + 1 WHERE id = $1
	`, txID)
	if err != nil {
		return fmt.Errorf("increment approval count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return dbTx.Commit(ctx)
}

func (s *Postgres) HasApproved(ctx context.Context, txID uint64, owner id.Address) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM approvals WHERE transaction_id = $1 AND owner = $2
		)
	`, txID, owner.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check approval: %w", err)
	}
	if !exists {
		// Distinguish "not approved" from "no such transaction".
		var txExists bool
		err := s.pool.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)
		`, txID).Scan(&txExists)
		if err != nil {
			return false, fmt.Errorf("check transaction existence: %w", err)
		}
		if !txExists {
			return false, sentinel.ErrNotFound
		}
	}
	return exists, nil
}

func (s *Postgres) SetExecuted(ctx context.Context, txID uint64, executed bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE transactions SET executed = $2 WHERE id = $1
	`, txID, executed)
	if err != nil {
		return fmt.Errorf("set executed flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
