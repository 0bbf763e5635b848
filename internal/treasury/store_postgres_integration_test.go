//go:build integration

package treasury

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"vaultgate/pkg/testutil/containers"
)

type PostgresTreasurySuite struct {
	suite.Suite
	ctx   context.Context
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func (s *PostgresTreasurySuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgresStore(s.pg.Pool)
	s.Require().NoError(s.store.Migrate(s.ctx))
}

func (s *PostgresTreasurySuite) SetupTest() {
	_, err := s.pg.Pool.Exec(s.ctx, `UPDATE treasury_pool SET balance = 0 WHERE id`)
	s.Require().NoError(err)
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "treasury_accounts"))
}

func TestPostgresTreasurySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresTreasurySuite))
}

func (s *PostgresTreasurySuite) TestMigrateIsIdempotent() {
	s.Require().NoError(s.store.Migrate(s.ctx))

	balance, err := s.store.PoolBalance(s.ctx)
	s.Require().NoError(err)
	s.Zero(balance)
}

func (s *PostgresTreasurySuite) TestAddToPool() {
	s.Require().NoError(s.store.AddToPool(s.ctx, 30))
	s.Require().NoError(s.store.AddToPool(s.ctx, 12))

	balance, err := s.store.PoolBalance(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(42), balance)
}

func (s *PostgresTreasurySuite) TestTransfer() {
	s.Require().NoError(s.store.AddToPool(s.ctx, 100))

	s.Require().NoError(s.store.Transfer(s.ctx, payee, 30))
	s.Require().NoError(s.store.Transfer(s.ctx, payee, 5))

	pool, err := s.store.PoolBalance(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(65), pool)

	credited, err := s.store.AccountBalance(s.ctx, payee)
	s.Require().NoError(err)
	s.Equal(int64(35), credited)
}

func (s *PostgresTreasurySuite) TestTransferInsufficientFunds() {
	s.Require().NoError(s.store.AddToPool(s.ctx, 10))

	s.Require().ErrorIs(s.store.Transfer(s.ctx, payee, 11), ErrInsufficientFunds)

	// The failed transfer left no partial state.
	pool, err := s.store.PoolBalance(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(10), pool)

	credited, err := s.store.AccountBalance(s.ctx, payee)
	s.Require().NoError(err)
	s.Zero(credited)
}

func (s *PostgresTreasurySuite) TestTransferClosedAccount() {
	s.Require().NoError(s.store.AddToPool(s.ctx, 10))
	s.Require().NoError(s.store.SetAccountClosed(s.ctx, payee, true))

	s.Require().ErrorIs(s.store.Transfer(s.ctx, payee, 5), ErrAccountClosed)

	s.Require().NoError(s.store.SetAccountClosed(s.ctx, payee, false))
	s.Require().NoError(s.store.Transfer(s.ctx, payee, 5))
}

func (s *PostgresTreasurySuite) TestAccountBalanceUnknownAddress() {
	balance, err := s.store.AccountBalance(s.ctx, depositor)
	s.Require().NoError(err)
	s.Zero(balance)
}
