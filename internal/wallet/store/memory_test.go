package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "vaultgate/pkg/domain"
	"vaultgate/pkg/platform/sentinel"
)

var (
	approver1 = id.Address("0x00000000000000000000000000000000000000b1")
	approver2 = id.Address("0x00000000000000000000000000000000000000b2")
	payee     = id.Address("0x00000000000000000000000000000000000000c1")
)

type MemoryLedgerSuite struct {
	suite.Suite
	ctx   context.Context
	store *Memory
}

func (s *MemoryLedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemory()
}

func TestMemoryLedgerSuite(t *testing.T) {
	suite.Run(t, new(MemoryLedgerSuite))
}

func (s *MemoryLedgerSuite) TestAppendAssignsDenseIDs() {
	for want := uint64(0); want < 5; want++ {
		tx, err := s.store.Append(s.ctx, payee, int64(want)*10)
		s.Require().NoError(err)
		s.Equal(want, tx.ID)
		s.False(tx.Executed)
		s.Zero(tx.ApprovalCount)
		s.False(tx.CreatedAt.IsZero())
	}

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(5), count)
}

func (s *MemoryLedgerSuite) TestGetUnknownID() {
	_, err := s.store.Get(s.ctx, 0)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryLedgerSuite) TestGetReturnsCopy() {
	tx, err := s.store.Append(s.ctx, payee, 7)
	s.Require().NoError(err)

	got, err := s.store.Get(s.ctx, tx.ID)
	s.Require().NoError(err)
	got.Executed = true

	fresh, err := s.store.Get(s.ctx, tx.ID)
	s.Require().NoError(err)
	s.False(fresh.Executed)
}

func (s *MemoryLedgerSuite) TestAddApprovalBumpsCount() {
	tx, err := s.store.Append(s.ctx, payee, 7)
	s.Require().NoError(err)

	s.Require().NoError(s.store.AddApproval(s.ctx, tx.ID, approver1))
	s.Require().NoError(s.store.AddApproval(s.ctx, tx.ID, approver2))

	got, err := s.store.Get(s.ctx, tx.ID)
	s.Require().NoError(err)
	s.Equal(2, got.ApprovalCount)

	approved, err := s.store.HasApproved(s.ctx, tx.ID, approver1)
	s.Require().NoError(err)
	s.True(approved)
}

func (s *MemoryLedgerSuite) TestAddApprovalDuplicate() {
	tx, err := s.store.Append(s.ctx, payee, 7)
	s.Require().NoError(err)

	s.Require().NoError(s.store.AddApproval(s.ctx, tx.ID, approver1))
	s.Require().ErrorIs(s.store.AddApproval(s.ctx, tx.ID, approver1), sentinel.ErrConflict)

	got, err := s.store.Get(s.ctx, tx.ID)
	s.Require().NoError(err)
	s.Equal(1, got.ApprovalCount)
}

func (s *MemoryLedgerSuite) TestAddApprovalUnknownID() {
	s.Require().ErrorIs(s.store.AddApproval(s.ctx, 9, approver1), sentinel.ErrNotFound)
}

func (s *MemoryLedgerSuite) TestHasApprovedUnknownID() {
	_, err := s.store.HasApproved(s.ctx, 9, approver1)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryLedgerSuite) TestHasApprovedDistinguishesOwners() {
	tx, err := s.store.Append(s.ctx, payee, 7)
	s.Require().NoError(err)
	s.Require().NoError(s.store.AddApproval(s.ctx, tx.ID, approver1))

	approved, err := s.store.HasApproved(s.ctx, tx.ID, approver2)
	s.Require().NoError(err)
	s.False(approved)
}

func (s *MemoryLedgerSuite) TestSetExecutedRoundTrip() {
	tx, err := s.store.Append(s.ctx, payee, 7)
	s.Require().NoError(err)

	s.Require().NoError(s.store.SetExecuted(s.ctx, tx.ID, true))
	got, err := s.store.Get(s.ctx, tx.ID)
	s.Require().NoError(err)
	s.True(got.Executed)

	// Rollback path.
	s.Require().NoError(s.store.SetExecuted(s.ctx, tx.ID, false))
	got, err = s.store.Get(s.ctx, tx.ID)
	s.Require().NoError(err)
	s.False(got.Executed)
}

func (s *MemoryLedgerSuite) TestSetExecutedUnknownID() {
	s.Require().ErrorIs(s.store.SetExecuted(s.ctx, 9, true), sentinel.ErrNotFound)
}
