// Package store persists the append-only transaction ledger and the
// per-transaction approval sets. Implementations are dumb CRUD; the state
// machine ordering lives in the wallet service, which serializes mutations.
package store

import (
	"context"
	"sync"
	"time"

	"vaultgate/internal/wallet/models"
	id "vaultgate/pkg/domain"
	"vaultgate/pkg/platform/sentinel"
)

// Memory is the in-memory ledger. Ids are dense slice indexes, so allocation
// order 0,1,2,... falls out of append.
type Memory struct {
	mu           sync.RWMutex
	transactions []models.Transaction
	approvals    map[uint64]map[id.Address]struct{}
}

func NewMemory() *Memory {
	return &Memory{approvals: make(map[uint64]map[id.Address]struct{})}
}

// Append assigns the next sequential id and stores the transaction.
func (s *Memory) Append(_ context.Context, recipient id.Address, value int64) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := models.Transaction{
		ID:        uint64(len(s.transactions)),
		Recipient: recipient,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	s.transactions = append(s.transactions, tx)
	return &tx, nil
}

// Get returns a copy of the transaction, or sentinel.ErrNotFound.
func (s *Memory) Get(_ context.Context, txID uint64) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if txID >= uint64(len(s.transactions)) {
		return nil, sentinel.ErrNotFound
	}
	tx := s.transactions[txID]
	return &tx, nil
}

// Count returns the number of transactions ever proposed.
func (s *Memory) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.transactions)), nil
}

// AddApproval records a first-time approval and bumps the count.
func (s *Memory) AddApproval(_ context.Context, txID uint64, owner id.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txID >= uint64(len(s.transactions)) {
		return sentinel.ErrNotFound
	}
	set := s.approvals[txID]
	if set == nil {
		set = make(map[id.Address]struct{})
		s.approvals[txID] = set
	}
	if _, ok := set[owner]; ok {
		return sentinel.ErrConflict
	}
	set[owner] = struct{}{}
	s.transactions[txID].ApprovalCount++
	return nil
}

// HasApproved reports approval-set membership.
func (s *Memory) HasApproved(_ context.Context, txID uint64, owner id.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if txID >= uint64(len(s.transactions)) {
		return false, sentinel.ErrNotFound
	}
	_, ok := s.approvals[txID][owner]
	return ok, nil
}

// SetExecuted flips the executed flag. Used both to commit before the value
// release and to roll back when the release fails.
func (s *Memory) SetExecuted(_ context.Context, txID uint64, executed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txID >= uint64(len(s.transactions)) {
		return sentinel.ErrNotFound
	}
	s.transactions[txID].Executed = executed
	return nil
}
