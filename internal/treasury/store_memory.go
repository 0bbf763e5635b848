package treasury

import (
	"context"
	"sync"

	id "vaultgate/pkg/domain"
)

// MemoryStore keeps all balances in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	pool     int64
	accounts map[id.Address]int64
	closed   map[id.Address]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[id.Address]int64),
		closed:   make(map[id.Address]bool),
	}
}

func (s *MemoryStore) AddToPool(_ context.Context, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool += amount
	return nil
}

func (s *MemoryStore) PoolBalance(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool, nil
}

func (s *MemoryStore) Transfer(_ context.Context, recipient id.Address, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed[recipient] {
		return ErrAccountClosed
	}
	if s.pool < amount {
		return ErrInsufficientFunds
	}
	s.pool -= amount
	s.accounts[recipient] += amount
	return nil
}

func (s *MemoryStore) AccountBalance(_ context.Context, addr id.Address) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[addr], nil
}

func (s *MemoryStore) SetAccountClosed(_ context.Context, addr id.Address, closed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed[addr] = closed
	return nil
}
