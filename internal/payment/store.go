package payment

import (
	"context"
	"sync"
	"time"
)

// OrderStore persists checkout orders keyed by their payment intent.
type OrderStore interface {
	Create(ctx context.Context, o *Order) error
	FindByIntent(ctx context.Context, intentID string) (*Order, error)
	SetStatus(ctx context.Context, intentID, status string) error
}

// MemoryOrderStore implements OrderStore with in-process concurrency safety.
// Used in tests and single-node development runs without Postgres.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*Order // intentID -> order
}

// NewMemoryOrderStore creates an empty order store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]*Order)}
}

func (s *MemoryOrderStore) Create(ctx context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	cp := *o
	s.orders[o.IntentID] = &cp
	return nil
}

func (s *MemoryOrderStore) FindByIntent(ctx context.Context, intentID string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[intentID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *MemoryOrderStore) SetStatus(ctx context.Context, intentID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[intentID]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}
