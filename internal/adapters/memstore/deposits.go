package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/deposit"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

type depositKey struct {
	auctionID uuid.UUID
	userID    uuid.UUID
}

// DepositStore is an in-memory deposit repository keyed by (auction, user)
type DepositStore struct {
	mu       sync.RWMutex
	deposits map[depositKey]*deposit.Deposit
}

// NewDepositStore creates an empty deposit store
func NewDepositStore() *DepositStore {
	return &DepositStore{deposits: make(map[depositKey]*deposit.Deposit)}
}

func (s *DepositStore) Create(ctx context.Context, d *deposit.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *d
	s.deposits[depositKey{d.AuctionID, d.UserID}] = &cp
	return nil
}

func (s *DepositStore) Get(ctx context.Context, auctionID, userID uuid.UUID) (*deposit.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deposits[depositKey{auctionID, userID}]
	if !ok {
		return nil, shared.ErrDepositNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *DepositStore) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*deposit.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*deposit.Deposit
	for key, d := range s.deposits {
		if key.auctionID != auctionID {
			continue
		}
		cp := *d
		matched = append(matched, &cp)
	}
	return matched, nil
}

func (s *DepositStore) Update(ctx context.Context, d *deposit.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := depositKey{d.AuctionID, d.UserID}
	if _, ok := s.deposits[key]; !ok {
		return shared.ErrDepositNotFound
	}
	cp := *d
	s.deposits[key] = &cp
	return nil
}
