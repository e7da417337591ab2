// Package memstore provides in-memory implementations of the outbound
// repositories. Stores are independently locked so reads on one auction never
// contend with writes on another; per-auction write ordering is the engine's
// job, not the store's.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// AuctionStore is an in-memory auction repository
type AuctionStore struct {
	mu       sync.RWMutex
	auctions map[uuid.UUID]*auction.Auction
	order    []uuid.UUID
}

// NewAuctionStore creates an empty auction store
func NewAuctionStore() *AuctionStore {
	return &AuctionStore{auctions: make(map[uuid.UUID]*auction.Auction)}
}

func (s *AuctionStore) Create(ctx context.Context, a *auction.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	s.auctions[a.ID] = &cp
	s.order = append(s.order, a.ID)
	return nil
}

func (s *AuctionStore) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[id]
	if !ok {
		return nil, shared.ErrAuctionNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *AuctionStore) List(ctx context.Context, status *auction.Status, page, pageSize int) ([]*auction.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*auction.Auction
	for _, id := range s.order {
		a := s.auctions[id]
		if status != nil && a.Status != *status {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}
	return paginate(matched, page, pageSize), nil
}

func (s *AuctionStore) GetActiveByItemID(ctx context.Context, itemID uuid.UUID) ([]*auction.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*auction.Auction
	for _, id := range s.order {
		a := s.auctions[id]
		if a.ItemID != itemID || a.IsTerminal() || a.Status == auction.StatusEnded {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}
	return matched, nil
}

func (s *AuctionStore) Update(ctx context.Context, a *auction.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[a.ID]; !ok {
		return shared.ErrAuctionNotFound
	}
	cp := *a
	s.auctions[a.ID] = &cp
	return nil
}

// paginate slices out one page using the 1-based page convention of the list
// endpoints; page <= 0 means the first page, pageSize <= 0 means everything.
func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
