package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// BidStore is an in-memory append-only bid ledger, sharded per auction. The
// auction store reference resolves owners for the scorer's cross-auction
// shill-history query.
type BidStore struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]*bid.Bid
	byAuction map[uuid.UUID][]uuid.UUID
	auctions  *AuctionStore
}

// NewBidStore creates an empty bid ledger backed by the given auction store
func NewBidStore(auctions *AuctionStore) *BidStore {
	return &BidStore{
		byID:      make(map[uuid.UUID]*bid.Bid),
		byAuction: make(map[uuid.UUID][]uuid.UUID),
		auctions:  auctions,
	}
}

func (s *BidStore) Append(ctx context.Context, b *bid.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *b
	s.byID[b.ID] = &cp
	s.byAuction[b.AuctionID] = append(s.byAuction[b.AuctionID], b.ID)
	return nil
}

func (s *BidStore) GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, shared.ErrNoBidsFound
	}
	cp := *b
	return &cp, nil
}

func (s *BidStore) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byAuction[auctionID]
	bids := make([]*bid.Bid, 0, len(ids))
	for _, id := range ids {
		cp := *s.byID[id]
		bids = append(bids, &cp)
	}
	return bids, nil
}

func (s *BidStore) GetByBidder(ctx context.Context, auctionID, bidderID uuid.UUID) ([]*bid.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byAuction[auctionID]
	var bids []*bid.Bid
	for i := len(ids) - 1; i >= 0; i-- {
		b := s.byID[ids[i]]
		if b.BidderID == bidderID {
			cp := *b
			bids = append(bids, &cp)
		}
	}
	return bids, nil
}

func (s *BidStore) CountByBidderOnOwner(ctx context.Context, bidderID, ownerID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for auctionID, ids := range s.byAuction {
		a, err := s.auctions.GetByID(ctx, auctionID)
		if err != nil || a.OwnerID != ownerID {
			continue
		}
		for _, id := range ids {
			if s.byID[id].BidderID == bidderID {
				count++
			}
		}
	}
	return count, nil
}

func (s *BidStore) GetRecentByBidder(ctx context.Context, auctionID, bidderID uuid.UUID, since time.Time) ([]*bid.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byAuction[auctionID]
	var bids []*bid.Bid
	for i := len(ids) - 1; i >= 0; i-- {
		b := s.byID[ids[i]]
		if b.BidderID != bidderID || b.PlacedAt.Before(since) {
			continue
		}
		cp := *b
		bids = append(bids, &cp)
	}
	return bids, nil
}

func (s *BidStore) Update(ctx context.Context, b *bid.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[b.ID]; !ok {
		return shared.ErrNoBidsFound
	}
	cp := *b
	s.byID[b.ID] = &cp
	return nil
}
