package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name     string
		page     int
		pageSize int
		want     []int
	}{
		{"first page", 1, 2, []int{1, 2}},
		{"middle page", 2, 2, []int{3, 4}},
		{"short last page", 3, 2, []int{5}},
		{"past the end", 4, 2, nil},
		{"zero page defaults to first", 0, 3, []int{1, 2, 3}},
		{"zero size returns everything", 1, 0, []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paginate(items, tt.page, tt.pageSize))
		})
	}
}

func TestAuctionStoreCopySemantics(t *testing.T) {
	store := NewAuctionStore()
	ctx := context.Background()

	a := &auction.Auction{
		ID:            uuid.New(),
		ItemID:        uuid.New(),
		OwnerID:       uuid.New(),
		Format:        auction.FormatEnglish,
		StartingPrice: 100,
		CurrentPrice:  100,
		Status:        auction.StatusActive,
	}
	require.NoError(t, store.Create(ctx, a))

	// mutating the caller's struct does not leak into the store
	a.CurrentPrice = 999
	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.CurrentPrice)

	// and neither does mutating a read result
	got.CurrentPrice = 777
	again, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, again.CurrentPrice)
}

func TestAuctionStoreGetActiveByItemID(t *testing.T) {
	store := NewAuctionStore()
	ctx := context.Background()
	itemID := uuid.New()

	seed := func(status auction.Status) *auction.Auction {
		a := &auction.Auction{ID: uuid.New(), ItemID: itemID, Status: status}
		require.NoError(t, store.Create(ctx, a))
		return a
	}

	seed(auction.StatusEnded)
	seed(auction.StatusCancelled)
	seed(auction.StatusCompleted)
	live := seed(auction.StatusScheduled)

	got, err := store.GetActiveByItemID(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, live.ID, got[0].ID)
}

func TestAuctionStoreListByStatus(t *testing.T) {
	store := NewAuctionStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(ctx, &auction.Auction{ID: uuid.New(), ItemID: uuid.New(), Status: auction.StatusActive}))
	}
	require.NoError(t, store.Create(ctx, &auction.Auction{ID: uuid.New(), ItemID: uuid.New(), Status: auction.StatusEnded}))

	active := auction.StatusActive
	got, err := store.List(ctx, &active, 1, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	all, err := store.List(ctx, nil, 1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestBidStoreOrdering(t *testing.T) {
	auctions := NewAuctionStore()
	store := NewBidStore(auctions)
	ctx := context.Background()

	auctionID := uuid.New()
	bidder := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		b := &bid.Bid{
			ID:        uuid.New(),
			AuctionID: auctionID,
			BidderID:  bidder,
			Amount:    float64(100 + i),
			Status:    bid.StatusActive,
			PlacedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Append(ctx, b))
		ids = append(ids, b.ID)
	}

	// ledger order: oldest first
	byAuction, err := store.GetByAuctionID(ctx, auctionID)
	require.NoError(t, err)
	require.Len(t, byAuction, 3)
	assert.Equal(t, ids[0], byAuction[0].ID)

	// bidder view: newest first
	byBidder, err := store.GetByBidder(ctx, auctionID, bidder)
	require.NoError(t, err)
	require.Len(t, byBidder, 3)
	assert.Equal(t, ids[2], byBidder[0].ID)
}

func TestBidStoreGetRecentByBidder(t *testing.T) {
	auctions := NewAuctionStore()
	store := NewBidStore(auctions)
	ctx := context.Background()

	auctionID := uuid.New()
	bidder := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Append(ctx, &bid.Bid{
			ID:        uuid.New(),
			AuctionID: auctionID,
			BidderID:  bidder,
			Amount:    100,
			PlacedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := store.GetRecentByBidder(ctx, auctionID, bidder, base.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// newest first
	assert.True(t, recent[0].PlacedAt.After(recent[1].PlacedAt))
}

func TestBidStoreCountByBidderOnOwner(t *testing.T) {
	auctions := NewAuctionStore()
	store := NewBidStore(auctions)
	ctx := context.Background()

	owner := uuid.New()
	otherOwner := uuid.New()
	bidder := uuid.New()

	seedAuctionWithBids := func(ownerID uuid.UUID, bids int) {
		a := &auction.Auction{ID: uuid.New(), ItemID: uuid.New(), OwnerID: ownerID, Status: auction.StatusEnded}
		require.NoError(t, auctions.Create(ctx, a))
		for i := 0; i < bids; i++ {
			require.NoError(t, store.Append(ctx, &bid.Bid{
				ID:        uuid.New(),
				AuctionID: a.ID,
				BidderID:  bidder,
				Amount:    100,
			}))
		}
	}

	seedAuctionWithBids(owner, 2)
	seedAuctionWithBids(owner, 3)
	seedAuctionWithBids(otherOwner, 4)

	count, err := store.CountByBidderOnOwner(ctx, bidder, owner)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestFingerprintStoreObserve(t *testing.T) {
	store := NewFingerprintStore()
	ctx := context.Background()
	user := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Observe(ctx, user, "fp-1", "10.0.0.1", base))
	require.NoError(t, store.Observe(ctx, user, "fp-1", "10.0.0.2", base.Add(time.Minute)))
	require.NoError(t, store.Observe(ctx, user, "fp-1", "10.0.0.1", base.Add(2*time.Minute)))

	prints, err := store.GetByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, prints, 1)
	fp := prints[0]
	assert.Equal(t, 3, fp.UseCount)
	assert.ElementsMatch(t, []string{"10.0.0.1", "10.0.0.2"}, fp.Origins)
	assert.Equal(t, base, fp.FirstSeen)
	assert.Equal(t, base.Add(2*time.Minute), fp.LastSeen)
}

func TestFingerprintStoreIgnoresEmptyFingerprint(t *testing.T) {
	store := NewFingerprintStore()
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, store.Observe(ctx, user, "", "10.0.0.1", time.Now()))

	prints, err := store.GetByUser(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, prints)
}

func TestFingerprintStoreSecondaryIndexes(t *testing.T) {
	store := NewFingerprintStore()
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()
	now := time.Now()

	require.NoError(t, store.Observe(ctx, userA, "fp-shared", "10.0.0.1", now))
	require.NoError(t, store.Observe(ctx, userB, "fp-shared", "10.0.0.2", now))
	require.NoError(t, store.Observe(ctx, userB, "fp-own", "10.0.0.1", now))

	byPrint, err := store.UsersByFingerprint(ctx, "fp-shared")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{userA, userB}, byPrint)

	byOrigin, err := store.UsersByOrigin(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{userA, userB}, byOrigin)

	none, err := store.UsersByFingerprint(ctx, "fp-unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAlertStoreListFilters(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	auctionID := uuid.New()
	bidder := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seed := func(aID uuid.UUID, status fraud.AlertStatus, offset time.Duration) *fraud.Alert {
		a := &fraud.Alert{
			ID:        uuid.New(),
			AuctionID: aID,
			BidderID:  bidder,
			Type:      fraud.AlertShillBidding,
			Status:    status,
			CreatedAt: base.Add(offset),
		}
		require.NoError(t, store.Create(ctx, a))
		return a
	}

	seed(auctionID, fraud.AlertDetected, 0)
	newest := seed(auctionID, fraud.AlertDetected, time.Minute)
	seed(uuid.New(), fraud.AlertResolved, 2*time.Minute)

	t.Run("by auction newest first", func(t *testing.T) {
		got, total, err := store.List(ctx, outbound.AlertFilter{AuctionID: &auctionID}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, got, 2)
		assert.Equal(t, newest.ID, got[0].ID)
	})

	t.Run("by status", func(t *testing.T) {
		resolved := fraud.AlertResolved
		got, total, err := store.List(ctx, outbound.AlertFilter{Status: &resolved}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, got, 1)
	})

	t.Run("total counts beyond the page", func(t *testing.T) {
		got, total, err := store.List(ctx, outbound.AlertFilter{}, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, got, 2)
	})
}

func TestAlertStoreUpdateUnknown(t *testing.T) {
	store := NewAlertStore()
	err := store.Update(context.Background(), &fraud.Alert{ID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrAlertNotFound)
}

func TestUserAndItemStores(t *testing.T) {
	users := NewUserStore()
	items := NewItemStore()
	ctx := context.Background()

	_, err := users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
	_, err = items.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrItemNotFound)

	u := &shared.User{ID: uuid.New(), Name: "seller"}
	require.NoError(t, users.Create(ctx, u))
	gotUser, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "seller", gotUser.Name)

	it := &shared.Item{ID: uuid.New(), OwnerID: u.ID, Name: "lot", Value: 1200}
	require.NoError(t, items.Create(ctx, it))
	gotItem, err := items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, gotItem.Value)
}
