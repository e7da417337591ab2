package format

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

func ptr(v float64) *float64 { return &v }

func bidAt(amount float64, placedAt time.Time) *bid.Bid {
	return &bid.Bid{
		ID:       uuid.New(),
		Amount:   amount,
		Status:   bid.StatusActive,
		PlacedAt: placedAt,
	}
}

func TestEnglishValidate(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		snap    Snapshot
		wantErr error
	}{
		{
			name:   "first bid at starting price",
			amount: 500,
			snap:   Snapshot{StartingPrice: 500, MinIncrement: 10},
		},
		{
			name:    "first bid below starting price",
			amount:  499,
			snap:    Snapshot{StartingPrice: 500, MinIncrement: 10},
			wantErr: shared.ErrBidTooLow,
		},
		{
			name:   "clears current price plus increment",
			amount: 560,
			snap:   Snapshot{StartingPrice: 500, MinIncrement: 10, CurrentPrice: 550, BidCount: 2},
		},
		{
			name:    "equal to current price",
			amount:  550,
			snap:    Snapshot{StartingPrice: 500, MinIncrement: 10, CurrentPrice: 550, BidCount: 2},
			wantErr: shared.ErrBidTooLow,
		},
		{
			name:    "inside the increment",
			amount:  555,
			snap:    Snapshot{StartingPrice: 500, MinIncrement: 10, CurrentPrice: 550, BidCount: 2},
			wantErr: shared.ErrBidTooLow,
		},
		{
			name:    "zero amount",
			amount:  0,
			snap:    Snapshot{StartingPrice: 500},
			wantErr: shared.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			amount:  -10,
			snap:    Snapshot{StartingPrice: 500},
			wantErr: shared.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := English{}.Validate(tt.amount, tt.snap)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnglishBeats(t *testing.T) {
	now := time.Now()
	higher := bidAt(600, now)
	lower := bidAt(550, now.Add(-time.Minute))

	assert.True(t, English{}.Beats(higher, lower))
	assert.False(t, English{}.Beats(lower, higher))

	// equal amounts: earliest placement wins
	first := bidAt(600, now.Add(-time.Minute))
	second := bidAt(600, now)
	assert.True(t, English{}.Beats(first, second))
	assert.False(t, English{}.Beats(second, first))
}

func TestEnglishBuyNow(t *testing.T) {
	snap := Snapshot{StartingPrice: 500, BuyNowPrice: ptr(800)}

	assert.False(t, English{}.BuyNowTriggered(799, snap))
	assert.True(t, English{}.BuyNowTriggered(800, snap))
	assert.True(t, English{}.BuyNowTriggered(900, snap))
	assert.False(t, English{}.BuyNowTriggered(900, Snapshot{StartingPrice: 500}))
}

func TestReverseTenderValidate(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		snap    Snapshot
		wantErr error
	}{
		{
			name:   "first offer under budget",
			amount: 900,
			snap:   Snapshot{MaxBudget: ptr(1000)},
		},
		{
			name:    "over budget",
			amount:  1100,
			snap:    Snapshot{MaxBudget: ptr(1000)},
			wantErr: shared.ErrBudgetExceeded,
		},
		{
			name:   "undercuts own standing bid",
			amount: 850,
			snap:   Snapshot{MaxBudget: ptr(1000), BidderStanding: ptr(900), BidderHasBid: true},
		},
		{
			name:    "equal to own standing bid",
			amount:  900,
			snap:    Snapshot{MaxBudget: ptr(1000), BidderStanding: ptr(900), BidderHasBid: true},
			wantErr: shared.ErrNotDescending,
		},
		{
			name:    "above own standing bid",
			amount:  950,
			snap:    Snapshot{MaxBudget: ptr(1000), BidderStanding: ptr(900), BidderHasBid: true},
			wantErr: shared.ErrNotDescending,
		},
		{
			name:    "zero amount",
			amount:  0,
			snap:    Snapshot{MaxBudget: ptr(1000)},
			wantErr: shared.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ReverseTender{}.Validate(tt.amount, tt.snap)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReverseTenderBeats(t *testing.T) {
	now := time.Now()
	lower := bidAt(800, now)
	higher := bidAt(900, now.Add(-time.Minute))

	assert.True(t, ReverseTender{}.Beats(lower, higher))
	assert.False(t, ReverseTender{}.Beats(higher, lower))

	first := bidAt(800, now.Add(-time.Minute))
	second := bidAt(800, now)
	assert.True(t, ReverseTender{}.Beats(first, second))
}

func TestReverseTenderExtension(t *testing.T) {
	assert.False(t, ReverseTender{}.AllowsExtension())
	assert.True(t, ReverseTender{ExtensionEnabled: true}.AllowsExtension())
}

func TestSealedBidValidate(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		snap    Snapshot
		wantErr error
	}{
		{
			name:   "first sealed bid",
			amount: 1000,
			snap:   Snapshot{},
		},
		{
			name:    "second sealed bid from same bidder",
			amount:  1200,
			snap:    Snapshot{BidderHasBid: true},
			wantErr: shared.ErrSealedBidExists,
		},
		{
			name:    "over budget",
			amount:  2000,
			snap:    Snapshot{MaxBudget: ptr(1500)},
			wantErr: shared.ErrBudgetExceeded,
		},
		{
			name:    "below reserve floor",
			amount:  400,
			snap:    Snapshot{ReservePrice: ptr(500)},
			wantErr: shared.ErrBidTooLow,
		},
		{
			name:    "zero amount",
			amount:  0,
			snap:    Snapshot{},
			wantErr: shared.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SealedBid{}.Validate(tt.amount, tt.snap)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSealedBidProperties(t *testing.T) {
	assert.True(t, SealedBid{}.Sealed())
	assert.False(t, SealedBid{}.AllowsExtension())
	assert.False(t, SealedBid{}.BuyNowTriggered(1000, Snapshot{BuyNowPrice: ptr(500)}))
}

func TestForAuction(t *testing.T) {
	assert.IsType(t, English{}, ForAuction(auction.FormatEnglish, false))
	assert.IsType(t, ReverseTender{}, ForAuction(auction.FormatReverseTender, false))
	assert.IsType(t, SealedBid{}, ForAuction(auction.FormatSealedBid, false))
	assert.IsType(t, English{}, ForAuction(auction.Format("unknown"), false))

	rt, ok := ForAuction(auction.FormatReverseTender, true).(ReverseTender)
	require.True(t, ok)
	assert.True(t, rt.ExtensionEnabled)
}

func TestBest(t *testing.T) {
	now := time.Now()

	assert.Nil(t, Best(English{}, nil))

	b1 := bidAt(500, now)
	b2 := bidAt(600, now.Add(time.Second))
	b3 := bidAt(550, now.Add(2*time.Second))
	assert.Equal(t, b2.ID, Best(English{}, []*bid.Bid{b1, b2, b3}).ID)
	assert.Equal(t, b1.ID, Best(ReverseTender{}, []*bid.Bid{b1, b2, b3}).ID)

	// withdrawn bids never win
	b2.Status = bid.StatusWithdrawn
	assert.Equal(t, b3.ID, Best(English{}, []*bid.Bid{b1, b2, b3}).ID)
}
