package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/memstore"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
)

type scorerFixture struct {
	scorer       *FraudScorer
	auctions     *memstore.AuctionStore
	bids         *memstore.BidStore
	fingerprints *memstore.FingerprintStore

	auctionID uuid.UUID
	ownerID   uuid.UUID
	bidderID  uuid.UUID
	now       time.Time
}

func newScorerFixture(t *testing.T) *scorerFixture {
	t.Helper()

	f := &scorerFixture{
		auctions:     memstore.NewAuctionStore(),
		fingerprints: memstore.NewFingerprintStore(),
		auctionID:    uuid.New(),
		ownerID:      uuid.New(),
		bidderID:     uuid.New(),
		now:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.bids = memstore.NewBidStore(f.auctions)
	f.scorer = NewFraudScorer(FraudScorerParams{
		BidRepo:      f.bids,
		Fingerprints: f.fingerprints,
		Policy:       defaultFraudConfig(),
		Logger:       zerolog.Nop(),
	})

	require.NoError(t, f.auctions.Create(context.Background(), &auction.Auction{
		ID:      f.auctionID,
		ItemID:  uuid.New(),
		OwnerID: f.ownerID,
		Format:  auction.FormatEnglish,
		Status:  auction.StatusActive,
	}))
	return f
}

func (f *scorerFixture) input() ScoreInput {
	return ScoreInput{
		AuctionID: f.auctionID,
		BidderID:  f.bidderID,
		OwnerID:   f.ownerID,
		Now:       f.now,
	}
}

func (f *scorerFixture) seedBid(t *testing.T, status bid.Status, placedAt time.Time) {
	t.Helper()
	require.NoError(t, f.bids.Append(context.Background(), &bid.Bid{
		ID:        uuid.New(),
		AuctionID: f.auctionID,
		BidderID:  f.bidderID,
		Amount:    100,
		Status:    status,
		PlacedAt:  placedAt,
		UpdatedAt: placedAt,
	}))
}

func TestScoreCleanBidder(t *testing.T) {
	f := newScorerFixture(t)

	result, err := f.scorer.Score(context.Background(), f.input())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, ActionAllow, result.Action)
	assert.Empty(t, result.Findings)
}

func TestScoreSharedDeviceBlocks(t *testing.T) {
	f := newScorerFixture(t)
	ctx := context.Background()

	// the same device has been seen on both accounts
	require.NoError(t, f.fingerprints.Observe(ctx, f.ownerID, "fp-1", "10.0.0.1", f.now))
	require.NoError(t, f.fingerprints.Observe(ctx, f.bidderID, "fp-1", "10.0.0.2", f.now))

	input := f.input()
	input.Fingerprint = "fp-1"

	result, err := f.scorer.Score(ctx, input)
	require.NoError(t, err)
	// shared device (30) + linked device (25)
	assert.Equal(t, 55, result.Score)
	assert.Equal(t, ActionBlock, result.Action)
	require.Len(t, result.Findings, 2)
	assert.Equal(t, fraud.AlertDeviceFingerprintMatch, result.Findings[0].Type)
	assert.Equal(t, fraud.AlertMultipleAccounts, result.Findings[1].Type)
}

func TestScoreShillHistory(t *testing.T) {
	f := newScorerFixture(t)

	// fires only past the threshold
	for i := 0; i < 6; i++ {
		f.seedBid(t, bid.StatusLost, f.now.Add(-time.Duration(i+1)*time.Hour))
	}

	result, err := f.scorer.Score(context.Background(), f.input())
	require.NoError(t, err)
	assert.Equal(t, 25, result.Score)
	assert.Equal(t, ActionAllow, result.Action)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, fraud.AlertShillBidding, result.Findings[0].Type)
}

func TestScoreShillHistoryAtThreshold(t *testing.T) {
	f := newScorerFixture(t)

	for i := 0; i < 5; i++ {
		f.seedBid(t, bid.StatusLost, f.now.Add(-time.Duration(i+1)*time.Hour))
	}

	result, err := f.scorer.Score(context.Background(), f.input())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
}

func TestScoreBidShielding(t *testing.T) {
	f := newScorerFixture(t)

	// five of the bidder's recent bids on this auction ended outbid; spaced
	// out so rapid bidding stays quiet, few enough that shill history does too
	for i := 0; i < 5; i++ {
		f.seedBid(t, bid.StatusOutbid, f.now.Add(-time.Duration(i+1)*time.Hour))
	}

	result, err := f.scorer.Score(context.Background(), f.input())
	require.NoError(t, err)
	assert.Equal(t, 20, result.Score)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, fraud.AlertShillBidding, result.Findings[0].Type)
}

func TestScoreRapidBidding(t *testing.T) {
	f := newScorerFixture(t)

	// five bids a second apart inside the window, none of them outbid
	for i := 0; i < 5; i++ {
		f.seedBid(t, bid.StatusActive, f.now.Add(-time.Duration(4-i)*time.Second))
	}

	result, err := f.scorer.Score(context.Background(), f.input())
	require.NoError(t, err)
	assert.Equal(t, 15, result.Score)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, fraud.AlertRapidBidding, result.Findings[0].Type)
}

func TestScoreRapidBiddingSlowPace(t *testing.T) {
	f := newScorerFixture(t)

	// five bids inside the window but a minute apart
	for i := 0; i < 5; i++ {
		f.seedBid(t, bid.StatusActive, f.now.Add(-time.Duration(4-i)*time.Minute))
	}

	result, err := f.scorer.Score(context.Background(), f.input())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
}

func TestScoreLinkedOrigin(t *testing.T) {
	f := newScorerFixture(t)
	ctx := context.Background()

	// three other accounts behind the same origin clears the tolerance of two
	for i := 0; i < 3; i++ {
		require.NoError(t, f.fingerprints.Observe(ctx, uuid.New(), uuid.NewString(), "203.0.113.7", f.now))
	}

	input := f.input()
	input.IPAddress = "203.0.113.7"

	result, err := f.scorer.Score(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 15, result.Score)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, fraud.AlertMultipleAccounts, result.Findings[0].Type)
}

func TestScoreLinkedOriginWithinTolerance(t *testing.T) {
	f := newScorerFixture(t)
	ctx := context.Background()

	// shared household NAT: two other accounts on one origin is fine
	for i := 0; i < 2; i++ {
		require.NoError(t, f.fingerprints.Observe(ctx, uuid.New(), uuid.NewString(), "203.0.113.7", f.now))
	}

	input := f.input()
	input.IPAddress = "203.0.113.7"

	result, err := f.scorer.Score(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
}

func TestScoreDeterministicFindingOrder(t *testing.T) {
	f := newScorerFixture(t)
	ctx := context.Background()

	require.NoError(t, f.fingerprints.Observe(ctx, f.ownerID, "fp-1", "10.0.0.1", f.now))
	require.NoError(t, f.fingerprints.Observe(ctx, f.bidderID, "fp-1", "10.0.0.2", f.now))
	for i := 0; i < 5; i++ {
		f.seedBid(t, bid.StatusOutbid, f.now.Add(-time.Duration(4-i)*time.Second))
	}

	input := f.input()
	input.Fingerprint = "fp-1"

	// findings join in check order no matter how the goroutines interleave
	var first []fraud.AlertType
	for run := 0; run < 5; run++ {
		result, err := f.scorer.Score(ctx, input)
		require.NoError(t, err)
		types := make([]fraud.AlertType, len(result.Findings))
		for i, finding := range result.Findings {
			types[i] = finding.Type
		}
		if first == nil {
			first = types
			continue
		}
		assert.Equal(t, first, types)
	}
}

func TestScorePolicyThresholds(t *testing.T) {
	f := newScorerFixture(t)
	ctx := context.Background()

	// a tighter policy turns the same evidence into a block
	policy := defaultFraudConfig()
	policy.BlockThreshold = 20
	strict := NewFraudScorer(FraudScorerParams{
		BidRepo:      f.bids,
		Fingerprints: f.fingerprints,
		Policy:       policy,
		Logger:       zerolog.Nop(),
	})

	for i := 0; i < 5; i++ {
		f.seedBid(t, bid.StatusOutbid, f.now.Add(-time.Duration(i+1)*time.Hour))
	}

	lenient, err := f.scorer.Score(ctx, f.input())
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, lenient.Action)

	blocked, err := strict.Score(ctx, f.input())
	require.NoError(t, err)
	assert.Equal(t, 20, blocked.Score)
	assert.Equal(t, ActionBlock, blocked.Action)
}
