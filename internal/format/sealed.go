package format

import (
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// SealedBid hides every amount until a single reveal at close. One bid per
// bidder, no edits: immutability is structural, not policy. Highest amount
// wins at reveal, earliest wins ties.
type SealedBid struct{}

func (SealedBid) Validate(amount float64, snap Snapshot) error {
	if amount <= 0 {
		return shared.ErrInvalidAmount
	}
	if snap.MaxBudget != nil && amount > *snap.MaxBudget {
		return shared.ErrBudgetExceeded
	}
	if snap.BidderHasBid {
		return shared.ErrSealedBidExists
	}
	if snap.ReservePrice != nil && amount < *snap.ReservePrice {
		return shared.ErrBidTooLow
	}
	return nil
}

func (SealedBid) Beats(a, b *bid.Bid) bool {
	if a.Amount != b.Amount {
		return a.Amount > b.Amount
	}
	return earlier(a, b)
}

func (SealedBid) Sealed() bool { return true }

func (SealedBid) AllowsExtension() bool { return false }

func (SealedBid) BuyNowTriggered(float64, Snapshot) bool { return false }
