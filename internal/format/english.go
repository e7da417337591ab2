package format

import (
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// English is the ascending-price format: each bid must clear the current
// price by the minimum increment, highest bid wins, earliest wins ties.
type English struct{}

func (English) Validate(amount float64, snap Snapshot) error {
	if amount <= 0 {
		return shared.ErrInvalidAmount
	}
	if snap.BidCount == 0 {
		if amount < snap.StartingPrice {
			return shared.ErrBidTooLow
		}
		return nil
	}
	if amount < snap.CurrentPrice+snap.MinIncrement {
		return shared.ErrBidTooLow
	}
	return nil
}

func (English) Beats(a, b *bid.Bid) bool {
	if a.Amount != b.Amount {
		return a.Amount > b.Amount
	}
	return earlier(a, b)
}

func (English) Sealed() bool { return false }

func (English) AllowsExtension() bool { return true }

func (English) BuyNowTriggered(amount float64, snap Snapshot) bool {
	return snap.BuyNowPrice != nil && amount >= *snap.BuyNowPrice
}
