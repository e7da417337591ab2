package format

import (
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// ReverseTender is the descending-price format: vendors compete downward, a
// bidder may only improve their own standing bid, lowest bid wins, earliest
// wins ties.
type ReverseTender struct {
	// ExtensionEnabled opts reverse tenders into anti-sniping, off by default.
	ExtensionEnabled bool
}

func (ReverseTender) Validate(amount float64, snap Snapshot) error {
	if amount <= 0 {
		return shared.ErrInvalidAmount
	}
	if snap.MaxBudget != nil && amount > *snap.MaxBudget {
		return shared.ErrBudgetExceeded
	}
	if snap.BidderStanding != nil && amount >= *snap.BidderStanding {
		return shared.ErrNotDescending
	}
	return nil
}

func (ReverseTender) Beats(a, b *bid.Bid) bool {
	if a.Amount != b.Amount {
		return a.Amount < b.Amount
	}
	return earlier(a, b)
}

func (ReverseTender) Sealed() bool { return false }

func (r ReverseTender) AllowsExtension() bool { return r.ExtensionEnabled }

func (ReverseTender) BuyNowTriggered(float64, Snapshot) bool { return false }
