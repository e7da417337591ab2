// Package format holds the pluggable bidding rules for the supported auction
// formats. Strategies are pure: they read a ledger snapshot and never touch
// shared state, so the engine can call them before and inside its critical
// section.
package format

import (
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
)

// Snapshot is the slice of auction state a strategy needs to validate one
// bid amount. The engine builds it under the per-auction lock.
type Snapshot struct {
	StartingPrice float64
	ReservePrice  *float64
	BuyNowPrice   *float64
	MaxBudget     *float64
	MinIncrement  float64
	CurrentPrice  float64
	BidCount      int

	// BidderStanding is the calling bidder's best standing amount on this
	// auction, nil when they have none. Reverse tenders use it to enforce
	// self-improvement.
	BidderStanding *float64

	// BidderHasBid reports whether the caller already holds a bid on this
	// auction. Sealed bids are one-shot.
	BidderHasBid bool
}

// Strategy encapsulates one format's comparison and admission rules
type Strategy interface {
	// Validate checks a bid amount against the snapshot and returns one of
	// the bid validation errors on rejection
	Validate(amount float64, snap Snapshot) error

	// Beats reports whether a ranks strictly ahead of b. Equal amounts fall
	// back to earliest placement.
	Beats(a, b *bid.Bid) bool

	// Sealed reports whether amounts stay hidden until close
	Sealed() bool

	// AllowsExtension reports whether anti-sniping extensions apply
	AllowsExtension() bool

	// BuyNowTriggered reports whether the amount closes the auction outright
	BuyNowTriggered(amount float64, snap Snapshot) bool
}

// ForAuction returns the strategy for an auction's format. reverseExtension
// enables anti-sniping on reverse tenders, which is off by default.
func ForAuction(f auction.Format, reverseExtension bool) Strategy {
	switch f {
	case auction.FormatReverseTender:
		return ReverseTender{ExtensionEnabled: reverseExtension}
	case auction.FormatSealedBid:
		return SealedBid{}
	default:
		return English{}
	}
}

// earlier breaks ties in favor of the bid placed first
func earlier(a, b *bid.Bid) bool {
	return a.PlacedAt.Before(b.PlacedAt)
}

// Best returns the winning bid from the slice under the strategy's ordering,
// or nil when the slice is empty. Withdrawn bids never win.
func Best(s Strategy, bids []*bid.Bid) *bid.Bid {
	var best *bid.Bid
	for _, b := range bids {
		if b.Status == bid.StatusWithdrawn {
			continue
		}
		if best == nil || s.Beats(b, best) {
			best = b
		}
	}
	return best
}
