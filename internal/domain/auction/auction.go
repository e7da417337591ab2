package auction

import (
	"time"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// Format selects the bidding rules for an auction
type Format string

const (
	FormatEnglish       Format = "english"
	FormatReverseTender Format = "reverse_tender"
	FormatSealedBid     Format = "sealed_bid"
)

// Status represents the current status of an auction
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// legal forward transitions; cancellation is handled separately
var transitions = map[Status]Status{
	StatusDraft:     StatusScheduled,
	StatusScheduled: StatusActive,
	StatusActive:    StatusEnded,
	StatusEnded:     StatusCompleted,
}

// Auction represents one auction and its mutable bidding state.
// Mutable fields (CurrentPrice, CurrentWinnerID, BidCount, EndTime, Status,
// Version) are owned by the engine and only touched under its per-auction lock.
type Auction struct {
	ID            uuid.UUID  `json:"id"`
	ItemID        uuid.UUID  `json:"item_id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	Format        Format     `json:"format"`
	StartingPrice float64    `json:"starting_price"`
	ReservePrice  *float64   `json:"reserve_price,omitempty"`
	BuyNowPrice   *float64   `json:"buy_now_price,omitempty"`
	MaxBudget     *float64   `json:"max_budget,omitempty"`
	MinIncrement  float64    `json:"min_increment"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	CurrentPrice  float64    `json:"current_price"`
	CurrentWinner *uuid.UUID `json:"current_winner_id,omitempty"`
	BidCount      int        `json:"bid_count"`
	Status        Status     `json:"status"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsActive returns true if the auction is currently accepting bids
func (a *Auction) IsActive() bool {
	return a.Status == StatusActive
}

// IsTerminal returns true once no further transitions are possible
func (a *Auction) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// Advance moves the auction to next iff it is the legal successor of the
// current status.
func (a *Auction) Advance(next Status, now time.Time) error {
	if transitions[a.Status] != next {
		return shared.ErrInvalidTransition
	}
	a.Status = next
	a.UpdatedAt = now
	return nil
}

// Cancel moves the auction to cancelled from any pre-ended state.
func (a *Auction) Cancel(now time.Time) error {
	switch a.Status {
	case StatusDraft, StatusScheduled, StatusActive:
		a.Status = StatusCancelled
		a.UpdatedAt = now
		return nil
	default:
		return shared.ErrInvalidTransition
	}
}

// Descending reports whether lower bids beat higher ones for this format.
func (a *Auction) Descending() bool {
	return a.Format == FormatReverseTender
}

// Sealed reports whether bid amounts stay hidden until close.
func (a *Auction) Sealed() bool {
	return a.Format == FormatSealedBid
}

// RecordBid counts an admitted bid. Sealed auctions only ever see this;
// price and winner stay hidden until reveal.
func (a *Auction) RecordBid(now time.Time) {
	a.BidCount++
	a.Version++
	a.UpdatedAt = now
}

// SetLeader updates the visible price and winner after a bid takes the lead.
func (a *Auction) SetLeader(bidderID uuid.UUID, amount float64, now time.Time) {
	a.CurrentPrice = amount
	winner := bidderID
	a.CurrentWinner = &winner
	a.UpdatedAt = now
}

// ExtendDeadline pushes EndTime forward to now+d if that is later than the
// current deadline. Returns true when the deadline actually moved. Monotonic:
// applying it twice for near-simultaneous bids never double-extends.
func (a *Auction) ExtendDeadline(now time.Time, d time.Duration) bool {
	candidate := now.Add(d)
	if candidate.After(a.EndTime) {
		a.EndTime = candidate
		a.UpdatedAt = now
		return true
	}
	return false
}

// Value returns the monetary value used for verification-tier resolution:
// the reserve price when set, else the starting price.
func (a *Auction) Value() float64 {
	if a.ReservePrice != nil && *a.ReservePrice > a.StartingPrice {
		return *a.ReservePrice
	}
	return a.StartingPrice
}
