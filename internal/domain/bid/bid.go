package bid

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the status of a bid
type Status string

const (
	StatusActive    Status = "active"
	StatusWinning   Status = "winning"
	StatusOutbid    Status = "outbid"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusWithdrawn Status = "withdrawn"
)

// Bid represents one admitted bid. Amount and PlacedAt are immutable after
// admission; only Status and Revealed move, and only through the engine's
// re-evaluation step.
type Bid struct {
	ID        uuid.UUID `json:"id"`
	AuctionID uuid.UUID `json:"auction_id"`
	BidderID  uuid.UUID `json:"bidder_id"`
	Amount    float64   `json:"amount"`
	Status    Status    `json:"status"`
	Revealed  bool      `json:"revealed"`
	PlacedAt  time.Time `json:"placed_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsStanding returns true while the bid still competes for the win
func (b *Bid) IsStanding() bool {
	return b.Status == StatusActive || b.Status == StatusWinning
}

func (b *Bid) setStatus(s Status, now time.Time) {
	b.Status = s
	b.UpdatedAt = now
}

// MarkWinning flags the bid as the current leader
func (b *Bid) MarkWinning(now time.Time) { b.setStatus(StatusWinning, now) }

// MarkOutbid flags a previously leading or standing bid as beaten
func (b *Bid) MarkOutbid(now time.Time) { b.setStatus(StatusOutbid, now) }

// MarkWon settles the bid as the auction winner
func (b *Bid) MarkWon(now time.Time) { b.setStatus(StatusWon, now) }

// MarkLost settles a non-winning bid at close
func (b *Bid) MarkLost(now time.Time) { b.setStatus(StatusLost, now) }

// Withdraw retires a standing bid without deleting it
func (b *Bid) Withdraw(now time.Time) { b.setStatus(StatusWithdrawn, now) }

// Reveal exposes a sealed bid's amount after close
func (b *Bid) Reveal(now time.Time) {
	b.Revealed = true
	b.UpdatedAt = now
}
