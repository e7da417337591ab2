package deposit

import (
	"time"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// Status represents the lifecycle of a deposit
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusRefunded  Status = "refunded"
	StatusApplied   Status = "applied"
	StatusForfeited Status = "forfeited"
)

// legal transitions; every terminal state is irreversible
var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusRefunded},
	StatusPaid:    {StatusRefunded, StatusApplied, StatusForfeited},
}

// Deposit tracks one (auction, user) security deposit
type Deposit struct {
	ID        uuid.UUID `json:"id"`
	AuctionID uuid.UUID `json:"auction_id"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    float64   `json:"amount"`
	Status    Status    `json:"status"`
	Receipt   string    `json:"receipt,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPaid returns true once the deposit clears the bidding gate
func (d *Deposit) IsPaid() bool {
	return d.Status == StatusPaid
}

// Transition moves the deposit to next if that edge is legal.
func (d *Deposit) Transition(next Status, now time.Time) error {
	for _, s := range transitions[d.Status] {
		if s == next {
			d.Status = next
			d.UpdatedAt = now
			if next == StatusPaid {
				paid := now
				d.PaidAt = &paid
			}
			return nil
		}
	}
	return shared.ErrDepositInvalidTransition
}
