package shared

import (
	"time"

	"github.com/google/uuid"
)

// Clock is the engine's time source. The real implementation wraps time.Now;
// tests substitute a fixed or stepping clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// AuctionEndResult represents the outcome of closing an auction
type AuctionEndResult struct {
	AuctionID  uuid.UUID
	WinnerID   *uuid.UUID
	FinalPrice *float64
	Status     string
}
