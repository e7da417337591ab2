package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/deposit"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

// BiddingEngine defines the auction state machine operations exposed to the
// API layer and the scheduler.
type BiddingEngine interface {
	// CreateAuction registers a new auction in scheduled state
	CreateAuction(ctx context.Context, req CreateAuctionRequest) (*auction.Auction, error)

	// Open transitions a scheduled auction to active once its start time has
	// passed. Idempotent on already-active auctions.
	Open(ctx context.Context, auctionID uuid.UUID) error

	// SubmitBid runs the full admission pipeline for one bid
	SubmitBid(ctx context.Context, req SubmitBidRequest) (*BidReceipt, error)

	// Close ends an active auction once its deadline has passed. Sealed
	// auctions are revealed as part of closing.
	Close(ctx context.Context, auctionID uuid.UUID) (*shared.AuctionEndResult, error)

	// Complete settles an ended auction: applies the winner's deposit,
	// refunds the rest, and emits the settlement event
	Complete(ctx context.Context, auctionID uuid.UUID) error

	// Cancel aborts a pre-terminal auction and refunds all deposits
	Cancel(ctx context.Context, auctionID uuid.UUID, reason string) error

	// Snapshot returns the auction view for a given caller. Sealed auctions
	// mask amounts and the leader until reveal.
	Snapshot(ctx context.Context, auctionID uuid.UUID, viewerID uuid.UUID) (*AuctionSnapshot, error)

	// ListAuctions retrieves a page of auctions
	ListAuctions(ctx context.Context, req ListAuctionsRequest) ([]*auction.Auction, error)
}

// ModerationService exposes fraud alert review to the admin surface
type ModerationService interface {
	// ListAlerts retrieves a page of alerts matching the filter, plus the
	// total match count
	ListAlerts(ctx context.Context, filter outbound.AlertFilter, page, pageSize int) ([]*fraud.Alert, int, error)

	// UpdateAlertStatus moves an alert through its review lifecycle
	UpdateAlertStatus(ctx context.Context, alertID uuid.UUID, status fraud.AlertStatus, actorID uuid.UUID, notes string) (*fraud.Alert, error)
}

// DepositService exposes the deposit lifecycle to the API layer
type DepositService interface {
	// Require ensures a pending deposit exists for the (auction, user) pair
	// and returns it
	Require(ctx context.Context, auctionID, userID uuid.UUID) (*deposit.Deposit, error)

	// Pay charges the deposit through the payment collaborator
	Pay(ctx context.Context, auctionID, userID uuid.UUID) (*deposit.Deposit, error)

	// Forfeit seizes a paid deposit on policy violation
	Forfeit(ctx context.Context, auctionID, userID uuid.UUID) error
}

// CreateAuctionRequest carries the fields needed to list an auction
type CreateAuctionRequest struct {
	ItemID        uuid.UUID      `json:"item_id"`
	OwnerID       uuid.UUID      `json:"owner_id"`
	Format        auction.Format `json:"format"`
	StartTime     string         `json:"start_time"`
	EndTime       string         `json:"end_time"`
	StartingPrice float64        `json:"starting_price"`
	ReservePrice  *float64       `json:"reserve_price,omitempty"`
	BuyNowPrice   *float64       `json:"buy_now_price,omitempty"`
	MaxBudget     *float64       `json:"max_budget,omitempty"`
	MinIncrement  float64        `json:"min_increment"`
}

// ListAuctionsRequest narrows and pages auction listings
type ListAuctionsRequest struct {
	Status   *auction.Status `json:"status,omitempty"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// SubmitBidRequest carries one bid attempt plus the request context the
// fraud scorer reads. The timestamp is always server-assigned.
type SubmitBidRequest struct {
	AuctionID   uuid.UUID `json:"auction_id"`
	BidderID    uuid.UUID `json:"bidder_id"`
	Amount      float64   `json:"amount"`
	ClientID    string    `json:"client_id"`
	IPAddress   string    `json:"ip_address,omitempty"`
	Fingerprint string    `json:"device_fingerprint,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
}

// BidReceipt is returned on successful admission
type BidReceipt struct {
	Bid          *bid.Bid   `json:"bid"`
	CurrentPrice *float64   `json:"current_price,omitempty"`
	EndTime      time.Time  `json:"end_time"`
	Extended     bool       `json:"extended"`
	BuyNowClosed bool       `json:"buy_now_closed"`
	Flagged      bool       `json:"-"`
}

// SnapshotBid is one ledger entry as visible to the snapshot viewer
type SnapshotBid struct {
	BidID    uuid.UUID  `json:"bid_id"`
	BidderID uuid.UUID  `json:"bidder_id"`
	Amount   *float64   `json:"amount,omitempty"`
	Status   bid.Status `json:"status"`
	Revealed bool       `json:"revealed"`
	PlacedAt time.Time  `json:"placed_at"`
}

// AuctionSnapshot is the caller-facing auction view. For sealed auctions
// before reveal, CurrentPrice and CurrentWinner are absent and other bidders'
// amounts are masked.
type AuctionSnapshot struct {
	AuctionID     uuid.UUID      `json:"auction_id"`
	Format        auction.Format `json:"format"`
	Status        auction.Status `json:"status"`
	StartingPrice float64        `json:"starting_price"`
	MinIncrement  float64        `json:"min_increment"`
	CurrentPrice  *float64       `json:"current_price,omitempty"`
	CurrentWinner *uuid.UUID     `json:"current_winner_id,omitempty"`
	BidCount      int            `json:"bid_count"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Bids          []SnapshotBid  `json:"bids"`
}
