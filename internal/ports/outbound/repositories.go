package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/deposit"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// AuctionRepository defines the interface for auction data operations
type AuctionRepository interface {
	// Create creates a new auction
	Create(ctx context.Context, auction *auction.Auction) error

	// GetByID retrieves an auction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error)

	// List retrieves a page of auctions with optional status filter
	List(ctx context.Context, status *auction.Status, page, pageSize int) ([]*auction.Auction, error)

	// GetActiveByItemID retrieves non-terminal auctions for a specific item
	GetActiveByItemID(ctx context.Context, itemID uuid.UUID) ([]*auction.Auction, error)

	// Update persists an auction's mutable fields
	Update(ctx context.Context, auction *auction.Auction) error
}

// BidRepository defines the interface for the append-only bid ledger
type BidRepository interface {
	// Append records an admitted bid. Bids are never deleted.
	Append(ctx context.Context, bid *bid.Bid) error

	// GetByID retrieves a bid by ID
	GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error)

	// GetByAuctionID retrieves all bids for an auction ordered by placement
	GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error)

	// GetByBidder retrieves one bidder's bids on an auction, newest first
	GetByBidder(ctx context.Context, auctionID, bidderID uuid.UUID) ([]*bid.Bid, error)

	// CountByBidderOnOwner counts the bidder's historical bids across all of
	// one owner's auctions. Read by the fraud scorer.
	CountByBidderOnOwner(ctx context.Context, bidderID, ownerID uuid.UUID) (int, error)

	// GetRecentByBidder retrieves the bidder's bids on an auction placed at
	// or after since, newest first. Read by the fraud scorer.
	GetRecentByBidder(ctx context.Context, auctionID, bidderID uuid.UUID, since time.Time) ([]*bid.Bid, error)

	// Update persists a bid's status fields
	Update(ctx context.Context, bid *bid.Bid) error
}

// DepositRepository defines the interface for deposit data operations
type DepositRepository interface {
	// Create creates a new deposit
	Create(ctx context.Context, d *deposit.Deposit) error

	// Get retrieves the deposit for an (auction, user) pair
	Get(ctx context.Context, auctionID, userID uuid.UUID) (*deposit.Deposit, error)

	// GetByAuctionID retrieves all deposits for an auction
	GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*deposit.Deposit, error)

	// Update persists a deposit's status fields
	Update(ctx context.Context, d *deposit.Deposit) error
}

// AlertFilter narrows moderation alert listings. Nil fields match everything.
type AlertFilter struct {
	AuctionID *uuid.UUID
	BidderID  *uuid.UUID
	Status    *fraud.AlertStatus
	Type      *fraud.AlertType
}

// AlertRepository defines the interface for fraud alert evidence
type AlertRepository interface {
	// Create persists a new alert
	Create(ctx context.Context, a *fraud.Alert) error

	// GetByID retrieves an alert by ID
	GetByID(ctx context.Context, id uuid.UUID) (*fraud.Alert, error)

	// List retrieves a page of alerts matching the filter, newest first,
	// together with the total match count
	List(ctx context.Context, filter AlertFilter, page, pageSize int) ([]*fraud.Alert, int, error)

	// Update persists an alert's review fields
	Update(ctx context.Context, a *fraud.Alert) error
}

// FingerprintRepository defines the append-only device fingerprint store
type FingerprintRepository interface {
	// Observe records a sighting of (userID, fingerprint) from origin,
	// creating the record on first sight and updating it in place after.
	Observe(ctx context.Context, userID uuid.UUID, fingerprint, origin string, seenAt time.Time) error

	// GetByUser retrieves all fingerprints recorded for a user
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*fraud.Fingerprint, error)

	// UsersByFingerprint retrieves the distinct users a fingerprint is linked to
	UsersByFingerprint(ctx context.Context, fingerprint string) ([]uuid.UUID, error)

	// UsersByOrigin retrieves the distinct users seen from a network origin
	UsersByOrigin(ctx context.Context, origin string) ([]uuid.UUID, error)
}

// ItemRepository defines the interface for item data operations
type ItemRepository interface {
	// GetByID retrieves an item by ID
	GetByID(ctx context.Context, id uuid.UUID) (*shared.Item, error)

	// Create creates a new item
	Create(ctx context.Context, item *shared.Item) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*shared.User, error)

	// Create creates a new user
	Create(ctx context.Context, user *shared.User) error
}
