package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

const bidColumns = `id, auction_id, bidder_id, amount, status, revealed, placed_at, updated_at`

// BidRepository implements the append-only bid ledger over Postgres
type BidRepository struct {
	conn *Connection
}

// NewBidRepository creates a new bid repository
func NewBidRepository(conn *Connection) *BidRepository {
	return &BidRepository{conn: conn}
}

// Append records an admitted bid. There is no delete path: the ledger only
// ever grows.
func (r *BidRepository) Append(ctx context.Context, b *bid.Bid) error {
	query := `
		INSERT INTO bids (` + bidColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	return r.conn.WithRetry(ctx, func(ctx context.Context) error {
		_, err := r.conn.GetDB().ExecContext(ctx, query,
			b.ID, b.AuctionID, b.BidderID, b.Amount, b.Status, b.Revealed, b.PlacedAt, b.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append bid: %w", err)
		}
		return nil
	})
}

func scanBid(row interface{ Scan(...interface{}) error }) (*bid.Bid, error) {
	var b bid.Bid
	err := row.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.Status, &b.Revealed, &b.PlacedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID retrieves a bid by ID
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`

	b, err := scanBid(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrNoBidsFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return b, nil
}

func (r *BidRepository) queryBids(ctx context.Context, query string, args ...interface{}) ([]*bid.Bid, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}
	defer rows.Close()

	var bids []*bid.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// GetByAuctionID retrieves all bids for an auction in placement order
func (r *BidRepository) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = $1 ORDER BY placed_at ASC`
	return r.queryBids(ctx, query, auctionID)
}

// GetByBidder retrieves one bidder's bids on an auction, newest first
func (r *BidRepository) GetByBidder(ctx context.Context, auctionID, bidderID uuid.UUID) ([]*bid.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids
		WHERE auction_id = $1 AND bidder_id = $2 ORDER BY placed_at DESC`
	return r.queryBids(ctx, query, auctionID, bidderID)
}

// CountByBidderOnOwner counts the bidder's historical bids across all of one
// owner's auctions
func (r *BidRepository) CountByBidderOnOwner(ctx context.Context, bidderID, ownerID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bids b
		JOIN auctions a ON a.id = b.auction_id
		WHERE b.bidder_id = $1 AND a.owner_id = $2
	`

	var count int
	err := r.conn.WithRetry(ctx, func(ctx context.Context) error {
		return r.conn.GetDB().QueryRowContext(ctx, query, bidderID, ownerID).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count bids by bidder on owner: %w", err)
	}
	return count, nil
}

// GetRecentByBidder retrieves the bidder's bids on an auction placed at or
// after since, newest first
func (r *BidRepository) GetRecentByBidder(ctx context.Context, auctionID, bidderID uuid.UUID, since time.Time) ([]*bid.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids
		WHERE auction_id = $1 AND bidder_id = $2 AND placed_at >= $3 ORDER BY placed_at DESC`
	return r.queryBids(ctx, query, auctionID, bidderID, since)
}

// Update persists a bid's status fields. Amount and placement are immutable.
func (r *BidRepository) Update(ctx context.Context, b *bid.Bid) error {
	query := `
		UPDATE bids
		SET status = $2, revealed = $3, updated_at = $4
		WHERE id = $1
	`

	return r.conn.WithRetry(ctx, func(ctx context.Context) error {
		result, err := r.conn.GetDB().ExecContext(ctx, query, b.ID, b.Status, b.Revealed, b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update bid: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return shared.ErrNoBidsFound
		}
		return nil
	})
}
