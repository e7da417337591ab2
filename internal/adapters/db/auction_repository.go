package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

const auctionColumns = `id, item_id, owner_id, format, starting_price, reserve_price, buy_now_price, max_budget, min_increment,
		start_time, end_time, current_price, current_winner_id, bid_count, status, version, created_at, updated_at`

// AuctionRepository implements the auction repository interface
type AuctionRepository struct {
	conn *Connection
}

// NewAuctionRepository creates a new auction repository
func NewAuctionRepository(conn *Connection) *AuctionRepository {
	return &AuctionRepository{conn: conn}
}

// Create creates a new auction
func (r *AuctionRepository) Create(ctx context.Context, a *auction.Auction) error {
	query := `
		INSERT INTO auctions (` + auctionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	return r.conn.WithRetry(ctx, func(ctx context.Context) error {
		_, err := r.conn.GetDB().ExecContext(ctx, query,
			a.ID, a.ItemID, a.OwnerID, a.Format,
			a.StartingPrice, a.ReservePrice, a.BuyNowPrice, a.MaxBudget, a.MinIncrement,
			a.StartTime, a.EndTime,
			a.CurrentPrice, a.CurrentWinner, a.BidCount, a.Status, a.Version,
			a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create auction: %w", err)
		}
		return nil
	})
}

func scanAuction(row interface{ Scan(...interface{}) error }) (*auction.Auction, error) {
	var a auction.Auction
	err := row.Scan(
		&a.ID, &a.ItemID, &a.OwnerID, &a.Format,
		&a.StartingPrice, &a.ReservePrice, &a.BuyNowPrice, &a.MaxBudget, &a.MinIncrement,
		&a.StartTime, &a.EndTime,
		&a.CurrentPrice, &a.CurrentWinner, &a.BidCount, &a.Status, &a.Version,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID retrieves an auction by ID
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`

	var a *auction.Auction
	err := r.conn.WithRetry(ctx, func(ctx context.Context) error {
		var scanErr error
		a, scanErr = scanAuction(r.conn.GetDB().QueryRowContext(ctx, query, id))
		return scanErr
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return a, nil
}

// List retrieves a page of auctions with optional status filter
func (r *AuctionRepository) List(ctx context.Context, status *auction.Status, page, pageSize int) ([]*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`
	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, pageSize, (page-1)*pageSize)
	}

	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	var auctions []*auction.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}

// GetActiveByItemID retrieves non-terminal auctions for a specific item
func (r *AuctionRepository) GetActiveByItemID(ctx context.Context, itemID uuid.UUID) ([]*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions
		WHERE item_id = $1 AND status IN ('draft', 'scheduled', 'active')`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get auctions by item: %w", err)
	}
	defer rows.Close()

	var auctions []*auction.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}

// Update persists an auction's mutable fields. The version column advances
// on every write, so a stale cross-instance write shows up as a conflict.
func (r *AuctionRepository) Update(ctx context.Context, a *auction.Auction) error {
	query := `
		UPDATE auctions
		SET end_time = $2, current_price = $3, current_winner_id = $4, bid_count = $5,
		    status = $6, version = version + 1, updated_at = $7
		WHERE id = $1 AND version <= $8
	`

	return r.conn.WithRetry(ctx, func(ctx context.Context) error {
		result, err := r.conn.GetDB().ExecContext(ctx, query,
			a.ID, a.EndTime, a.CurrentPrice, a.CurrentWinner, a.BidCount,
			a.Status, a.UpdatedAt, a.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update auction: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return shared.ErrAuctionNotFound
		}
		return nil
	})
}
