package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/deposit"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

const depositColumns = `id, auction_id, user_id, amount, status, receipt, paid_at, created_at, updated_at`

// DepositRepository implements deposit persistence over Postgres
type DepositRepository struct {
	conn *Connection
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(conn *Connection) *DepositRepository {
	return &DepositRepository{conn: conn}
}

// Create creates a new deposit. The (auction_id, user_id) pair is unique.
func (r *DepositRepository) Create(ctx context.Context, d *deposit.Deposit) error {
	query := `
		INSERT INTO deposits (` + depositColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	return r.conn.WithRetry(ctx, func(ctx context.Context) error {
		_, err := r.conn.GetDB().ExecContext(ctx, query,
			d.ID, d.AuctionID, d.UserID, d.Amount, d.Status, d.Receipt, d.PaidAt, d.CreatedAt, d.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create deposit: %w", err)
		}
		return nil
	})
}

func scanDeposit(row interface{ Scan(...interface{}) error }) (*deposit.Deposit, error) {
	var d deposit.Deposit
	err := row.Scan(&d.ID, &d.AuctionID, &d.UserID, &d.Amount, &d.Status, &d.Receipt, &d.PaidAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Get retrieves the deposit for an (auction, user) pair
func (r *DepositRepository) Get(ctx context.Context, auctionID, userID uuid.UUID) (*deposit.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE auction_id = $1 AND user_id = $2`

	d, err := scanDeposit(r.conn.GetDB().QueryRowContext(ctx, query, auctionID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrDepositNotFound
		}
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}
	return d, nil
}

// GetByAuctionID retrieves all deposits for an auction
func (r *DepositRepository) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*deposit.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE auction_id = $1 ORDER BY created_at ASC`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits: %w", err)
	}
	defer rows.Close()

	var deposits []*deposit.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

// Update persists a deposit's status fields
func (r *DepositRepository) Update(ctx context.Context, d *deposit.Deposit) error {
	query := `
		UPDATE deposits
		SET status = $2, receipt = $3, paid_at = $4, updated_at = $5
		WHERE id = $1
	`

	return r.conn.WithRetry(ctx, func(ctx context.Context) error {
		result, err := r.conn.GetDB().ExecContext(ctx, query, d.ID, d.Status, d.Receipt, d.PaidAt, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update deposit: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return shared.ErrDepositNotFound
		}
		return nil
	})
}
