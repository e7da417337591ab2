package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

const alertColumns = `id, auction_id, bidder_id, type, confidence, description, status, reviewer_id, notes, created_at, updated_at`

// AlertRepository implements fraud alert persistence over Postgres
type AlertRepository struct {
	conn *Connection
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(conn *Connection) *AlertRepository {
	return &AlertRepository{conn: conn}
}

// Create persists a new alert
func (r *AlertRepository) Create(ctx context.Context, a *fraud.Alert) error {
	query := `
		INSERT INTO fraud_alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	return r.conn.WithRetry(ctx, func(ctx context.Context) error {
		_, err := r.conn.GetDB().ExecContext(ctx, query,
			a.ID, a.AuctionID, a.BidderID, a.Type, a.Confidence, a.Description,
			a.Status, a.ReviewerID, a.Notes, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}
		return nil
	})
}

func scanAlert(row interface{ Scan(...interface{}) error }) (*fraud.Alert, error) {
	var a fraud.Alert
	err := row.Scan(&a.ID, &a.AuctionID, &a.BidderID, &a.Type, &a.Confidence, &a.Description,
		&a.Status, &a.ReviewerID, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID retrieves an alert by ID
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*fraud.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM fraud_alerts WHERE id = $1`

	a, err := scanAlert(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return a, nil
}

// alertWhere builds the WHERE clause for a filter. Args are 1-indexed.
func alertWhere(filter outbound.AlertFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.AuctionID != nil {
		add("auction_id", *filter.AuctionID)
	}
	if filter.BidderID != nil {
		add("bidder_id", *filter.BidderID)
	}
	if filter.Status != nil {
		add("status", *filter.Status)
	}
	if filter.Type != nil {
		add("type", *filter.Type)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List retrieves a page of alerts matching the filter, newest first, together
// with the total match count
func (r *AlertRepository) List(ctx context.Context, filter outbound.AlertFilter, page, pageSize int) ([]*fraud.Alert, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	where, args := alertWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM fraud_alerts` + where
	if err := r.conn.GetDB().QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+alertColumns+` FROM fraud_alerts%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*fraud.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, total, rows.Err()
}

// Update persists an alert's review fields
func (r *AlertRepository) Update(ctx context.Context, a *fraud.Alert) error {
	query := `
		UPDATE fraud_alerts
		SET status = $2, reviewer_id = $3, notes = $4, updated_at = $5
		WHERE id = $1
	`

	return r.conn.WithRetry(ctx, func(ctx context.Context) error {
		result, err := r.conn.GetDB().ExecContext(ctx, query, a.ID, a.Status, a.ReviewerID, a.Notes, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update alert: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return shared.ErrAlertNotFound
		}
		return nil
	})
}
