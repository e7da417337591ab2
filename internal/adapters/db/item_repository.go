package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// ItemRepository implements the item repository interface
type ItemRepository struct {
	conn *Connection
}

// NewItemRepository creates a new item repository
func NewItemRepository(conn *Connection) *ItemRepository {
	return &ItemRepository{conn: conn}
}

// Create creates a new item
func (r *ItemRepository) Create(ctx context.Context, item *shared.Item) error {
	query := `
		INSERT INTO items (id, owner_id, name, description, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		item.ID,
		item.OwnerID,
		item.Name,
		item.Description,
		item.Value,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*shared.Item, error) {
	query := `
		SELECT id, owner_id, name, description, value, created_at, updated_at
		FROM items
		WHERE id = $1
	`

	var item shared.Item
	err := r.conn.GetDB().QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.OwnerID,
		&item.Name,
		&item.Description,
		&item.Value,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &item, nil
}
