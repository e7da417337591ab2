package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

// ItemCatalog resolves listing values from the item store
type ItemCatalog struct {
	items outbound.ItemRepository
}

// NewItemCatalog creates a catalog over the item repository
func NewItemCatalog(items outbound.ItemRepository) *ItemCatalog {
	return &ItemCatalog{items: items}
}

// GetListingValue returns the declared value of an item
func (c *ItemCatalog) GetListingValue(ctx context.Context, itemID uuid.UUID) (float64, error) {
	item, err := c.items.GetByID(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return item.Value, nil
}
