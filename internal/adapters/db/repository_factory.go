package db

import (
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

// RepositoryFactory creates and manages all database repositories
type RepositoryFactory struct {
	conn *Connection
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(conn *Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// GetAuctionRepository returns the auction repository
func (f *RepositoryFactory) GetAuctionRepository() outbound.AuctionRepository {
	return NewAuctionRepository(f.conn)
}

// GetBidRepository returns the bid repository
func (f *RepositoryFactory) GetBidRepository() outbound.BidRepository {
	return NewBidRepository(f.conn)
}

// GetDepositRepository returns the deposit repository
func (f *RepositoryFactory) GetDepositRepository() outbound.DepositRepository {
	return NewDepositRepository(f.conn)
}

// GetAlertRepository returns the fraud alert repository
func (f *RepositoryFactory) GetAlertRepository() outbound.AlertRepository {
	return NewAlertRepository(f.conn)
}

// GetFingerprintRepository returns the device fingerprint repository
func (f *RepositoryFactory) GetFingerprintRepository() outbound.FingerprintRepository {
	return NewFingerprintRepository(f.conn)
}

// GetItemRepository returns the item repository
func (f *RepositoryFactory) GetItemRepository() outbound.ItemRepository {
	return NewItemRepository(f.conn)
}

// GetUserRepository returns the user repository
func (f *RepositoryFactory) GetUserRepository() outbound.UserRepository {
	return NewUserRepository(f.conn)
}
