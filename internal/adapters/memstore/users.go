package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// UserStore is an in-memory user repository
type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*shared.User
}

// NewUserStore creates an empty user store
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*shared.User)}
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) Create(ctx context.Context, u *shared.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *u
	s.users[u.ID] = &cp
	return nil
}

// ItemStore is an in-memory item repository
type ItemStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*shared.Item
}

// NewItemStore creates an empty item store
func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[uuid.UUID]*shared.Item)}
}

func (s *ItemStore) GetByID(ctx context.Context, id uuid.UUID) (*shared.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, shared.ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (s *ItemStore) Create(ctx context.Context, item *shared.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *item
	s.items[item.ID] = &cp
	return nil
}
