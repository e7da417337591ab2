package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

// AlertStore is an in-memory fraud alert repository
type AlertStore struct {
	mu     sync.RWMutex
	alerts map[uuid.UUID]*fraud.Alert
	order  []uuid.UUID
}

// NewAlertStore creates an empty alert store
func NewAlertStore() *AlertStore {
	return &AlertStore{alerts: make(map[uuid.UUID]*fraud.Alert)}
}

func (s *AlertStore) Create(ctx context.Context, a *fraud.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	s.alerts[a.ID] = &cp
	s.order = append(s.order, a.ID)
	return nil
}

func (s *AlertStore) GetByID(ctx context.Context, id uuid.UUID) (*fraud.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, shared.ErrAlertNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *AlertStore) List(ctx context.Context, filter outbound.AlertFilter, page, pageSize int) ([]*fraud.Alert, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*fraud.Alert
	// newest first
	for i := len(s.order) - 1; i >= 0; i-- {
		a := s.alerts[s.order[i]]
		if filter.AuctionID != nil && a.AuctionID != *filter.AuctionID {
			continue
		}
		if filter.BidderID != nil && a.BidderID != *filter.BidderID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && a.Type != *filter.Type {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}
	return paginate(matched, page, pageSize), len(matched), nil
}

func (s *AlertStore) Update(ctx context.Context, a *fraud.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alerts[a.ID]; !ok {
		return shared.ErrAlertNotFound
	}
	cp := *a
	s.alerts[a.ID] = &cp
	return nil
}
