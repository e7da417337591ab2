package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
)

type fingerprintKey struct {
	userID uuid.UUID
	print  string
}

// FingerprintStore is an in-memory device fingerprint store with secondary
// indexes by fingerprint and by network origin for the scorer's account
// linkage queries.
type FingerprintStore struct {
	mu       sync.RWMutex
	records  map[fingerprintKey]*fraud.Fingerprint
	byPrint  map[string]map[uuid.UUID]bool
	byOrigin map[string]map[uuid.UUID]bool
}

// NewFingerprintStore creates an empty fingerprint store
func NewFingerprintStore() *FingerprintStore {
	return &FingerprintStore{
		records:  make(map[fingerprintKey]*fraud.Fingerprint),
		byPrint:  make(map[string]map[uuid.UUID]bool),
		byOrigin: make(map[string]map[uuid.UUID]bool),
	}
}

func (s *FingerprintStore) Observe(ctx context.Context, userID uuid.UUID, fingerprint, origin string, seenAt time.Time) error {
	if fingerprint == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := fingerprintKey{userID, fingerprint}
	rec, ok := s.records[key]
	if !ok {
		rec = &fraud.Fingerprint{
			UserID:      userID,
			Fingerprint: fingerprint,
			FirstSeen:   seenAt,
		}
		s.records[key] = rec
	}
	rec.Observe(origin, seenAt)

	if s.byPrint[fingerprint] == nil {
		s.byPrint[fingerprint] = make(map[uuid.UUID]bool)
	}
	s.byPrint[fingerprint][userID] = true

	if origin != "" {
		if s.byOrigin[origin] == nil {
			s.byOrigin[origin] = make(map[uuid.UUID]bool)
		}
		s.byOrigin[origin][userID] = true
	}
	return nil
}

func (s *FingerprintStore) GetByUser(ctx context.Context, userID uuid.UUID) ([]*fraud.Fingerprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*fraud.Fingerprint
	for key, rec := range s.records {
		if key.userID != userID {
			continue
		}
		cp := *rec
		cp.Origins = append([]string(nil), rec.Origins...)
		matched = append(matched, &cp)
	}
	return matched, nil
}

func (s *FingerprintStore) UsersByFingerprint(ctx context.Context, fingerprint string) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return keysOf(s.byPrint[fingerprint]), nil
}

func (s *FingerprintStore) UsersByOrigin(ctx context.Context, origin string) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return keysOf(s.byOrigin[origin]), nil
}

func keysOf(set map[uuid.UUID]bool) []uuid.UUID {
	users := make([]uuid.UUID, 0, len(set))
	for id := range set {
		users = append(users, id)
	}
	return users
}
