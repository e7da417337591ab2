package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
)

// FingerprintRepository implements device fingerprint persistence over
// Postgres. Origins are stored as a text array and deduplicated on write.
type FingerprintRepository struct {
	conn *Connection
}

// NewFingerprintRepository creates a new fingerprint repository
func NewFingerprintRepository(conn *Connection) *FingerprintRepository {
	return &FingerprintRepository{conn: conn}
}

// Observe records a sighting of (userID, fingerprint) from origin. The first
// sighting inserts the row; later sightings bump use_count and last_seen and
// fold in the origin if it is new.
func (r *FingerprintRepository) Observe(ctx context.Context, userID uuid.UUID, fingerprint, origin string, seenAt time.Time) error {
	if fingerprint == "" {
		return nil
	}

	origins := []string{}
	if origin != "" {
		origins = append(origins, origin)
	}

	query := `
		INSERT INTO device_fingerprints (user_id, fingerprint, origins, first_seen, last_seen, use_count)
		VALUES ($1, $2, $3, $4, $4, 1)
		ON CONFLICT (user_id, fingerprint) DO UPDATE SET
			origins = (
				SELECT ARRAY(SELECT DISTINCT o FROM unnest(device_fingerprints.origins || EXCLUDED.origins) AS o)
			),
			last_seen = EXCLUDED.last_seen,
			use_count = device_fingerprints.use_count + 1
	`

	return r.conn.WithRetry(ctx, func(ctx context.Context) error {
		_, err := r.conn.GetDB().ExecContext(ctx, query, userID, fingerprint, pq.Array(origins), seenAt)
		if err != nil {
			return fmt.Errorf("failed to observe fingerprint: %w", err)
		}
		return nil
	})
}

// GetByUser retrieves all fingerprints recorded for a user
func (r *FingerprintRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*fraud.Fingerprint, error) {
	query := `
		SELECT user_id, fingerprint, origins, first_seen, last_seen, use_count
		FROM device_fingerprints
		WHERE user_id = $1
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprints: %w", err)
	}
	defer rows.Close()

	var prints []*fraud.Fingerprint
	for rows.Next() {
		var f fraud.Fingerprint
		if err := rows.Scan(&f.UserID, &f.Fingerprint, pq.Array(&f.Origins), &f.FirstSeen, &f.LastSeen, &f.UseCount); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		prints = append(prints, &f)
	}
	return prints, rows.Err()
}

// UsersByFingerprint retrieves the distinct users a fingerprint is linked to
func (r *FingerprintRepository) UsersByFingerprint(ctx context.Context, fingerprint string) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM device_fingerprints WHERE fingerprint = $1`
	return r.queryUsers(ctx, query, fingerprint)
}

// UsersByOrigin retrieves the distinct users seen from a network origin
func (r *FingerprintRepository) UsersByOrigin(ctx context.Context, origin string) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM device_fingerprints WHERE $1 = ANY(origins)`
	return r.queryUsers(ctx, query, origin)
}

func (r *FingerprintRepository) queryUsers(ctx context.Context, query string, arg interface{}) ([]uuid.UUID, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprint users: %w", err)
	}
	defer rows.Close()

	var users []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
