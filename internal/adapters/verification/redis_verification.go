package verification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/identity"
)

const tierKey = "verification:tiers"

// RedisVerification reads identity tiers mirrored into Redis by the external
// verification service. Users with no entry hold TierNone.
type RedisVerification struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisVerification creates a verification reader over Redis
func NewRedisVerification(client *redis.Client, logger zerolog.Logger) *RedisVerification {
	return &RedisVerification{
		client: client,
		logger: logger.With().Str("component", "verification").Logger(),
	}
}

// GetHeldTier resolves the tier currently held by userID
func (v *RedisVerification) GetHeldTier(ctx context.Context, userID uuid.UUID) (identity.Tier, error) {
	val, err := v.client.HGet(ctx, tierKey, userID.String()).Result()
	if err == redis.Nil {
		return identity.TierNone, nil
	}
	if err != nil {
		return identity.TierNone, fmt.Errorf("failed to read verification tier: %w", err)
	}

	return identity.ParseTier(val), nil
}

// SetHeldTier mirrors a tier assignment into Redis. Called by the sync job
// that follows the verification service's event stream.
func (v *RedisVerification) SetHeldTier(ctx context.Context, userID uuid.UUID, tier identity.Tier) error {
	if err := v.client.HSet(ctx, tierKey, userID.String(), tier.String()).Err(); err != nil {
		return fmt.Errorf("failed to store verification tier: %w", err)
	}
	v.logger.Debug().
		Str("userId", userID.String()).
		Str("tier", tier.String()).
		Msg("Verification tier updated")
	return nil
}
