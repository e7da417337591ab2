package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

const (
	openSchedule  = "auction:opens"
	closeSchedule = "auction:closes"
)

// TimedEngine is the slice of the bidding engine the scheduler drives. Both
// calls take the engine's per-auction lock, so a timer can never close an
// auction mid-admission.
type TimedEngine interface {
	Open(ctx context.Context, auctionID uuid.UUID) error
	Close(ctx context.Context, auctionID uuid.UUID) (*shared.AuctionEndResult, error)
}

// AuctionScheduler fires timed auction transitions off two redis sorted sets
// scored by unix deadline. Entries survive restarts; the monotonic ZADD means
// rescheduling an extended close is idempotent.
type AuctionScheduler struct {
	redis  *redis.Client
	engine TimedEngine
	logger zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type AuctionSchedulerParams struct {
	RedisClient *redis.Client
	Engine      TimedEngine
	Logger      zerolog.Logger
}

func NewAuctionScheduler(params AuctionSchedulerParams) *AuctionScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &AuctionScheduler{
		redis:  params.RedisClient,
		engine: params.Engine,
		logger: params.Logger.With().Str("component", "auction_scheduler").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ScheduleOpen registers an auction's activation time
func (s *AuctionScheduler) ScheduleOpen(auctionID uuid.UUID, at time.Time) error {
	return s.schedule(openSchedule, auctionID, at)
}

// ScheduleClose registers or moves an auction's close time. Called again
// whenever anti-sniping extends the deadline.
func (s *AuctionScheduler) ScheduleClose(auctionID uuid.UUID, at time.Time) error {
	return s.schedule(closeSchedule, auctionID, at)
}

func (s *AuctionScheduler) schedule(key string, auctionID uuid.UUID, at time.Time) error {
	err := s.redis.ZAdd(s.ctx, key, redis.Z{
		Score:  float64(at.Unix()),
		Member: auctionID.String(),
	}).Err()
	if err != nil {
		s.logger.Error().Err(err).Str("auction_id", auctionID.String()).Str("schedule", key).Msg("Failed to schedule auction transition")
		return fmt.Errorf("failed to schedule auction transition: %w", err)
	}

	s.logger.Info().
		Str("auction_id", auctionID.String()).
		Str("schedule", key).
		Time("at", at).
		Msg("Auction transition scheduled")
	return nil
}

// Start begins the scheduler loop
func (s *AuctionScheduler) Start() {
	s.logger.Info().Msg("Starting auction scheduler")

	s.wg.Add(1)
	go s.loop()
}

// Stop gracefully stops the scheduler
func (s *AuctionScheduler) Stop() {
	s.logger.Info().Msg("Stopping auction scheduler")
	s.cancel()
	s.wg.Wait()
}

func (s *AuctionScheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.fireDue(openSchedule, s.openAuction)
			s.fireDue(closeSchedule, s.closeAuction)
		case <-s.ctx.Done():
			s.logger.Info().Msg("Scheduler loop stopped")
			return
		}
	}
}

// fireDue pulls due entries from one schedule and dispatches them
func (s *AuctionScheduler) fireDue(key string, handle func(uuid.UUID)) {
	now := time.Now().Unix()

	due, err := s.redis.ZRangeByScore(s.ctx, key, &redis.ZRangeBy{
		Min:   "0",
		Max:   strconv.FormatInt(now, 10),
		Count: 10, // Process max 10 at a time
	}).Result()
	if err != nil {
		s.logger.Error().Err(err).Str("schedule", key).Msg("Failed to read due auctions")
		return
	}

	for _, member := range due {
		auctionID, err := uuid.Parse(member)
		if err != nil {
			s.logger.Error().Err(err).Str("auction_id", member).Msg("Invalid auction ID in schedule")
			s.redis.ZRem(s.ctx, key, member)
			continue
		}
		go handle(auctionID)
	}
}

func (s *AuctionScheduler) openAuction(auctionID uuid.UUID) {
	defer s.redis.ZRem(s.ctx, openSchedule, auctionID.String())

	if err := s.engine.Open(s.ctx, auctionID); err != nil {
		s.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to open auction")
		return
	}
	s.logger.Info().Str("auction_id", auctionID.String()).Msg("Auction opened on schedule")
}

func (s *AuctionScheduler) closeAuction(auctionID uuid.UUID) {
	s.logger.Info().Str("auction_id", auctionID.String()).Msg("Processing auction close")

	result, err := s.engine.Close(s.ctx, auctionID)
	if err != nil {
		// NotActive means a late bid extended the deadline; the engine has
		// already moved this entry's score, so it must stay in the schedule
		if errors.Is(err, shared.ErrNotActive) {
			s.logger.Debug().Str("auction_id", auctionID.String()).Msg("Close deferred, deadline extended")
			return
		}
		s.redis.ZRem(s.ctx, closeSchedule, auctionID.String())
		if errors.Is(err, shared.ErrAlreadyClosed) {
			s.logger.Debug().Str("auction_id", auctionID.String()).Msg("Close skipped, already closed")
			return
		}
		s.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to close auction")
		return
	}
	s.redis.ZRem(s.ctx, closeSchedule, auctionID.String())

	logger := s.logger.Info().Str("auction_id", auctionID.String())
	if result.WinnerID != nil {
		logger = logger.Str("winner_id", result.WinnerID.String())
	}
	if result.FinalPrice != nil {
		logger = logger.Float64("final_price", *result.FinalPrice)
	}
	logger.Msg("Auction closed on schedule")
}
