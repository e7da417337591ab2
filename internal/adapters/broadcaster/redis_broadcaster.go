package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

// channelFor names the redis pub/sub channel carrying one auction's events
func channelFor(auctionID uuid.UUID) string {
	return fmt.Sprintf("bidding:auction:%s", auctionID.String())
}

// RedisBroadcaster implements outbound.Broadcaster over Redis pub/sub. It
// carries all notification dispatch: bid placed, outbid, extension, close,
// reveal and fraud alert events fan out to every subscribed client, across
// engine instances.
type RedisBroadcaster struct {
	client        *redis.Client
	subscribers   map[string]chan outbound.Event // clientID -> local channel
	pubsubs       map[string]*redis.PubSub       // clientID -> pubsub instance
	auctionsByCli map[string]map[string]bool     // clientID -> auctionID -> subscribed
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
	logger        zerolog.Logger
}

type RedisBroadcasterParams struct {
	RedisClient *redis.Client
	Logger      zerolog.Logger
}

// NewBroadcaster creates a broadcaster on top of an existing redis client
func NewBroadcaster(params RedisBroadcasterParams) *RedisBroadcaster {
	ctx, cancel := context.WithCancel(context.Background())

	return &RedisBroadcaster{
		client:        params.RedisClient,
		subscribers:   make(map[string]chan outbound.Event),
		pubsubs:       make(map[string]*redis.PubSub),
		auctionsByCli: make(map[string]map[string]bool),
		ctx:           ctx,
		cancel:        cancel,
		logger:        params.Logger.With().Str("component", "redis_broadcaster").Logger(),
	}
}

// Subscribe subscribes a client to events for a specific auction. A client's
// first subscription creates its pubsub connection and forwarding goroutine;
// later subscriptions reuse both.
func (r *RedisBroadcaster) Subscribe(ctx context.Context, auctionID uuid.UUID, clientID string, eventChan chan outbound.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.auctionsByCli[clientID] != nil && r.auctionsByCli[clientID][auctionID.String()] {
		return nil
	}

	if r.subscribers[clientID] == nil {
		r.subscribers[clientID] = eventChan
	}
	if r.auctionsByCli[clientID] == nil {
		r.auctionsByCli[clientID] = make(map[string]bool)
	}
	r.auctionsByCli[clientID][auctionID.String()] = true

	pubsub, exists := r.pubsubs[clientID]
	if !exists {
		pubsub = r.client.Subscribe(ctx)
		r.pubsubs[clientID] = pubsub
		go r.forward(pubsub, clientID, eventChan)
	}

	if err := pubsub.Subscribe(ctx, channelFor(auctionID)); err != nil {
		r.logger.Error().Err(err).
			Str("client_id", clientID).
			Str("auction_id", auctionID.String()).
			Msg("Failed to subscribe to Redis channel")
		return err
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("auction_id", auctionID.String()).
		Msg("Client subscribed to auction")
	return nil
}

// Unsubscribe unsubscribes a client from events for a specific auction; the
// client's pubsub connection is torn down with its last subscription. The
// event channel itself belongs to the ws handler and is never closed here,
// the broadcaster only stops forwarding into it.
func (r *RedisBroadcaster) Unsubscribe(ctx context.Context, auctionID uuid.UUID, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clientAuctions, exists := r.auctionsByCli[clientID]
	if !exists {
		return nil
	}
	delete(clientAuctions, auctionID.String())

	if len(clientAuctions) > 0 {
		if pubsub, ok := r.pubsubs[clientID]; ok {
			if err := pubsub.Unsubscribe(ctx, channelFor(auctionID)); err != nil {
				r.logger.Error().Err(err).
					Str("client_id", clientID).
					Str("auction_id", auctionID.String()).
					Msg("Error unsubscribing from Redis channel")
			}
		}
		return nil
	}

	delete(r.auctionsByCli, clientID)
	delete(r.subscribers, clientID)
	if pubsub, ok := r.pubsubs[clientID]; ok {
		if err := pubsub.Close(); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub")
		}
		delete(r.pubsubs, clientID)
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("auction_id", auctionID.String()).
		Msg("Client unsubscribed from auction")
	return nil
}

// Publish publishes an event to all subscribers of an auction via Redis
func (r *RedisBroadcaster) Publish(ctx context.Context, auctionID uuid.UUID, event outbound.Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	result := r.client.Publish(ctx, channelFor(auctionID), payload)
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	r.logger.Debug().
		Str("event_type", string(event.Type)).
		Str("auction_id", auctionID.String()).
		Int64("subscriber_count", result.Val()).
		Msg("Published auction event")

	return nil
}

func (r *RedisBroadcaster) GetSubscribers(ctx context.Context, auctionID uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var subscribers []string
	for clientID, auctions := range r.auctionsByCli {
		if auctions[auctionID.String()] {
			subscribers = append(subscribers, clientID)
		}
	}
	return subscribers, nil
}

func (r *RedisBroadcaster) IsSubscribed(ctx context.Context, auctionID uuid.UUID, clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clientAuctions, exists := r.auctionsByCli[clientID]
	return exists && clientAuctions[auctionID.String()]
}

// forward shuttles redis messages onto the client's local channel. A full
// channel drops the event rather than blocking the shared reader.
func (r *RedisBroadcaster) forward(pubsub *redis.PubSub, clientID string, localChan chan outbound.Event) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error().Interface("panic", err).Str("client_id", clientID).Msg("Broadcast forwarder panic")
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event outbound.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Error().Err(err).Str("client_id", clientID).Msg("Failed to unmarshal broadcast event")
				continue
			}
			select {
			case localChan <- event:
			default:
				r.logger.Warn().Str("client_id", clientID).Msg("Client event channel full, dropping event")
			}
		case <-r.ctx.Done():
			return
		}
	}
}

// Close shuts the broadcaster down, closing every pubsub connection along
// with the redis client. Client event channels stay open for the ws handler
// to close on disconnect.
func (r *RedisBroadcaster) Close() error {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	for clientID := range r.subscribers {
		delete(r.subscribers, clientID)
	}
	for clientID, pubsub := range r.pubsubs {
		if err := pubsub.Close(); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub")
		}
		delete(r.pubsubs, clientID)
	}

	return r.client.Close()
}
