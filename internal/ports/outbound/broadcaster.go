package outbound

import (
	"context"

	"github.com/google/uuid"
)

// EventType represents the type of event being broadcasted
type EventType string

const (
	EventTypeAuctionCreated   EventType = "auction.created"
	EventTypeBidPlaced        EventType = "bid.placed"
	EventTypeOutbid           EventType = "bid.outbid"
	EventTypeAuctionExtended  EventType = "auction.extended"
	EventTypeAuctionEnded     EventType = "auction.ended"
	EventTypeAuctionCompleted EventType = "auction.completed"
	EventTypeAuctionCancelled EventType = "auction.cancelled"
	EventTypeBidsRevealed     EventType = "auction.bids_revealed"
	EventTypeFraudAlertRaised EventType = "fraud.alert_raised"
	EventTypeError            EventType = "error"
)

// Event represents a broadcast event
type Event struct {
	Type      EventType              `json:"type"`
	AuctionID uuid.UUID              `json:"auction_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Broadcaster defines the interface for fire-and-forget event dispatch.
// Publish failures are logged by callers, never surfaced to bidders.
type Broadcaster interface {
	// Subscribe subscribes a client to events for a specific auction.
	// When a client subscribes to multiple auctions, all events are delivered
	// to the same channel.
	Subscribe(ctx context.Context, auctionID uuid.UUID, clientID string, eventChan chan Event) error

	// Unsubscribe unsubscribes a client from events for a specific auction
	Unsubscribe(ctx context.Context, auctionID uuid.UUID, clientID string) error

	// Publish publishes an event to all subscribers of an auction
	Publish(ctx context.Context, auctionID uuid.UUID, event Event) error

	// GetSubscribers returns the list of client IDs subscribed to an auction
	GetSubscribers(ctx context.Context, auctionID uuid.UUID) ([]string, error)

	// IsSubscribed checks if a client is subscribed to an auction
	IsSubscribed(ctx context.Context, auctionID uuid.UUID, clientID string) bool
}
