package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

type MessageType string

const (
	// Client to Server message types
	MessageTypeSubscribe       MessageType = "subscribe"
	MessageTypeUnsubscribe     MessageType = "unsubscribe"
	MessageTypePlaceBid        MessageType = "place_bid"
	MessageTypeCreateAuction   MessageType = "create_auction"
	MessageTypeGetAuction      MessageType = "get_auction"
	MessageTypeListAuctions    MessageType = "list_auctions"
	MessageTypePayDeposit      MessageType = "pay_deposit"
	MessageTypeForfeitDeposit  MessageType = "forfeit_deposit"
	MessageTypeCancelAuction   MessageType = "cancel_auction"
	MessageTypeCompleteAuction MessageType = "complete_auction"
	MessageTypeListAlerts      MessageType = "list_alerts"
	MessageTypeUpdateAlert     MessageType = "update_alert"
	MessageTypePing            MessageType = "ping"

	// Server to Client message types
	MessageTypeBidAccepted   MessageType = "bid_accepted"
	MessageTypeAuctionUpdate MessageType = "auction_update"
	MessageTypeAlertUpdate   MessageType = "alert_update"
	MessageTypeError         MessageType = "error"
	MessageTypePong          MessageType = "pong"
)

type ClientMessage struct {
	Type      MessageType            `json:"type"`
	AuctionID *uuid.UUID             `json:"auction_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// ServerMessage represents a message sent from server to client
type ServerMessage struct {
	Type      MessageType            `json:"type"`
	AuctionID *uuid.UUID             `json:"auction_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     *string                `json:"error,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

func NewServerMessage(msgType MessageType) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorMessage(err string, auctionID *uuid.UUID) *ServerMessage {
	return &ServerMessage{
		Type:      MessageTypeError,
		AuctionID: auctionID,
		Error:     &err,
		Timestamp: time.Now().Unix(),
	}
}

func (m *ClientMessage) validateAuctionID() error {
	if m.AuctionID == nil || *m.AuctionID == uuid.Nil {
		return shared.ErrAuctionIDRequired
	}
	return nil
}

// ParseClientMessage parses a JSON message from client
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse client message: %w", err)
	}

	if msg.Type == "" {
		return nil, shared.ErrMessageTypeRequired
	}

	return &msg, nil
}

// Validate validates a client message
func (m *ClientMessage) Validate() error {
	switch m.Type {
	case MessageTypeSubscribe, MessageTypeUnsubscribe, MessageTypeGetAuction, MessageTypePayDeposit,
		MessageTypeCancelAuction, MessageTypeCompleteAuction:
		if err := m.validateAuctionID(); err != nil {
			return err
		}
	case MessageTypeForfeitDeposit:
		if err := m.validateAuctionID(); err != nil {
			return err
		}
		if m.Data["user_id"] == nil {
			return shared.ErrUserIDRequired
		}
	case MessageTypePlaceBid:
		if err := m.validateAuctionID(); err != nil {
			return err
		}
		amount, ok := m.Data["amount"].(float64)
		if !ok || amount <= 0 {
			return shared.ErrInvalidAmount
		}
	case MessageTypeCreateAuction:
		if m.Data["item_id"] == nil {
			return shared.ErrItemIDRequired
		}
		if m.Data["start_time"] == nil {
			return shared.ErrStartTimeRequired
		}
		if m.Data["end_time"] == nil {
			return shared.ErrEndTimeRequired
		}
		if m.Data["starting_price"] == nil {
			return shared.ErrStartPriceRequired
		}
	case MessageTypeUpdateAlert:
		if m.Data["alert_id"] == nil {
			return shared.ErrAlertIDRequired
		}
		if m.Data["status"] == nil {
			return shared.ErrInvalidRequest
		}
	case MessageTypeListAuctions, MessageTypeListAlerts, MessageTypePing:

	default:
		return shared.ErrUnknownMessageType
	}

	return nil
}
