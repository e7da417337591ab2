package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

func TestParseClientMessage(t *testing.T) {
	auctionID := uuid.New()

	t.Run("valid bid message", func(t *testing.T) {
		raw := []byte(`{"type":"place_bid","auction_id":"` + auctionID.String() + `","data":{"amount":150.5}}`)
		msg, err := ParseClientMessage(raw)
		require.NoError(t, err)
		assert.Equal(t, MessageTypePlaceBid, msg.Type)
		require.NotNil(t, msg.AuctionID)
		assert.Equal(t, auctionID, *msg.AuctionID)
		assert.Equal(t, 150.5, msg.Data["amount"])
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseClientMessage([]byte(`{"type":`))
		assert.Error(t, err)
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := ParseClientMessage([]byte(`{"auction_id":"` + auctionID.String() + `"}`))
		assert.ErrorIs(t, err, shared.ErrMessageTypeRequired)
	})
}

func TestClientMessageValidate(t *testing.T) {
	auctionID := uuid.New()

	tests := []struct {
		name    string
		msg     ClientMessage
		wantErr error
	}{
		{
			name: "subscribe needs auction id",
			msg:  ClientMessage{Type: MessageTypeSubscribe},

			wantErr: shared.ErrAuctionIDRequired,
		},
		{
			name:    "subscribe rejects nil uuid",
			msg:     ClientMessage{Type: MessageTypeSubscribe, AuctionID: &uuid.Nil},
			wantErr: shared.ErrAuctionIDRequired,
		},
		{
			name: "subscribe ok",
			msg:  ClientMessage{Type: MessageTypeSubscribe, AuctionID: &auctionID},
		},
		{
			name:    "bid without amount",
			msg:     ClientMessage{Type: MessageTypePlaceBid, AuctionID: &auctionID, Data: map[string]interface{}{}},
			wantErr: shared.ErrInvalidAmount,
		},
		{
			name:    "bid with non-positive amount",
			msg:     ClientMessage{Type: MessageTypePlaceBid, AuctionID: &auctionID, Data: map[string]interface{}{"amount": 0.0}},
			wantErr: shared.ErrInvalidAmount,
		},
		{
			name: "bid ok",
			msg:  ClientMessage{Type: MessageTypePlaceBid, AuctionID: &auctionID, Data: map[string]interface{}{"amount": 42.0}},
		},
		{
			name: "create auction missing item",
			msg: ClientMessage{Type: MessageTypeCreateAuction, Data: map[string]interface{}{
				"start_time": "2025-06-01T12:00:00Z", "end_time": "2025-06-02T12:00:00Z", "starting_price": 100.0,
			}},
			wantErr: shared.ErrItemIDRequired,
		},
		{
			name: "create auction missing price",
			msg: ClientMessage{Type: MessageTypeCreateAuction, Data: map[string]interface{}{
				"item_id": uuid.NewString(), "start_time": "2025-06-01T12:00:00Z", "end_time": "2025-06-02T12:00:00Z",
			}},
			wantErr: shared.ErrStartPriceRequired,
		},
		{
			name: "create auction ok",
			msg: ClientMessage{Type: MessageTypeCreateAuction, Data: map[string]interface{}{
				"item_id": uuid.NewString(), "start_time": "2025-06-01T12:00:00Z",
				"end_time": "2025-06-02T12:00:00Z", "starting_price": 100.0,
			}},
		},
		{
			name:    "update alert missing id",
			msg:     ClientMessage{Type: MessageTypeUpdateAlert, Data: map[string]interface{}{"status": "resolved"}},
			wantErr: shared.ErrAlertIDRequired,
		},
		{
			name:    "update alert missing status",
			msg:     ClientMessage{Type: MessageTypeUpdateAlert, Data: map[string]interface{}{"alert_id": uuid.NewString()}},
			wantErr: shared.ErrInvalidRequest,
		},
		{
			name:    "cancel auction needs auction id",
			msg:     ClientMessage{Type: MessageTypeCancelAuction},
			wantErr: shared.ErrAuctionIDRequired,
		},
		{
			name: "cancel auction ok",
			msg:  ClientMessage{Type: MessageTypeCancelAuction, AuctionID: &auctionID},
		},
		{
			name:    "complete auction needs auction id",
			msg:     ClientMessage{Type: MessageTypeCompleteAuction},
			wantErr: shared.ErrAuctionIDRequired,
		},
		{
			name: "complete auction ok",
			msg:  ClientMessage{Type: MessageTypeCompleteAuction, AuctionID: &auctionID},
		},
		{
			name:    "forfeit deposit missing user",
			msg:     ClientMessage{Type: MessageTypeForfeitDeposit, AuctionID: &auctionID, Data: map[string]interface{}{}},
			wantErr: shared.ErrUserIDRequired,
		},
		{
			name: "forfeit deposit ok",
			msg:  ClientMessage{Type: MessageTypeForfeitDeposit, AuctionID: &auctionID, Data: map[string]interface{}{"user_id": uuid.NewString()}},
		},
		{
			name: "list auctions needs nothing",
			msg:  ClientMessage{Type: MessageTypeListAuctions},
		},
		{
			name: "ping needs nothing",
			msg:  ClientMessage{Type: MessageTypePing},
		},
		{
			name:    "unknown type",
			msg:     ClientMessage{Type: "teleport"},
			wantErr: shared.ErrUnknownMessageType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewErrorMessage(t *testing.T) {
	auctionID := uuid.New()
	msg := NewErrorMessage("auction not found", &auctionID)
	assert.Equal(t, MessageTypeError, msg.Type)
	require.NotNil(t, msg.Error)
	assert.Equal(t, "auction not found", *msg.Error)
	assert.Equal(t, auctionID, *msg.AuctionID)
}
