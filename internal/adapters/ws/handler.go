package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/inbound"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

// WsHandler manages WebSocket connections and message routing
type WsHandler struct {
	clients       map[string]*WsClient // clientID -> Client
	clientsMu     sync.RWMutex
	eventChannels map[string]chan outbound.Event // clientID -> local event channel
	channelsMu    sync.RWMutex
	upgrader      websocket.Upgrader
	engine        inbound.BiddingEngine
	moderation    inbound.ModerationService
	deposits      inbound.DepositService
	broadcaster   outbound.Broadcaster
	logger        zerolog.Logger
}

type WsHandlerParams struct {
	Upgrader    websocket.Upgrader
	Engine      inbound.BiddingEngine
	Moderation  inbound.ModerationService
	Deposits    inbound.DepositService
	Broadcaster outbound.Broadcaster
	Logger      zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(params WsHandlerParams) *WsHandler {
	return &WsHandler{
		clients:       make(map[string]*WsClient),
		eventChannels: make(map[string]chan outbound.Event),
		upgrader:      params.Upgrader,
		engine:        params.Engine,
		moderation:    params.Moderation,
		deposits:      params.Deposits,
		broadcaster:   params.Broadcaster,
		logger:        params.Logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleWebSocket handles WebSocket connection upgrades
func (handler *WsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userIDStr := r.URL.Query().Get("user_id")
	if userIDStr == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "invalid user_id format", http.StatusBadRequest)
		return
	}

	// Request context the trust scorer reads. The fingerprint arrives from
	// the client-side collector; the origin and agent come off the request.
	fingerprint := r.URL.Query().Get("device_fingerprint")
	userAgent := r.Header.Get("User-Agent")

	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		handler.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(WsClientParams{
		UserID:      userID,
		RemoteAddr:  r.RemoteAddr,
		Fingerprint: fingerprint,
		UserAgent:   userAgent,
		Conn:        conn,
		Handler:     handler,
		Logger:      handler.logger,
	})

	handler.registerClient(client)
	handler.createEventChannel(client.id)
	client.Start()

	go handler.listenForClientEvents(client)

	go func() {
		<-client.ctx.Done()
		handler.unregisterClient(client)
	}()

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID.String()).Msg("WebSocket client connected")
}

// createEventChannel creates a local event channel for a client
func (handler *WsHandler) createEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if eventChan, exists := handler.eventChannels[clientID]; exists {
		return eventChan
	}

	eventChan := make(chan outbound.Event, 100)
	handler.eventChannels[clientID] = eventChan
	return eventChan
}

func (handler *WsHandler) getEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.RLock()
	defer handler.channelsMu.RUnlock()

	return handler.eventChannels[clientID]
}

func (handler *WsHandler) removeEventChannel(clientID string) {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if eventChan, exists := handler.eventChannels[clientID]; exists {
		close(eventChan)
		delete(handler.eventChannels, clientID)
	}
}

func (handler *WsHandler) registerClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()
	handler.clients[client.id] = client
}

func (handler *WsHandler) unregisterClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()

	delete(handler.clients, client.id)
	client.Stop()
	handler.removeEventChannel(client.id)

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID.String()).Int("total_clients", len(handler.clients)).Msg("WebSocket client disconnected")
}

// listenForClientEvents forwards broadcast events to the client's socket
func (handler *WsHandler) listenForClientEvents(client *WsClient) {
	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client")
		return
	}

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			wsMessage := handler.convertEventToMessage(event)
			if err := client.Send(wsMessage); err != nil {
				handler.logger.Error().
					Err(err).Str("client_id", client.id).Msg("Failed to send event to WebSocket client")
			}

		case <-client.ctx.Done():
			return
		}
	}
}

func (handler *WsHandler) HandleClientMessage(client *WsClient, msg *ClientMessage) error {
	switch msg.Type {
	case MessageTypeSubscribe:
		return handler.handleSubscribe(client, msg)

	case MessageTypeUnsubscribe:
		return handler.handleUnsubscribe(client, msg)

	case MessageTypePlaceBid:
		return handler.handlePlaceBid(client, msg)

	case MessageTypeCreateAuction:
		return handler.handleCreateAuction(client, msg)

	case MessageTypeGetAuction:
		return handler.handleGetAuction(client, msg)

	case MessageTypeListAuctions:
		return handler.handleListAuctions(client, msg)

	case MessageTypePayDeposit:
		return handler.handlePayDeposit(client, msg)

	case MessageTypeForfeitDeposit:
		return handler.handleForfeitDeposit(client, msg)

	case MessageTypeCancelAuction:
		return handler.handleCancelAuction(client, msg)

	case MessageTypeCompleteAuction:
		return handler.handleCompleteAuction(client, msg)

	case MessageTypeListAlerts:
		return handler.handleListAlerts(client, msg)

	case MessageTypeUpdateAlert:
		return handler.handleUpdateAlert(client, msg)

	default:
		handler.logger.Warn().Str("client_id", client.id).Str("message_type", string(msg.Type)).Msg("Unknown message type from client")
		return shared.ErrUnknownMessageType
	}
}

func (handler *WsHandler) convertEventToMessage(event outbound.Event) *ServerMessage {
	switch event.Type {
	case outbound.EventTypeFraudAlertRaised:
		return &ServerMessage{
			Type:      MessageTypeAlertUpdate,
			AuctionID: &event.AuctionID,
			Data:      event.Data,
			Timestamp: event.Timestamp,
		}
	default:
		data := event.Data
		if data == nil {
			data = make(map[string]interface{})
		}
		data["event"] = string(event.Type)
		return &ServerMessage{
			Type:      MessageTypeAuctionUpdate,
			AuctionID: &event.AuctionID,
			Data:      data,
			Timestamp: event.Timestamp,
		}
	}
}

// GetConnectedClients returns the number of connected clients
func (handler *WsHandler) GetConnectedClients() int {
	handler.clientsMu.RLock()
	defer handler.clientsMu.RUnlock()
	return len(handler.clients)
}

func (handler *WsHandler) handleSubscribe(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client")
		return shared.ErrClientEventChannelNotFound
	}

	if err := handler.broadcaster.Subscribe(ctx, *msg.AuctionID, client.id, eventChan); err != nil {
		handler.logger.Error().Err(err).Str("client_id", client.id).Str("auction_id", msg.AuctionID.String()).Msg("Failed to subscribe to auction")
		return err
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["status"] = "subscribed"

	handler.logger.Info().Str("client_id", client.id).Str("auction_id", msg.AuctionID.String()).Msg("Client subscribed to auction")
	return client.Send(response)
}

// handleUnsubscribe handles unsubscription from auction events
func (handler *WsHandler) handleUnsubscribe(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	if err := handler.broadcaster.Unsubscribe(ctx, *msg.AuctionID, client.id); err != nil {
		return err
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["status"] = "unsubscribed"

	return client.Send(response)
}

// handlePlaceBid runs the bid through the admission pipeline
func (handler *WsHandler) handlePlaceBid(client *WsClient, msg *ClientMessage) error {
	amount, ok := msg.Data["amount"].(float64)
	if !ok {
		return shared.ErrInvalidAmount
	}

	ctx := context.Background()

	receipt, err := handler.engine.SubmitBid(ctx, inbound.SubmitBidRequest{
		AuctionID:   *msg.AuctionID,
		BidderID:    client.userID,
		Amount:      amount,
		ClientID:    client.id,
		IPAddress:   client.remoteAddr,
		Fingerprint: client.fingerprint,
		UserAgent:   client.userAgent,
	})
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), msg.AuctionID)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeBidAccepted)
	response.AuctionID = msg.AuctionID
	response.Data["bid_id"] = receipt.Bid.ID
	response.Data["end_time"] = receipt.EndTime.Format(time.RFC3339)
	response.Data["extended"] = receipt.Extended
	if receipt.CurrentPrice != nil {
		response.Data["current_price"] = *receipt.CurrentPrice
	}
	if receipt.BuyNowClosed {
		response.Data["buy_now_closed"] = true
	}

	handler.logger.Info().Str("bid_id", receipt.Bid.ID.String()).Str("auction_id", msg.AuctionID.String()).Str("user_id", client.userID.String()).Msg("Bid accepted")
	return client.Send(response)
}

// handleCreateAuction handles auction creation
func (handler *WsHandler) handleCreateAuction(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	itemIDStr, ok := msg.Data["item_id"].(string)
	if !ok {
		return shared.ErrItemIDRequired
	}
	itemID, err := uuid.Parse(itemIDStr)
	if err != nil {
		return shared.ErrInvalidRequest
	}

	startTimeStr, ok := msg.Data["start_time"].(string)
	if !ok {
		return shared.ErrStartTimeRequired
	}
	endTimeStr, ok := msg.Data["end_time"].(string)
	if !ok {
		return shared.ErrEndTimeRequired
	}
	startingPrice, ok := msg.Data["starting_price"].(float64)
	if !ok {
		return shared.ErrStartPriceRequired
	}

	req := inbound.CreateAuctionRequest{
		ItemID:        itemID,
		OwnerID:       client.userID,
		Format:        auction.FormatEnglish,
		StartTime:     startTimeStr,
		EndTime:       endTimeStr,
		StartingPrice: startingPrice,
	}
	if formatStr, ok := msg.Data["format"].(string); ok {
		req.Format = auction.Format(formatStr)
	}
	if v, ok := msg.Data["reserve_price"].(float64); ok {
		req.ReservePrice = &v
	}
	if v, ok := msg.Data["buy_now_price"].(float64); ok {
		req.BuyNowPrice = &v
	}
	if v, ok := msg.Data["max_budget"].(float64); ok {
		req.MaxBudget = &v
	}
	if v, ok := msg.Data["min_increment"].(float64); ok {
		req.MinIncrement = v
	}

	a, err := handler.engine.CreateAuction(ctx, req)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), nil)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = &a.ID
	response.Data["auction_id"] = a.ID
	response.Data["item_id"] = a.ItemID
	response.Data["format"] = a.Format
	response.Data["status"] = a.Status
	response.Data["start_time"] = a.StartTime.Format(time.RFC3339)
	response.Data["end_time"] = a.EndTime.Format(time.RFC3339)
	response.Data["starting_price"] = a.StartingPrice

	handler.logger.Info().Str("auction_id", a.ID.String()).Str("user_id", client.userID.String()).Msg("Auction created")
	return client.Send(response)
}

// handleGetAuction returns the viewer-scoped auction snapshot
func (handler *WsHandler) handleGetAuction(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	snapshot, err := handler.engine.Snapshot(ctx, *msg.AuctionID, client.userID)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), msg.AuctionID)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["auction"] = snapshot

	return client.Send(response)
}

// handleListAuctions handles listing auctions
func (handler *WsHandler) handleListAuctions(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	req := inbound.ListAuctionsRequest{Page: 1, PageSize: 10}
	if v, ok := msg.Data["page"].(float64); ok {
		req.Page = int(v)
	}
	if v, ok := msg.Data["page_size"].(float64); ok {
		req.PageSize = int(v)
	}
	if v, ok := msg.Data["status"].(string); ok {
		status := auction.Status(v)
		req.Status = &status
	}

	auctions, err := handler.engine.ListAuctions(ctx, req)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), nil)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.Data["auctions"] = auctions
	response.Data["count"] = len(auctions)

	return client.Send(response)
}

// handlePayDeposit charges the caller's deposit for an auction
func (handler *WsHandler) handlePayDeposit(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	d, err := handler.deposits.Pay(ctx, *msg.AuctionID, client.userID)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), msg.AuctionID)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["deposit_status"] = d.Status
	response.Data["deposit_amount"] = d.Amount

	return client.Send(response)
}

// handleForfeitDeposit seizes a bidder's paid deposit on policy violation
func (handler *WsHandler) handleForfeitDeposit(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	userIDStr, ok := msg.Data["user_id"].(string)
	if !ok {
		return shared.ErrUserIDRequired
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return shared.ErrInvalidRequest
	}

	if err := handler.deposits.Forfeit(ctx, *msg.AuctionID, userID); err != nil {
		errorMsg := NewErrorMessage(err.Error(), msg.AuctionID)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["deposit_status"] = "forfeited"
	response.Data["user_id"] = userID

	handler.logger.Info().Str("auction_id", msg.AuctionID.String()).Str("forfeited_user_id", userID.String()).Msg("Deposit forfeited")
	return client.Send(response)
}

// handleCancelAuction aborts a running auction and refunds its deposits
func (handler *WsHandler) handleCancelAuction(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	reason, _ := msg.Data["reason"].(string)

	if err := handler.engine.Cancel(ctx, *msg.AuctionID, reason); err != nil {
		errorMsg := NewErrorMessage(err.Error(), msg.AuctionID)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["status"] = "cancelled"
	if reason != "" {
		response.Data["reason"] = reason
	}

	handler.logger.Info().Str("auction_id", msg.AuctionID.String()).Str("user_id", client.userID.String()).Msg("Auction cancelled")
	return client.Send(response)
}

// handleCompleteAuction settles an ended auction's deposits
func (handler *WsHandler) handleCompleteAuction(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	if err := handler.engine.Complete(ctx, *msg.AuctionID); err != nil {
		errorMsg := NewErrorMessage(err.Error(), msg.AuctionID)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["status"] = "completed"

	handler.logger.Info().Str("auction_id", msg.AuctionID.String()).Str("user_id", client.userID.String()).Msg("Auction completed")
	return client.Send(response)
}

// handleListAlerts serves the moderation alert queue
func (handler *WsHandler) handleListAlerts(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	var filter outbound.AlertFilter
	if v, ok := msg.Data["auction_id"].(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			filter.AuctionID = &id
		}
	}
	if v, ok := msg.Data["bidder_id"].(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			filter.BidderID = &id
		}
	}
	if v, ok := msg.Data["status"].(string); ok {
		status := fraud.AlertStatus(v)
		filter.Status = &status
	}
	if v, ok := msg.Data["alert_type"].(string); ok {
		alertType := fraud.AlertType(v)
		filter.Type = &alertType
	}

	page, pageSize := 1, 20
	if v, ok := msg.Data["page"].(float64); ok {
		page = int(v)
	}
	if v, ok := msg.Data["page_size"].(float64); ok {
		pageSize = int(v)
	}

	alerts, total, err := handler.moderation.ListAlerts(ctx, filter, page, pageSize)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), nil)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeAlertUpdate)
	response.Data["alerts"] = alerts
	response.Data["total"] = total
	response.Data["page"] = page

	return client.Send(response)
}

// handleUpdateAlert moves an alert through its review lifecycle
func (handler *WsHandler) handleUpdateAlert(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	alertIDStr, ok := msg.Data["alert_id"].(string)
	if !ok {
		return shared.ErrAlertIDRequired
	}
	alertID, err := uuid.Parse(alertIDStr)
	if err != nil {
		return shared.ErrInvalidRequest
	}

	statusStr, ok := msg.Data["status"].(string)
	if !ok {
		return shared.ErrInvalidRequest
	}
	notes, _ := msg.Data["notes"].(string)

	alert, err := handler.moderation.UpdateAlertStatus(ctx, alertID, fraud.AlertStatus(statusStr), client.userID, notes)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), nil)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeAlertUpdate)
	response.Data["alert"] = alert

	return client.Send(response)
}
