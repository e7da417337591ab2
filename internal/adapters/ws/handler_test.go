package ws

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/catalog"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/memstore"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/payments"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/app"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/config"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/deposit"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

type handlerFixture struct {
	handler     *WsHandler
	client      *WsClient
	auctions    *memstore.AuctionStore
	depositRepo *memstore.DepositStore
	deposits    *app.DepositManager

	owner  uuid.UUID
	bidder uuid.UUID
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	logger := zerolog.Nop()
	auctions := memstore.NewAuctionStore()
	bids := memstore.NewBidStore(auctions)
	depositRepo := memstore.NewDepositStore()
	items := memstore.NewItemStore()
	clock := shared.SystemClock{}

	deposits := app.NewDepositManager(app.DepositManagerParams{
		DepositRepo: depositRepo,
		AuctionRepo: auctions,
		Catalog:     catalog.NewItemCatalog(items),
		Payments:    payments.NewLedgerGateway(logger),
		Clock:       clock,
		Rate:        0.1,
		Logger:      logger,
	})
	engine := app.NewEngine(app.EngineParams{
		AuctionRepo:  auctions,
		BidRepo:      bids,
		ItemRepo:     items,
		UserRepo:     memstore.NewUserStore(),
		AlertRepo:    memstore.NewAlertStore(),
		Fingerprints: memstore.NewFingerprintStore(),
		Catalog:      catalog.NewItemCatalog(items),
		Deposits:     deposits,
		Clock:        clock,
		Policy: config.BiddingConfig{
			ExtensionThreshold: 5 * time.Minute,
			ExtensionDuration:  10 * time.Minute,
			DepositRate:        0.1,
		},
		Logger: logger,
	})

	f := &handlerFixture{
		auctions:    auctions,
		depositRepo: depositRepo,
		deposits:    deposits,
		owner:       uuid.New(),
		bidder:      uuid.New(),
	}
	f.handler = NewHandler(WsHandlerParams{
		Engine:   engine,
		Deposits: deposits,
		Logger:   logger,
	})
	f.client = NewClient(WsClientParams{
		UserID:  uuid.New(),
		Handler: f.handler,
		Logger:  logger,
	})
	return f
}

func (f *handlerFixture) seedAuction(t *testing.T, status auction.Status) *auction.Auction {
	t.Helper()

	now := time.Now()
	a := &auction.Auction{
		ID:            uuid.New(),
		ItemID:        uuid.New(),
		OwnerID:       f.owner,
		Format:        auction.FormatEnglish,
		StartingPrice: 500,
		MinIncrement:  10,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
		CurrentPrice:  500,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.auctions.Create(context.Background(), a))
	return a
}

func TestHandleCancelAuctionMessage(t *testing.T) {
	f := newHandlerFixture(t)
	a := f.seedAuction(t, auction.StatusActive)

	msg := &ClientMessage{
		Type:      MessageTypeCancelAuction,
		AuctionID: &a.ID,
		Data:      map[string]interface{}{"reason": "listing withdrawn"},
	}
	require.NoError(t, msg.Validate())
	require.NoError(t, f.handler.HandleClientMessage(f.client, msg))

	stored, err := f.auctions.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusCancelled, stored.Status)

	resp := <-f.client.sendChan
	assert.Equal(t, MessageTypeAuctionUpdate, resp.Type)
	assert.Equal(t, "cancelled", resp.Data["status"])
	assert.Equal(t, "listing withdrawn", resp.Data["reason"])
}

func TestHandleCancelAuctionMessageRejected(t *testing.T) {
	f := newHandlerFixture(t)
	a := f.seedAuction(t, auction.StatusCompleted)

	msg := &ClientMessage{Type: MessageTypeCancelAuction, AuctionID: &a.ID}
	require.NoError(t, f.handler.HandleClientMessage(f.client, msg))

	resp := <-f.client.sendChan
	assert.Equal(t, MessageTypeError, resp.Type)
	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.ErrAuctionCompleted.Error(), *resp.Error)
}

func TestHandleCompleteAuctionMessage(t *testing.T) {
	f := newHandlerFixture(t)
	a := f.seedAuction(t, auction.StatusEnded)

	msg := &ClientMessage{Type: MessageTypeCompleteAuction, AuctionID: &a.ID}
	require.NoError(t, msg.Validate())
	require.NoError(t, f.handler.HandleClientMessage(f.client, msg))

	stored, err := f.auctions.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusCompleted, stored.Status)

	resp := <-f.client.sendChan
	assert.Equal(t, MessageTypeAuctionUpdate, resp.Type)
	assert.Equal(t, "completed", resp.Data["status"])
}

func TestHandleForfeitDepositMessage(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()
	a := f.seedAuction(t, auction.StatusEnded)

	_, err := f.deposits.Require(ctx, a.ID, f.bidder)
	require.NoError(t, err)
	_, err = f.deposits.Pay(ctx, a.ID, f.bidder)
	require.NoError(t, err)

	msg := &ClientMessage{
		Type:      MessageTypeForfeitDeposit,
		AuctionID: &a.ID,
		Data:      map[string]interface{}{"user_id": f.bidder.String()},
	}
	require.NoError(t, msg.Validate())
	require.NoError(t, f.handler.HandleClientMessage(f.client, msg))

	d, err := f.depositRepo.Get(ctx, a.ID, f.bidder)
	require.NoError(t, err)
	assert.Equal(t, deposit.StatusForfeited, d.Status)

	resp := <-f.client.sendChan
	assert.Equal(t, MessageTypeAuctionUpdate, resp.Type)
	assert.Equal(t, "forfeited", resp.Data["deposit_status"])
}

func TestHandleForfeitDepositMessageBadUserID(t *testing.T) {
	f := newHandlerFixture(t)
	a := f.seedAuction(t, auction.StatusEnded)

	msg := &ClientMessage{
		Type:      MessageTypeForfeitDeposit,
		AuctionID: &a.ID,
		Data:      map[string]interface{}{"user_id": "not-a-uuid"},
	}
	assert.ErrorIs(t, f.handler.HandleClientMessage(f.client, msg), shared.ErrInvalidRequest)
}
