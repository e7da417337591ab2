package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/deposit"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/identity"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

// DepositManager owns the deposit lifecycle for auction participation.
// Charging, refunding and capturing run through the external payment
// collaborator; only the status machine lives here.
type DepositManager struct {
	depositRepo outbound.DepositRepository
	auctionRepo outbound.AuctionRepository
	catalog     outbound.Catalog
	payments    outbound.PaymentGateway
	clock       shared.Clock
	rate        float64
	logger      zerolog.Logger
}

type DepositManagerParams struct {
	DepositRepo outbound.DepositRepository
	AuctionRepo outbound.AuctionRepository
	Catalog     outbound.Catalog
	Payments    outbound.PaymentGateway
	Clock       shared.Clock
	Rate        float64
	Logger      zerolog.Logger
}

// NewDepositManager creates a new deposit manager
func NewDepositManager(params DepositManagerParams) *DepositManager {
	return &DepositManager{
		depositRepo: params.DepositRepo,
		auctionRepo: params.AuctionRepo,
		catalog:     params.Catalog,
		payments:    params.Payments,
		clock:       params.Clock,
		rate:        params.Rate,
		logger:      params.Logger.With().Str("component", "deposit_manager").Logger(),
	}
}

// DepositRequired reports whether an auction of the given value gates
// bidding on a paid deposit. Any auction valuable enough to require identity
// verification also requires a deposit.
func DepositRequired(value float64) bool {
	return identity.RequiredTier(value) > identity.TierNone
}

// Require ensures a pending deposit exists for the (auction, user) pair and
// returns it. Idempotent: an existing deposit is returned as-is.
func (m *DepositManager) Require(ctx context.Context, auctionID, userID uuid.UUID) (*deposit.Deposit, error) {
	if d, err := m.depositRepo.Get(ctx, auctionID, userID); err == nil {
		return d, nil
	} else if !errors.Is(err, shared.ErrDepositNotFound) {
		return nil, err
	}

	a, err := m.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	// The deposit base is whichever is higher: the auction's own value or
	// the listing value declared in the catalog.
	base := a.Value()
	if listed, err := m.catalog.GetListingValue(ctx, a.ItemID); err == nil && listed > base {
		base = listed
	}

	now := m.clock.Now()
	d := &deposit.Deposit{
		ID:        uuid.New(),
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    base * m.rate,
		Status:    deposit.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.depositRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("auction_id", auctionID.String()).
		Str("user_id", userID.String()).
		Float64("amount", d.Amount).
		Msg("Deposit required")

	return d, nil
}

// Pay charges the pending deposit through the payment collaborator and marks
// it paid.
func (m *DepositManager) Pay(ctx context.Context, auctionID, userID uuid.UUID) (*deposit.Deposit, error) {
	d, err := m.depositRepo.Get(ctx, auctionID, userID)
	if err != nil {
		return nil, err
	}

	receipt, err := m.payments.ChargeDeposit(ctx, userID, d.Amount)
	if err != nil {
		m.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Deposit charge failed")
		return nil, err
	}

	if err := d.Transition(deposit.StatusPaid, m.clock.Now()); err != nil {
		return nil, err
	}
	d.Receipt = receipt
	if err := m.depositRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("auction_id", auctionID.String()).
		Str("user_id", userID.String()).
		Str("receipt", receipt).
		Msg("Deposit paid")

	return d, nil
}

// IsPaid reports whether the user has a cleared deposit for the auction.
func (m *DepositManager) IsPaid(ctx context.Context, auctionID, userID uuid.UUID) (bool, error) {
	d, err := m.depositRepo.Get(ctx, auctionID, userID)
	if errors.Is(err, shared.ErrDepositNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return d.IsPaid(), nil
}

// SettleAuction applies the winner's deposit and refunds everyone else's.
// Called on completion; pass a nil winner to refund all (cancellation, no
// winner).
func (m *DepositManager) SettleAuction(ctx context.Context, auctionID uuid.UUID, winnerID *uuid.UUID) error {
	deposits, err := m.depositRepo.GetByAuctionID(ctx, auctionID)
	if err != nil {
		return err
	}

	for _, d := range deposits {
		if winnerID != nil && d.UserID == *winnerID {
			if err := m.apply(ctx, d); err != nil {
				return err
			}
			continue
		}
		if err := m.refund(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Forfeit seizes a paid deposit on policy violation, e.g. a winning bidder
// failing to complete the purchase.
func (m *DepositManager) Forfeit(ctx context.Context, auctionID, userID uuid.UUID) error {
	d, err := m.depositRepo.Get(ctx, auctionID, userID)
	if err != nil {
		return err
	}
	if err := d.Transition(deposit.StatusForfeited, m.clock.Now()); err != nil {
		return err
	}
	if d.Receipt != "" {
		if err := m.payments.Capture(ctx, d.Receipt); err != nil {
			return err
		}
	}
	if err := m.depositRepo.Update(ctx, d); err != nil {
		return err
	}

	m.logger.Warn().
		Str("auction_id", auctionID.String()).
		Str("user_id", userID.String()).
		Msg("Deposit forfeited")

	return nil
}

func (m *DepositManager) apply(ctx context.Context, d *deposit.Deposit) error {
	if d.Status == deposit.StatusApplied {
		return nil
	}
	if err := d.Transition(deposit.StatusApplied, m.clock.Now()); err != nil {
		return err
	}
	if d.Receipt != "" {
		if err := m.payments.Capture(ctx, d.Receipt); err != nil {
			return err
		}
	}
	return m.depositRepo.Update(ctx, d)
}

func (m *DepositManager) refund(ctx context.Context, d *deposit.Deposit) error {
	if d.Status == deposit.StatusRefunded || d.Status == deposit.StatusApplied || d.Status == deposit.StatusForfeited {
		return nil
	}
	wasPaid := d.IsPaid()
	if err := d.Transition(deposit.StatusRefunded, m.clock.Now()); err != nil {
		return err
	}
	if wasPaid && d.Receipt != "" {
		if err := m.payments.Refund(ctx, d.Receipt); err != nil {
			return err
		}
	}
	return m.depositRepo.Update(ctx, d)
}
