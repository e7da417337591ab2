package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/config"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/auction"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/identity"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/format"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/inbound"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

// Timekeeper schedules timed auction transitions. Implemented by the redis
// scheduler adapter; the engine reschedules closes when anti-sniping moves a
// deadline.
type Timekeeper interface {
	ScheduleOpen(auctionID uuid.UUID, at time.Time) error
	ScheduleClose(auctionID uuid.UUID, at time.Time) error
}

// Engine is the auction state machine and admission orchestrator. Each
// auction serializes on its own mutex: eligibility and fraud I/O run before
// the lock, price/deadline/status mutation inside it. Different auctions
// never contend.
type Engine struct {
	auctionRepo  outbound.AuctionRepository
	bidRepo      outbound.BidRepository
	itemRepo     outbound.ItemRepository
	userRepo     outbound.UserRepository
	alertRepo    outbound.AlertRepository
	fingerprints outbound.FingerprintRepository
	verification outbound.VerificationService
	catalog      outbound.Catalog
	deposits     *DepositManager
	scorer       *FraudScorer
	broadcaster  outbound.Broadcaster
	timekeeper   Timekeeper
	clock        shared.Clock
	policy       config.BiddingConfig
	logger       zerolog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

type EngineParams struct {
	AuctionRepo  outbound.AuctionRepository
	BidRepo      outbound.BidRepository
	ItemRepo     outbound.ItemRepository
	UserRepo     outbound.UserRepository
	AlertRepo    outbound.AlertRepository
	Fingerprints outbound.FingerprintRepository
	Verification outbound.VerificationService
	Catalog      outbound.Catalog
	Deposits     *DepositManager
	Scorer       *FraudScorer
	Broadcaster  outbound.Broadcaster
	Clock        shared.Clock
	Policy       config.BiddingConfig
	Logger       zerolog.Logger
}

// NewEngine creates a new bidding engine
func NewEngine(params EngineParams) *Engine {
	return &Engine{
		auctionRepo:  params.AuctionRepo,
		bidRepo:      params.BidRepo,
		itemRepo:     params.ItemRepo,
		userRepo:     params.UserRepo,
		alertRepo:    params.AlertRepo,
		fingerprints: params.Fingerprints,
		verification: params.Verification,
		catalog:      params.Catalog,
		deposits:     params.Deposits,
		scorer:       params.Scorer,
		broadcaster:  params.Broadcaster,
		clock:        params.Clock,
		policy:       params.Policy,
		logger:       params.Logger.With().Str("component", "bidding_engine").Logger(),
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

// SetTimekeeper wires the scheduler after construction; the scheduler needs
// the engine and the engine needs the scheduler.
func (e *Engine) SetTimekeeper(tk Timekeeper) {
	e.timekeeper = tk
}

// lockFor returns the serialization mutex for one auction, creating it on
// first use. The registry lock is only held for the map access, never while
// an auction lock is held.
func (e *Engine) lockFor(auctionID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[auctionID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[auctionID] = l
	}
	return l
}

// CreateAuction validates and registers a new auction in scheduled state.
func (e *Engine) CreateAuction(ctx context.Context, req inbound.CreateAuctionRequest) (*auction.Auction, error) {
	e.logger.Info().
		Str("item_id", req.ItemID.String()).
		Str("owner_id", req.OwnerID.String()).
		Str("format", string(req.Format)).
		Float64("starting_price", req.StartingPrice).
		Msg("Attempting to create auction")

	item, err := e.itemRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, shared.ErrItemNotFound
	}

	if _, err := e.userRepo.GetByID(ctx, req.OwnerID); err != nil {
		return nil, shared.ErrUserNotFound
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, shared.ErrInvalidTimeFormat
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, shared.ErrInvalidTimeFormat
	}

	now := e.clock.Now()
	if startTime.Before(now) {
		return nil, shared.ErrInvalidStartTime
	}
	if !endTime.After(startTime) {
		return nil, shared.ErrInvalidEndTime
	}
	if req.StartingPrice <= 0 {
		return nil, shared.ErrInvalidStartPrice
	}

	existing, err := e.auctionRepo.GetActiveByItemID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, shared.ErrItemAlreadyListed
	}

	a := &auction.Auction{
		ID:            uuid.New(),
		ItemID:        item.ID,
		OwnerID:       req.OwnerID,
		Format:        req.Format,
		StartingPrice: req.StartingPrice,
		ReservePrice:  req.ReservePrice,
		BuyNowPrice:   req.BuyNowPrice,
		MaxBudget:     req.MaxBudget,
		MinIncrement:  req.MinIncrement,
		StartTime:     startTime,
		EndTime:       endTime,
		CurrentPrice:  req.StartingPrice,
		Status:        auction.StatusScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := e.auctionRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	if e.timekeeper != nil {
		if err := e.timekeeper.ScheduleOpen(a.ID, a.StartTime); err != nil {
			e.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to schedule auction open")
		}
		if err := e.timekeeper.ScheduleClose(a.ID, a.EndTime); err != nil {
			e.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to schedule auction close")
		}
	}

	e.publish(a.ID, outbound.EventTypeAuctionCreated, map[string]interface{}{
		"format":         string(a.Format),
		"starting_price": a.StartingPrice,
		"start_time":     a.StartTime.Unix(),
		"end_time":       a.EndTime.Unix(),
	})

	e.logger.Info().Str("auction_id", a.ID.String()).Msg("Auction created")
	return a, nil
}

// Open transitions a scheduled auction to active once its start time has
// passed. Re-invocation on an already-active auction is a no-op.
func (e *Engine) Open(ctx context.Context, auctionID uuid.UUID) error {
	lock := e.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	a, err := e.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return err
	}

	if a.IsActive() {
		return nil
	}

	now := e.clock.Now()
	if a.Status != auction.StatusScheduled || now.Before(a.StartTime) {
		return shared.ErrInvalidTransition
	}

	if err := a.Advance(auction.StatusActive, now); err != nil {
		return err
	}
	if err := e.auctionRepo.Update(ctx, a); err != nil {
		return err
	}

	e.logger.Info().Str("auction_id", auctionID.String()).Msg("Auction opened")
	return nil
}

// effectiveValue resolves the value that drives tier and deposit gating:
// the auction's own floor, raised by the catalog listing value when the
// catalog prices the item higher.
func (e *Engine) effectiveValue(ctx context.Context, a *auction.Auction) float64 {
	value := a.Value()
	if e.catalog == nil {
		return value
	}
	if listed, err := e.catalog.GetListingValue(ctx, a.ItemID); err == nil && listed > value {
		value = listed
	}
	return value
}

// SubmitBid runs the admission pipeline for one bid. Eligibility and fraud
// checks run before the per-auction lock; ledger append, price update, status
// re-evaluation and anti-sniping run inside it. A rejection leaves no state
// behind.
func (e *Engine) SubmitBid(ctx context.Context, req inbound.SubmitBidRequest) (*inbound.BidReceipt, error) {
	logger := e.logger.With().
		Str("auction_id", req.AuctionID.String()).
		Str("bidder_id", req.BidderID.String()).
		Float64("amount", req.Amount).
		Logger()
	logger.Info().Msg("Attempting to place bid")

	a, err := e.auctionRepo.GetByID(ctx, req.AuctionID)
	if err != nil {
		return nil, shared.ErrAuctionNotFound
	}

	now := e.clock.Now()
	if !a.IsActive() || !now.Before(a.EndTime) {
		logger.Warn().Str("status", string(a.Status)).Msg("Auction not accepting bids")
		return nil, shared.ErrNotActive
	}

	if req.BidderID == a.OwnerID {
		logger.Warn().Msg("Owner attempted to bid on own auction")
		return nil, shared.ErrSelfBid
	}

	if _, err := e.userRepo.GetByID(ctx, req.BidderID); err != nil {
		return nil, shared.ErrUserNotFound
	}

	// Identity and network context go into the fingerprint store before
	// scoring so blocked attempts still leave evidence.
	if err := e.fingerprints.Observe(ctx, req.BidderID, req.Fingerprint, req.IPAddress, now); err != nil {
		logger.Error().Err(err).Msg("Failed to record device fingerprint")
		return nil, err
	}

	value := e.effectiveValue(ctx, a)
	required := identity.RequiredTier(value)
	held, err := e.verification.GetHeldTier(ctx, req.BidderID)
	if err != nil {
		return nil, err
	}
	if !held.Satisfies(required) {
		logger.Warn().
			Str("held_tier", held.String()).
			Str("required_tier", required.String()).
			Msg("Bidder verification tier too low")
		return nil, shared.ErrInsufficientVerification
	}

	if DepositRequired(value) {
		paid, err := e.deposits.IsPaid(ctx, req.AuctionID, req.BidderID)
		if err != nil {
			return nil, err
		}
		if !paid {
			// ensure a pending deposit exists so the caller can remediate
			if _, err := e.deposits.Require(ctx, req.AuctionID, req.BidderID); err != nil {
				return nil, err
			}
			logger.Warn().Msg("Deposit not paid")
			return nil, shared.ErrDepositRequired
		}
	}

	strategy := format.ForAuction(a.Format, e.policy.ReverseExtension)

	// Advisory format check on the pre-lock view. A bid that cannot clear
	// the ledger as it stands is rejected on its own defect before the
	// fraud pipeline runs and leaves alert state. The authoritative check
	// repeats under the lock against the committed price.
	ownBids, err := e.bidRepo.GetByBidder(ctx, req.AuctionID, req.BidderID)
	if err != nil {
		return nil, err
	}
	if err := strategy.Validate(req.Amount, e.snapshotFor(a, ownBids)); err != nil {
		logger.Warn().Err(err).Float64("current_price", a.CurrentPrice).Msg("Bid failed format validation")
		return nil, err
	}

	score, err := e.scorer.Score(ctx, ScoreInput{
		AuctionID:   req.AuctionID,
		BidderID:    req.BidderID,
		OwnerID:     a.OwnerID,
		IPAddress:   req.IPAddress,
		Fingerprint: req.Fingerprint,
		UserAgent:   req.UserAgent,
		Now:         now,
	})
	if err != nil {
		// scoring runs in the admission path: if it cannot complete, the
		// bid fails closed
		logger.Error().Err(err).Msg("Fraud scoring failed, rejecting bid")
		return nil, err
	}

	if score.Action != ActionAllow {
		e.persistAlerts(ctx, req.AuctionID, req.BidderID, score)
	}
	if score.Action == ActionBlock {
		logger.Warn().Int("score", score.Score).Msg("Bid blocked by fraud scorer")
		return nil, shared.ErrFraudBlocked
	}

	// critical section: every read of the current price below stays valid
	// until the matching write commits
	lock := e.lockFor(req.AuctionID)
	lock.Lock()
	defer lock.Unlock()

	a, err = e.auctionRepo.GetByID(ctx, req.AuctionID)
	if err != nil {
		return nil, shared.ErrAuctionNotFound
	}
	now = e.clock.Now()
	if !a.IsActive() || !now.Before(a.EndTime) {
		return nil, shared.ErrNotActive
	}

	ownBids, err = e.bidRepo.GetByBidder(ctx, req.AuctionID, req.BidderID)
	if err != nil {
		return nil, err
	}
	snap := e.snapshotFor(a, ownBids)
	if err := strategy.Validate(req.Amount, snap); err != nil {
		logger.Warn().Err(err).Float64("current_price", a.CurrentPrice).Msg("Bid failed format validation")
		return nil, err
	}

	newBid := &bid.Bid{
		ID:        uuid.New(),
		AuctionID: req.AuctionID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
		Status:    bid.StatusActive,
		PlacedAt:  now,
		UpdatedAt: now,
	}

	if err := e.bidRepo.Append(ctx, newBid); err != nil {
		logger.Error().Err(err).Msg("Failed to append bid to ledger")
		return nil, err
	}

	a.RecordBid(now)
	outbidded, err := e.reevaluate(ctx, a, newBid, strategy, now)
	if err != nil {
		return nil, err
	}

	extended := false
	if strategy.AllowsExtension() && a.EndTime.Sub(now) < e.policy.ExtensionThreshold {
		extended = a.ExtendDeadline(now, e.policy.ExtensionDuration)
		if extended {
			if e.timekeeper != nil {
				if err := e.timekeeper.ScheduleClose(a.ID, a.EndTime); err != nil {
					logger.Error().Err(err).Msg("Failed to reschedule auction close")
				}
			}
			e.publish(a.ID, outbound.EventTypeAuctionExtended, map[string]interface{}{
				"end_time": a.EndTime.Unix(),
			})
		}
	}

	buyNow := strategy.BuyNowTriggered(req.Amount, snap)

	if err := e.auctionRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	for _, ob := range outbidded {
		if ob.BidderID == newBid.BidderID {
			continue
		}
		e.publish(a.ID, outbound.EventTypeOutbid, map[string]interface{}{
			"bid_id":  ob.ID.String(),
			"user_id": ob.BidderID.String(),
			"amount":  ob.Amount,
		})
	}

	bidData := map[string]interface{}{
		"bid_id":    newBid.ID.String(),
		"user_id":   newBid.BidderID.String(),
		"bid_count": a.BidCount,
	}
	if !strategy.Sealed() {
		bidData["amount"] = newBid.Amount
		bidData["current_price"] = a.CurrentPrice
	}
	e.publish(a.ID, outbound.EventTypeBidPlaced, bidData)

	receipt := &inbound.BidReceipt{
		Bid:      newBid,
		EndTime:  a.EndTime,
		Extended: extended,
		Flagged:  score.Action == ActionFlag,
	}
	if !strategy.Sealed() {
		price := a.CurrentPrice
		receipt.CurrentPrice = &price
	}

	if buyNow {
		receipt.BuyNowClosed = true
		if _, err := e.closeLocked(ctx, a, strategy, now); err != nil {
			logger.Error().Err(err).Msg("Buy-now close failed")
			return nil, err
		}
		// closeLocked settles the ledger copies; refresh so the receipt
		// reports the bid as won rather than still winning
		if settled, err := e.bidRepo.GetByID(ctx, newBid.ID); err == nil {
			receipt.Bid = settled
		}
	}

	logger.Info().
		Str("bid_id", newBid.ID.String()).
		Str("status", string(newBid.Status)).
		Bool("extended", extended).
		Bool("buy_now", buyNow).
		Msg("Bid placed successfully")

	return receipt, nil
}

// snapshotFor builds the strategy's view of the ledger. The authoritative
// call happens under the auction lock; the admission path also takes an
// advisory snapshot before it.
func (e *Engine) snapshotFor(a *auction.Auction, ownBids []*bid.Bid) format.Snapshot {
	snap := format.Snapshot{
		StartingPrice: a.StartingPrice,
		ReservePrice:  a.ReservePrice,
		BuyNowPrice:   a.BuyNowPrice,
		MaxBudget:     a.MaxBudget,
		MinIncrement:  a.MinIncrement,
		CurrentPrice:  a.CurrentPrice,
		BidCount:      a.BidCount,
	}
	for _, b := range ownBids {
		snap.BidderHasBid = true
		if !b.IsStanding() {
			continue
		}
		if snap.BidderStanding == nil || b.Amount < *snap.BidderStanding {
			amount := b.Amount
			snap.BidderStanding = &amount
		}
	}
	return snap
}

// reevaluate applies the post-append status transitions: superseded and
// beaten bids flip to outbid, the leading bid to winning. Sealed auctions
// keep every bid active and hidden until reveal. Returns the bids that lost
// the lead so the caller can notify them.
func (e *Engine) reevaluate(ctx context.Context, a *auction.Auction, newBid *bid.Bid, strategy format.Strategy, now time.Time) ([]*bid.Bid, error) {
	if strategy.Sealed() {
		return nil, nil
	}

	all, err := e.bidRepo.GetByAuctionID(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	var outbidded []*bid.Bid
	var leader *bid.Bid
	for _, b := range all {
		if b.ID == newBid.ID {
			continue
		}
		switch b.Status {
		case bid.StatusWinning:
			leader = b
		case bid.StatusActive:
			// reverse tender: the bidder's older standing bid is superseded
			if b.BidderID == newBid.BidderID {
				b.MarkOutbid(now)
				if err := e.bidRepo.Update(ctx, b); err != nil {
					return nil, err
				}
			}
		}
	}

	takesLead := leader == nil || strategy.Beats(newBid, leader)
	if takesLead {
		if leader != nil {
			leader.MarkOutbid(now)
			if err := e.bidRepo.Update(ctx, leader); err != nil {
				return nil, err
			}
			outbidded = append(outbidded, leader)
		}
		newBid.MarkWinning(now)
		a.SetLeader(newBid.BidderID, newBid.Amount, now)
	}
	if err := e.bidRepo.Update(ctx, newBid); err != nil {
		return nil, err
	}
	return outbidded, nil
}

// persistAlerts stores one alert per finding and notifies moderation.
// Persistence failures are logged, not surfaced: evidence loss must not turn
// a block into an allow or vice versa.
func (e *Engine) persistAlerts(ctx context.Context, auctionID, bidderID uuid.UUID, score *ScoreResult) {
	now := e.clock.Now()
	for _, f := range score.Findings {
		alert := &fraud.Alert{
			ID:          uuid.New(),
			AuctionID:   auctionID,
			BidderID:    bidderID,
			Type:        f.Type,
			Confidence:  f.Weight,
			Description: f.Description,
			Status:      fraud.AlertDetected,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := e.alertRepo.Create(ctx, alert); err != nil {
			e.logger.Error().Err(err).
				Str("auction_id", auctionID.String()).
				Str("type", string(f.Type)).
				Msg("Failed to persist fraud alert")
			continue
		}
		e.publish(auctionID, outbound.EventTypeFraudAlertRaised, map[string]interface{}{
			"alert_id": alert.ID.String(),
			"type":     string(alert.Type),
		})
	}
}

// Close ends an active auction once its deadline has passed. Sealed auctions
// are revealed as part of closing. Early invocations after an anti-sniping
// extension reschedule themselves and no-op.
func (e *Engine) Close(ctx context.Context, auctionID uuid.UUID) (*shared.AuctionEndResult, error) {
	lock := e.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	a, err := e.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	if a.Status != auction.StatusActive {
		if a.Status == auction.StatusEnded || a.IsTerminal() {
			return nil, shared.ErrAlreadyClosed
		}
		return nil, shared.ErrInvalidTransition
	}
	if now.Before(a.EndTime) {
		// a bid extended the deadline after this close fired
		if e.timekeeper != nil {
			if err := e.timekeeper.ScheduleClose(a.ID, a.EndTime); err != nil {
				e.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to reschedule auction close")
			}
		}
		return nil, shared.ErrNotActive
	}

	strategy := format.ForAuction(a.Format, e.policy.ReverseExtension)
	return e.closeLocked(ctx, a, strategy, now)
}

// closeLocked performs the actual close. Caller holds the auction lock.
func (e *Engine) closeLocked(ctx context.Context, a *auction.Auction, strategy format.Strategy, now time.Time) (*shared.AuctionEndResult, error) {
	bids, err := e.bidRepo.GetByAuctionID(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	winner := format.Best(strategy, bids)
	if winner != nil && a.Format == auction.FormatEnglish && a.ReservePrice != nil && winner.Amount < *a.ReservePrice {
		// reserve not met: the auction ends without a sale
		winner = nil
	}

	for _, b := range bids {
		if strategy.Sealed() {
			b.Reveal(now)
		}
		if winner != nil && b.ID == winner.ID {
			b.MarkWon(now)
		} else if b.Status != bid.StatusWithdrawn {
			b.MarkLost(now)
		}
		if err := e.bidRepo.Update(ctx, b); err != nil {
			return nil, err
		}
	}

	if err := a.Advance(auction.StatusEnded, now); err != nil {
		return nil, err
	}

	result := &shared.AuctionEndResult{
		AuctionID: a.ID,
		Status:    string(a.Status),
	}
	if winner != nil {
		winnerID := winner.BidderID
		finalPrice := winner.Amount
		result.WinnerID = &winnerID
		result.FinalPrice = &finalPrice
		a.SetLeader(winnerID, finalPrice, now)
	}

	if err := e.auctionRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	if strategy.Sealed() {
		e.publish(a.ID, outbound.EventTypeBidsRevealed, map[string]interface{}{
			"bid_count": len(bids),
		})
	}

	endData := map[string]interface{}{"status": string(a.Status)}
	if result.WinnerID != nil {
		endData["winner_id"] = result.WinnerID.String()
		endData["final_price"] = *result.FinalPrice
	}
	e.publish(a.ID, outbound.EventTypeAuctionEnded, endData)

	e.logger.Info().
		Str("auction_id", a.ID.String()).
		Bool("has_winner", winner != nil).
		Msg("Auction closed")

	return result, nil
}

// Complete settles an ended auction: the winner's deposit is applied,
// everyone else's refunded, and the settlement event emitted for the payment
// collaborator.
func (e *Engine) Complete(ctx context.Context, auctionID uuid.UUID) error {
	lock := e.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	a, err := e.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return err
	}

	now := e.clock.Now()
	if err := a.Advance(auction.StatusCompleted, now); err != nil {
		return err
	}

	if err := e.deposits.SettleAuction(ctx, auctionID, a.CurrentWinner); err != nil {
		return err
	}

	if err := e.auctionRepo.Update(ctx, a); err != nil {
		return err
	}

	data := map[string]interface{}{"final_price": a.CurrentPrice}
	if a.CurrentWinner != nil {
		data["winner_id"] = a.CurrentWinner.String()
	}
	e.publish(auctionID, outbound.EventTypeAuctionCompleted, data)

	e.logger.Info().Str("auction_id", auctionID.String()).Msg("Auction completed")
	return nil
}

// Cancel aborts a pre-terminal auction and refunds every deposit. Forbidden
// once completed.
func (e *Engine) Cancel(ctx context.Context, auctionID uuid.UUID, reason string) error {
	lock := e.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	a, err := e.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return err
	}

	now := e.clock.Now()
	if err := a.Cancel(now); err != nil {
		if a.Status == auction.StatusCompleted {
			return shared.ErrAuctionCompleted
		}
		return err
	}

	if err := e.deposits.SettleAuction(ctx, auctionID, nil); err != nil {
		return err
	}

	if err := e.auctionRepo.Update(ctx, a); err != nil {
		return err
	}

	e.publish(auctionID, outbound.EventTypeAuctionCancelled, map[string]interface{}{
		"reason": reason,
	})

	e.logger.Info().Str("auction_id", auctionID.String()).Str("reason", reason).Msg("Auction cancelled")
	return nil
}

// Snapshot returns the auction view for a caller. Sealed auctions mask the
// price, the leader, and every other bidder's amount until reveal.
func (e *Engine) Snapshot(ctx context.Context, auctionID uuid.UUID, viewerID uuid.UUID) (*inbound.AuctionSnapshot, error) {
	a, err := e.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, shared.ErrAuctionNotFound
	}

	bids, err := e.bidRepo.GetByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	sealedHidden := a.Sealed() && a.Status != auction.StatusEnded && a.Status != auction.StatusCompleted

	snap := &inbound.AuctionSnapshot{
		AuctionID:     a.ID,
		Format:        a.Format,
		Status:        a.Status,
		StartingPrice: a.StartingPrice,
		MinIncrement:  a.MinIncrement,
		BidCount:      a.BidCount,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
	}
	if !sealedHidden {
		price := a.CurrentPrice
		snap.CurrentPrice = &price
		snap.CurrentWinner = a.CurrentWinner
	}

	for _, b := range bids {
		sb := inbound.SnapshotBid{
			BidID:    b.ID,
			BidderID: b.BidderID,
			Status:   b.Status,
			Revealed: b.Revealed,
			PlacedAt: b.PlacedAt,
		}
		if !sealedHidden || b.BidderID == viewerID {
			amount := b.Amount
			sb.Amount = &amount
		}
		snap.Bids = append(snap.Bids, sb)
	}

	return snap, nil
}

// ListAuctions retrieves a page of auctions
func (e *Engine) ListAuctions(ctx context.Context, req inbound.ListAuctionsRequest) ([]*auction.Auction, error) {
	return e.auctionRepo.List(ctx, req.Status, req.Page, req.PageSize)
}

// publish emits a fire-and-forget event; failures are logged only.
func (e *Engine) publish(auctionID uuid.UUID, eventType outbound.EventType, data map[string]interface{}) {
	if e.broadcaster == nil {
		return
	}
	event := outbound.Event{
		Type:      eventType,
		AuctionID: auctionID,
		Data:      data,
		Timestamp: e.clock.Now().Unix(),
	}
	if err := e.broadcaster.Publish(context.Background(), auctionID, event); err != nil {
		e.logger.Error().Err(err).
			Str("auction_id", auctionID.String()).
			Str("event", string(eventType)).
			Msg("Failed to broadcast event")
	}
}
