package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/config"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/bid"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

// ScoreAction is the scorer's recommendation for one bid attempt
type ScoreAction string

const (
	ActionAllow ScoreAction = "allow"
	ActionFlag  ScoreAction = "flag"
	ActionBlock ScoreAction = "block"
)

// ScoreInput carries everything one scoring pass reads. The scorer itself
// holds no per-bid state: identical inputs always produce identical results.
type ScoreInput struct {
	AuctionID   uuid.UUID
	BidderID    uuid.UUID
	OwnerID     uuid.UUID
	IPAddress   string
	Fingerprint string
	UserAgent   string
	Now         time.Time
}

// ScoreResult is the joined outcome of all findings
type ScoreResult struct {
	Score    int
	Action   ScoreAction
	Findings []fraud.Finding
}

// FraudScorer runs the trust heuristics over the bid ledger and fingerprint
// store. All queries are read-only, so scoring on one auction never contends
// with admissions on another.
type FraudScorer struct {
	bidRepo      outbound.BidRepository
	fingerprints outbound.FingerprintRepository
	policy       config.FraudConfig
	logger       zerolog.Logger
}

type FraudScorerParams struct {
	BidRepo      outbound.BidRepository
	Fingerprints outbound.FingerprintRepository
	Policy       config.FraudConfig
	Logger       zerolog.Logger
}

// NewFraudScorer creates a new fraud scorer
func NewFraudScorer(params FraudScorerParams) *FraudScorer {
	return &FraudScorer{
		bidRepo:      params.BidRepo,
		fingerprints: params.Fingerprints,
		policy:       params.Policy,
		logger:       params.Logger.With().Str("component", "fraud_scorer").Logger(),
	}
}

// Score fans the independent findings out, joins them, and thresholds the
// sum. The findings never depend on each other's results, so they run
// concurrently; slots keep the joined order deterministic.
func (s *FraudScorer) Score(ctx context.Context, input ScoreInput) (*ScoreResult, error) {
	checks := []func(context.Context, ScoreInput) ([]fraud.Finding, error){
		s.checkSharedDevice,
		s.checkShillHistory,
		s.checkBidShielding,
		s.checkRapidBidding,
		s.checkLinkedAccounts,
	}

	slots := make([][]fraud.Finding, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			findings, err := check(gctx, input)
			if err != nil {
				return err
			}
			slots[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fraud scoring failed: %w", err)
	}

	result := &ScoreResult{Action: ActionAllow}
	for _, findings := range slots {
		for _, f := range findings {
			result.Score += f.Weight
			result.Findings = append(result.Findings, f)
		}
	}

	switch {
	case result.Score >= s.policy.BlockThreshold:
		result.Action = ActionBlock
	case result.Score >= s.policy.FlagThreshold:
		result.Action = ActionFlag
	}

	s.logger.Debug().
		Str("auction_id", input.AuctionID.String()).
		Str("bidder_id", input.BidderID.String()).
		Int("score", result.Score).
		Str("action", string(result.Action)).
		Int("findings", len(result.Findings)).
		Msg("Fraud score computed")

	return result, nil
}

// checkSharedDevice flags a device fingerprint seen on both the bidder's and
// the owner's accounts: the strongest shill signal we have.
func (s *FraudScorer) checkSharedDevice(ctx context.Context, input ScoreInput) ([]fraud.Finding, error) {
	prints, err := s.fingerprints.GetByUser(ctx, input.BidderID)
	if err != nil {
		return nil, err
	}

	for _, fp := range prints {
		users, err := s.fingerprints.UsersByFingerprint(ctx, fp.Fingerprint)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if u == input.OwnerID {
				return []fraud.Finding{{
					Type:        fraud.AlertDeviceFingerprintMatch,
					Weight:      s.policy.SharedDeviceWeight,
					Description: "bidder and seller share a device fingerprint",
				}}, nil
			}
		}
	}
	return nil, nil
}

// checkShillHistory flags a bidder who keeps returning to the same seller's
// auctions.
func (s *FraudScorer) checkShillHistory(ctx context.Context, input ScoreInput) ([]fraud.Finding, error) {
	count, err := s.bidRepo.CountByBidderOnOwner(ctx, input.BidderID, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if count > s.policy.ShillHistoryMax {
		return []fraud.Finding{{
			Type:        fraud.AlertShillBidding,
			Weight:      s.policy.ShillHistoryWeight,
			Description: fmt.Sprintf("bidder has %d historical bids on this seller's auctions", count),
		}}, nil
	}
	return nil, nil
}

// checkBidShielding flags rapid bid/retract cycling: most of the bidder's
// recent bids on this auction ending outbid.
func (s *FraudScorer) checkBidShielding(ctx context.Context, input ScoreInput) ([]fraud.Finding, error) {
	bids, err := s.bidRepo.GetByBidder(ctx, input.AuctionID, input.BidderID)
	if err != nil {
		return nil, err
	}
	if len(bids) > s.policy.ShieldingSample {
		bids = bids[:s.policy.ShieldingSample]
	}

	outbid := 0
	for _, b := range bids {
		if b.Status == bid.StatusOutbid || b.Status == bid.StatusWithdrawn {
			outbid++
		}
	}
	if outbid >= s.policy.ShieldingMinOutbid {
		return []fraud.Finding{{
			Type:        fraud.AlertShillBidding,
			Weight:      s.policy.ShieldingWeight,
			Description: fmt.Sprintf("bid shielding pattern: %d of the bidder's last %d bids ended outbid", outbid, len(bids)),
		}}, nil
	}
	return nil, nil
}

// checkRapidBidding flags burst bidding inside the rolling window.
func (s *FraudScorer) checkRapidBidding(ctx context.Context, input ScoreInput) ([]fraud.Finding, error) {
	since := input.Now.Add(-s.policy.RapidWindow)
	bids, err := s.bidRepo.GetRecentByBidder(ctx, input.AuctionID, input.BidderID, since)
	if err != nil {
		return nil, err
	}
	if len(bids) < s.policy.RapidMinBids {
		return nil, nil
	}

	// bids arrive newest first; the mean inter-bid gap over n bids is the
	// span between the newest and oldest divided by n-1
	newest := bids[0].PlacedAt
	oldest := bids[len(bids)-1].PlacedAt
	meanGap := newest.Sub(oldest) / time.Duration(len(bids)-1)
	if meanGap < s.policy.RapidMeanGap {
		return []fraud.Finding{{
			Type:        fraud.AlertRapidBidding,
			Weight:      s.policy.RapidWeight,
			Description: fmt.Sprintf("%d bids within %s, mean interval %s", len(bids), s.policy.RapidWindow, meanGap),
		}}, nil
	}
	return nil, nil
}

// checkLinkedAccounts flags fingerprints and network origins tied to other
// accounts.
func (s *FraudScorer) checkLinkedAccounts(ctx context.Context, input ScoreInput) ([]fraud.Finding, error) {
	var findings []fraud.Finding

	if input.Fingerprint != "" {
		users, err := s.fingerprints.UsersByFingerprint(ctx, input.Fingerprint)
		if err != nil {
			return nil, err
		}
		others := countOthers(users, input.BidderID)
		if others > 0 {
			findings = append(findings, fraud.Finding{
				Type:        fraud.AlertMultipleAccounts,
				Weight:      s.policy.LinkedDeviceWeight,
				Description: fmt.Sprintf("device fingerprint linked to %d other accounts", others),
			})
		}
	}

	if input.IPAddress != "" {
		users, err := s.fingerprints.UsersByOrigin(ctx, input.IPAddress)
		if err != nil {
			return nil, err
		}
		others := countOthers(users, input.BidderID)
		if others > s.policy.LinkedOriginAccounts {
			findings = append(findings, fraud.Finding{
				Type:        fraud.AlertMultipleAccounts,
				Weight:      s.policy.LinkedOriginWeight,
				Description: fmt.Sprintf("network origin linked to %d other accounts", others),
			})
		}
	}

	return findings, nil
}

func countOthers(users []uuid.UUID, self uuid.UUID) int {
	others := 0
	for _, u := range users {
		if u != self {
			others++
		}
	}
	return others
}
