package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type chargeState string

const (
	chargeHeld     chargeState = "held"
	chargeRefunded chargeState = "refunded"
	chargeCaptured chargeState = "captured"
)

type charge struct {
	userID uuid.UUID
	amount float64
	state  chargeState
}

// LedgerGateway is a payment gateway that holds deposit charges in an
// in-process ledger. It stands in for the marketplace's escrow provider and
// keeps the same receipt semantics: a receipt is charged once, then either
// refunded or captured exactly once.
type LedgerGateway struct {
	mu      sync.Mutex
	charges map[string]*charge
	logger  zerolog.Logger
}

// NewLedgerGateway creates a new in-process payment gateway
func NewLedgerGateway(logger zerolog.Logger) *LedgerGateway {
	return &LedgerGateway{
		charges: make(map[string]*charge),
		logger:  logger.With().Str("component", "payments").Logger(),
	}
}

// ChargeDeposit places a hold on the user's payment method and returns the
// receipt identifying it
func (g *LedgerGateway) ChargeDeposit(ctx context.Context, userID uuid.UUID, amount float64) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("charge amount must be positive, got %f", amount)
	}

	receipt := uuid.New().String()

	g.mu.Lock()
	g.charges[receipt] = &charge{userID: userID, amount: amount, state: chargeHeld}
	g.mu.Unlock()

	g.logger.Info().
		Str("userId", userID.String()).
		Float64("amount", amount).
		Str("receipt", receipt).
		Msg("Deposit hold placed")
	return receipt, nil
}

// Refund releases a held charge back to the user
func (g *LedgerGateway) Refund(ctx context.Context, receipt string) error {
	return g.settle(receipt, chargeRefunded)
}

// Capture collects a held charge
func (g *LedgerGateway) Capture(ctx context.Context, receipt string) error {
	return g.settle(receipt, chargeCaptured)
}

func (g *LedgerGateway) settle(receipt string, next chargeState) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.charges[receipt]
	if !ok {
		return fmt.Errorf("unknown receipt %s", receipt)
	}
	if c.state != chargeHeld {
		return fmt.Errorf("receipt %s already settled as %s", receipt, c.state)
	}
	c.state = next

	g.logger.Info().
		Str("receipt", receipt).
		Str("state", string(next)).
		Float64("amount", c.amount).
		Msg("Deposit hold settled")
	return nil
}
