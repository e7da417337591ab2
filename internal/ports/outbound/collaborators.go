package outbound

import (
	"context"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/identity"
)

// VerificationService resolves a user's held identity-verification tier.
// Document review and tier assignment happen in an external service; this
// engine only compares held against required.
type VerificationService interface {
	GetHeldTier(ctx context.Context, userID uuid.UUID) (identity.Tier, error)
}

// Catalog resolves listing metadata owned by the marketplace catalog service.
type Catalog interface {
	GetListingValue(ctx context.Context, itemID uuid.UUID) (float64, error)
}

// PaymentGateway is the external payment/escrow collaborator. Receipts are
// opaque handles the gateway understands.
type PaymentGateway interface {
	ChargeDeposit(ctx context.Context, userID uuid.UUID, amount float64) (receipt string, err error)
	Refund(ctx context.Context, receipt string) error
	Capture(ctx context.Context, receipt string) error
}
