package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/fraud"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/ports/outbound"
)

// ModerationService serves the admin surface: listing fraud alert evidence
// and moving alerts through review.
type ModerationService struct {
	alertRepo outbound.AlertRepository
	clock     shared.Clock
	logger    zerolog.Logger
}

type ModerationServiceParams struct {
	AlertRepo outbound.AlertRepository
	Clock     shared.Clock
	Logger    zerolog.Logger
}

// NewModerationService creates a new moderation service
func NewModerationService(params ModerationServiceParams) *ModerationService {
	return &ModerationService{
		alertRepo: params.AlertRepo,
		clock:     params.Clock,
		logger:    params.Logger.With().Str("component", "moderation_service").Logger(),
	}
}

// ListAlerts retrieves a page of alerts matching the filter, newest first,
// plus the total match count.
func (s *ModerationService) ListAlerts(ctx context.Context, filter outbound.AlertFilter, page, pageSize int) ([]*fraud.Alert, int, error) {
	return s.alertRepo.List(ctx, filter, page, pageSize)
}

// UpdateAlertStatus moves an alert through its review lifecycle and records
// who acted.
func (s *ModerationService) UpdateAlertStatus(ctx context.Context, alertID uuid.UUID, status fraud.AlertStatus, actorID uuid.UUID, notes string) (*fraud.Alert, error) {
	alert, err := s.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if err := alert.Review(status, actorID, notes, s.clock.Now()); err != nil {
		s.logger.Warn().
			Str("alert_id", alertID.String()).
			Str("from", string(alert.Status)).
			Str("to", string(status)).
			Msg("Illegal alert transition")
		return nil, err
	}

	if err := s.alertRepo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("alert_id", alertID.String()).
		Str("status", string(status)).
		Str("actor_id", actorID.String()).
		Msg("Alert status updated")

	return alert, nil
}
