package fraud

import (
	"time"

	"github.com/google/uuid"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

// AlertType tags the heuristic that produced an alert
type AlertType string

const (
	AlertDeviceFingerprintMatch AlertType = "device_fingerprint_match"
	AlertShillBidding           AlertType = "shill_bidding"
	AlertRapidBidding           AlertType = "rapid_bidding"
	AlertMultipleAccounts       AlertType = "multiple_accounts"
)

// AlertStatus tracks moderation review of an alert
type AlertStatus string

const (
	AlertDetected  AlertStatus = "detected"
	AlertInReview  AlertStatus = "in_review"
	AlertResolved  AlertStatus = "resolved"
	AlertDismissed AlertStatus = "dismissed"
)

var alertTransitions = map[AlertStatus][]AlertStatus{
	AlertDetected: {AlertInReview, AlertResolved, AlertDismissed},
	AlertInReview: {AlertResolved, AlertDismissed},
}

// Alert is append-only evidence produced during bid admission. Bidders never
// see alerts; moderators move them through review.
type Alert struct {
	ID          uuid.UUID   `json:"id"`
	AuctionID   uuid.UUID   `json:"auction_id"`
	BidderID    uuid.UUID   `json:"bidder_id"`
	Type        AlertType   `json:"type"`
	Confidence  int         `json:"confidence"`
	Description string      `json:"description"`
	Status      AlertStatus `json:"status"`
	ReviewerID  *uuid.UUID  `json:"reviewer_id,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Review moves the alert to next if that edge is legal.
func (a *Alert) Review(next AlertStatus, reviewerID uuid.UUID, notes string, now time.Time) error {
	for _, s := range alertTransitions[a.Status] {
		if s == next {
			a.Status = next
			a.ReviewerID = &reviewerID
			a.Notes = notes
			a.UpdatedAt = now
			return nil
		}
	}
	return shared.ErrAlertInvalidTransition
}

// Finding is one weighted heuristic hit from the scorer. Findings only become
// alerts when the summed score crosses the flag threshold.
type Finding struct {
	Type        AlertType
	Weight      int
	Description string
}

// Fingerprint records one (user, device) association and the network origins
// it has been seen from. Written once per unique pair, then updated in place.
type Fingerprint struct {
	UserID      uuid.UUID `json:"user_id"`
	Fingerprint string    `json:"fingerprint"`
	Origins     []string  `json:"origins"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	UseCount    int       `json:"use_count"`
}

// Observe folds a repeat sighting into the record, deduplicating origins.
func (f *Fingerprint) Observe(origin string, now time.Time) {
	f.LastSeen = now
	f.UseCount++
	if origin == "" {
		return
	}
	for _, o := range f.Origins {
		if o == origin {
			return
		}
	}
	f.Origins = append(f.Origins, origin)
}
