package fraud

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

func TestAlertReview(t *testing.T) {
	now := time.Now()
	reviewer := uuid.New()

	a := &Alert{Status: AlertDetected}
	require.NoError(t, a.Review(AlertInReview, reviewer, "looking into it", now))
	assert.Equal(t, AlertInReview, a.Status)
	require.NotNil(t, a.ReviewerID)
	assert.Equal(t, reviewer, *a.ReviewerID)
	assert.Equal(t, "looking into it", a.Notes)

	require.NoError(t, a.Review(AlertResolved, reviewer, "confirmed shill", now))
	assert.Equal(t, AlertResolved, a.Status)

	// resolved is terminal
	assert.ErrorIs(t, a.Review(AlertDismissed, reviewer, "", now), shared.ErrAlertInvalidTransition)
	assert.ErrorIs(t, a.Review(AlertDetected, reviewer, "", now), shared.ErrAlertInvalidTransition)
}

func TestAlertReviewShortcuts(t *testing.T) {
	now := time.Now()
	reviewer := uuid.New()

	// detected can resolve or dismiss without passing through in_review
	a := &Alert{Status: AlertDetected}
	require.NoError(t, a.Review(AlertResolved, reviewer, "", now))

	a = &Alert{Status: AlertDetected}
	require.NoError(t, a.Review(AlertDismissed, reviewer, "false positive", now))
	assert.ErrorIs(t, a.Review(AlertInReview, reviewer, "", now), shared.ErrAlertInvalidTransition)
}

func TestFingerprintObserve(t *testing.T) {
	now := time.Now()
	f := &Fingerprint{UserID: uuid.New(), Fingerprint: "fp-1", FirstSeen: now}

	f.Observe("10.0.0.1", now)
	f.Observe("10.0.0.1", now.Add(time.Minute))
	f.Observe("10.0.0.2", now.Add(2*time.Minute))

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, f.Origins)
	assert.Equal(t, 3, f.UseCount)
	assert.Equal(t, now.Add(2*time.Minute), f.LastSeen)
}

func TestFingerprintObserveEmptyOrigin(t *testing.T) {
	now := time.Now()
	f := &Fingerprint{UserID: uuid.New(), Fingerprint: "fp-1"}

	f.Observe("", now)
	assert.Empty(t, f.Origins)
	assert.Equal(t, 1, f.UseCount)
}
