package deposit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

func TestTransitionPending(t *testing.T) {
	now := time.Now()

	d := &Deposit{Status: StatusPending}
	require.NoError(t, d.Transition(StatusPaid, now))
	assert.Equal(t, StatusPaid, d.Status)
	require.NotNil(t, d.PaidAt)
	assert.Equal(t, now, *d.PaidAt)

	d = &Deposit{Status: StatusPending}
	require.NoError(t, d.Transition(StatusRefunded, now))
	assert.Nil(t, d.PaidAt)

	// pending can neither be applied nor forfeited
	d = &Deposit{Status: StatusPending}
	assert.ErrorIs(t, d.Transition(StatusApplied, now), shared.ErrDepositInvalidTransition)
	assert.ErrorIs(t, d.Transition(StatusForfeited, now), shared.ErrDepositInvalidTransition)
}

func TestTransitionPaid(t *testing.T) {
	now := time.Now()

	for _, next := range []Status{StatusRefunded, StatusApplied, StatusForfeited} {
		d := &Deposit{Status: StatusPaid}
		require.NoError(t, d.Transition(next, now))
		assert.Equal(t, next, d.Status)
	}

	d := &Deposit{Status: StatusPaid}
	assert.ErrorIs(t, d.Transition(StatusPending, now), shared.ErrDepositInvalidTransition)
}

func TestTerminalStatesAreFrozen(t *testing.T) {
	now := time.Now()

	for _, terminal := range []Status{StatusRefunded, StatusApplied, StatusForfeited} {
		d := &Deposit{Status: terminal}
		for _, next := range []Status{StatusPending, StatusPaid, StatusRefunded, StatusApplied, StatusForfeited} {
			assert.ErrorIs(t, d.Transition(next, now), shared.ErrDepositInvalidTransition,
				"%s -> %s should be illegal", terminal, next)
		}
	}
}

func TestIsPaid(t *testing.T) {
	assert.False(t, (&Deposit{Status: StatusPending}).IsPaid())
	assert.True(t, (&Deposit{Status: StatusPaid}).IsPaid())
	assert.False(t, (&Deposit{Status: StatusApplied}).IsPaid())
}
