package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPaid, StatusProcessing, true},
		{StatusPaid, StatusCancelled, true},
		{StatusPaid, StatusPending, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusPaid, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTransitionInitialize(t *testing.T) {
	o := &Order{}
	require.NoError(t, Transition(o, StatusPending))
	assert.Equal(t, StatusPending, o.Status)
}

func TestTransitionIllegalLeavesOrderUnchanged(t *testing.T) {
	o := &Order{Status: StatusDelivered}
	err := Transition(o, StatusCancelled)
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StatusDelivered, o.Status)
}

func TestTransitionTerminalStatesHaveNoExit(t *testing.T) {
	for _, terminal := range []Status{StatusDelivered, StatusCancelled} {
		for _, to := range []Status{StatusPending, StatusPaid, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
			assert.False(t, CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

func TestTransitionFullLifecycle(t *testing.T) {
	o := &Order{}
	for _, s := range []Status{StatusPending, StatusPaid, StatusProcessing, StatusShipped, StatusDelivered} {
		require.NoError(t, Transition(o, s))
	}
	assert.Equal(t, StatusDelivered, o.Status)
}
