package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var allStatuses = []AssignmentStatus{
	AssignmentAssigned, AssignmentPickedUp, AssignmentInTransit,
	AssignmentArrived, AssignmentDelivered, AssignmentCancelled,
}

func TestAssignmentTransitions_Exhaustive(t *testing.T) {
	t.Parallel()

	legal := map[AssignmentStatus]map[AssignmentStatus]bool{
		AssignmentAssigned:  {AssignmentPickedUp: true, AssignmentCancelled: true},
		AssignmentPickedUp:  {AssignmentInTransit: true, AssignmentCancelled: true},
		AssignmentInTransit: {AssignmentArrived: true, AssignmentCancelled: true},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[from][to]
			require.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestAssignmentTransitions_DeliveredNeverDirect(t *testing.T) {
	t.Parallel()

	for _, from := range allStatuses {
		require.False(t, from.CanTransitionTo(AssignmentDelivered),
			"%s must not reach DELIVERED outside confirmation", from)
	}
}

func TestAssignmentStatusTerminal(t *testing.T) {
	t.Parallel()

	require.True(t, AssignmentDelivered.Terminal())
	require.True(t, AssignmentCancelled.Terminal())
	for _, s := range []AssignmentStatus{AssignmentAssigned, AssignmentPickedUp, AssignmentInTransit, AssignmentArrived} {
		require.False(t, s.Terminal())
	}
}

func TestAssignmentStatusValid(t *testing.T) {
	t.Parallel()

	for _, s := range allStatuses {
		require.True(t, s.Valid())
	}
	require.False(t, AssignmentStatus("SHIPPED").Valid())
	require.False(t, AssignmentStatus("").Valid())
}

func TestConfirmationCodePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		ok   bool
	}{
		{"AB12C9", true},
		{"000000", true},
		{"ZZZZZZ", true},
		{"ab12c9", false},
		{"AB12C", false},
		{"AB12C99", false},
		{"AB 2C9", false},
		{"", false},
	}
	for _, tc := range tests {
		require.Equal(t, tc.ok, ConfirmationCodePattern.MatchString(tc.code), "code %q", tc.code)
	}
}

func TestPaymentMethodValid(t *testing.T) {
	t.Parallel()

	require.True(t, PaymentCashOnDelivery.Valid())
	require.True(t, PaymentBankTransfer.Valid())
	require.True(t, PaymentMobilePayment.Valid())
	require.False(t, PaymentMethod("CREDIT_CARD").Valid())
	require.False(t, PaymentMethod("").Valid())
}
