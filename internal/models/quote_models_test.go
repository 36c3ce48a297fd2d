package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassifyValidity(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		validUntil time.Time
		want       QuoteValidity
	}{
		{"well in the future", now.Add(3 * time.Hour), ValidityValid},
		{"exactly one hour out", now.Add(time.Hour), ValidityValid},
		{"just inside the hour", now.Add(time.Hour - time.Second), ValidityExpiringSoon},
		{"one minute left", now.Add(time.Minute), ValidityExpiringSoon},
		{"exactly now", now, ValidityExpired},
		{"in the past", now.Add(-time.Minute), ValidityExpired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ClassifyValidity(tc.validUntil, now))
		})
	}
}

func TestQuoteSelectable_Boundary(t *testing.T) {
	t.Parallel()

	sentAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	q := &Quote{
		Status:     QuoteStatusPending,
		ValidUntil: sentAt.Add(90 * time.Minute),
	}

	require.True(t, q.Selectable(sentAt.Add(89*time.Minute)))
	require.False(t, q.Selectable(sentAt.Add(90*time.Minute)))
	require.False(t, q.Selectable(sentAt.Add(91*time.Minute)))
}

func TestQuoteSelectable_StatusGates(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	future := now.Add(time.Hour)

	for _, status := range []QuoteStatus{QuoteStatusAccepted, QuoteStatusRejected} {
		q := &Quote{Status: status, ValidUntil: future}
		require.False(t, q.Selectable(now), "status %s must not be selectable", status)
	}

	q := &Quote{Status: QuoteStatusPending, ValidUntil: future}
	require.True(t, q.Selectable(now))
}

func TestQuoteRequestOpen(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	open := &QuoteRequest{Status: RequestStatusOpen, ExpiresAt: now.Add(time.Hour)}
	require.True(t, open.Open(now))
	require.False(t, open.Open(now.Add(time.Hour)), "expiry instant itself is closed")

	for _, status := range []RequestStatus{RequestStatusAccepted, RequestStatusAbandoned, RequestStatusExpired} {
		r := &QuoteRequest{Status: status, ExpiresAt: now.Add(time.Hour)}
		require.False(t, r.Open(now), "status %s must not be open", status)
	}
}
