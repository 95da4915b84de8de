package loan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/library-loan-system/internal/loan"
	"github.com/iliyamo/library-loan-system/internal/model"
)

func TestInitialExpiry(t *testing.T) {
	issue := date(2024, 1, 15)
	assert.Equal(t, date(2025, 1, 15), loan.InitialExpiry(issue, 12))
	assert.Equal(t, date(2024, 7, 15), loan.InitialExpiry(issue, 6))
}

func TestExtendExpiry(t *testing.T) {
	// Extension always builds on the stored expiry, not on today, so a
	// long-lapsed card can still come out expired after one extension.
	assert.Equal(t, date(2025, 1, 1), loan.ExtendExpiry(date(2024, 1, 1), 12))
}

func TestStatusAfterExtension(t *testing.T) {
	cases := []struct {
		name      string
		newExpiry time.Time
		now       time.Time
		want      string
	}{
		{
			// Expiry 2024-01-01 extended by 12 months lands on
			// 2025-01-01; at 2025-06-01 that is already past, but
			// within the 6 month cancellation window.
			name:      "lapsed within grace stays not renewed",
			newExpiry: date(2025, 1, 1),
			now:       date(2025, 6, 1),
			want:      model.CardStatusNotRenewed,
		},
		{
			name:      "future expiry reactivates the card",
			newExpiry: date(2026, 1, 1),
			now:       date(2025, 6, 1),
			want:      model.CardStatusActive,
		},
		{
			name:      "past the grace window cancels",
			newExpiry: date(2024, 1, 1),
			now:       date(2024, 8, 2),
			want:      model.CardStatusCancelled,
		},
		{
			name:      "exactly at the cancellation threshold is still not renewed",
			newExpiry: date(2024, 1, 1),
			now:       date(2024, 7, 1),
			want:      model.CardStatusNotRenewed,
		},
		{
			name:      "expiring today is not active",
			newExpiry: date(2025, 6, 1),
			now:       date(2025, 6, 1),
			want:      model.CardStatusNotRenewed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, loan.StatusAfterExtension(tc.newExpiry, tc.now, 6))
		})
	}
}

func TestInitialDeposit(t *testing.T) {
	assert.Equal(t, int64(500000), loan.InitialDeposit(model.CardTypeLoan, 500000))
	assert.Equal(t, int64(0), loan.InitialDeposit("Reading Card", 500000), "only loan cards carry a deposit")
}
