package loan

import (
	"time"

	"github.com/iliyamo/library-loan-system/internal/model"
)

// InitialExpiry computes the expiry of a freshly issued card.
func InitialExpiry(issueDate time.Time, validityMonths int) time.Time {
	return dateOnly(issueDate).AddDate(0, validityMonths, 0)
}

// ExtendExpiry pushes the current expiry forward by the configured
// validity window. The setting is re-read at extend time, so a changed
// configuration applies to the next extension.
func ExtendExpiry(currentExpiry time.Time, validityMonths int) time.Time {
	return dateOnly(currentExpiry).AddDate(0, validityMonths, 0)
}

// StatusAfterExtension decides the card status once the new expiry is
// known. A future expiry keeps the card Active. An expiry already in
// the past leaves it Not Renewed until now also passes the cancellation
// threshold (expiry plus the grace months), at which point the card is
// Cancelled.
func StatusAfterExtension(newExpiry, now time.Time, graceMonths int) string {
	if newExpiry.After(dateOnly(now)) {
		return model.CardStatusActive
	}
	cancelThreshold := newExpiry.AddDate(0, graceMonths, 0)
	if dateOnly(now).After(cancelThreshold) {
		return model.CardStatusCancelled
	}
	return model.CardStatusNotRenewed
}

// InitialDeposit seeds the deposit balance of a new card: the selected
// package amount for loan cards, zero for every other card type.
func InitialDeposit(cardType string, packageAmount int64) int64 {
	if cardType == model.CardTypeLoan {
		return packageAmount
	}
	return 0
}
