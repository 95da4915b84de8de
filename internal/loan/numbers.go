package loan

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ReceiptNumber builds a receipt number from a timestamp and a random
// four-digit suffix, e.g. "RC20240110153012-4821". Uniqueness is
// probabilistic, not guaranteed: two receipts generated in the same
// second can collide on the suffix. The format is kept as-is; see the
// open question recorded in DESIGN.md.
func ReceiptNumber(now time.Time) string {
	return fmt.Sprintf("RC%s-%04d", now.Format("20060102150405"), rand.Intn(10000))
}

// InvoiceNumber returns a globally unique invoice reference.
func InvoiceNumber() string {
	return "INV-" + uuid.NewString()
}

// CardNumber builds a printed card number from the issue timestamp and
// a random suffix, mirroring the receipt scheme.
func CardNumber(now time.Time) string {
	return fmt.Sprintf("LC%s-%04d", now.Format("20060102150405"), rand.Intn(10000))
}
