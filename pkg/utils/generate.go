package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateTransactionID creates the platform transaction id used as the
// idempotency key for a payment. The uuid part makes it globally unique;
// the date prefix keeps support lookups readable.
func GenerateTransactionID() string {
	return fmt.Sprintf("TXN-%s-%s", time.Now().Format("20060102"), uuid.NewString())
}

// GenerateReceiptID creates the receipt reference sent to the gateway when
// an order is created.
func GenerateReceiptID() string {
	return uuid.NewString()
}
