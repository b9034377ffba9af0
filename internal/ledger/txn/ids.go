package txn

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random entity identifier
func NewID() string {
	return uuid.NewString()
}

// NewTransactionID returns a random transaction identifier
func NewTransactionID() string {
	return "TXN-" + strings.ToUpper(uuid.NewString())
}

// NewReceiptNumber returns a random receipt number
func NewReceiptNumber() string {
	return "RCP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
