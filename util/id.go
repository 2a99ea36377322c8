// Package util provides utility functions for the store management system.
package util

import (
	"github.com/google/uuid"
)

// invoicePrefix marks invoice identifiers in logs and printed invoices.
const invoicePrefix = "INV-"

// NewInvoiceID returns a unique invoice identifier. Identifiers are
// random v4 UUIDs, so uniqueness holds under rapid successive calls
// rather than depending on clock resolution.
func NewInvoiceID() string {
	return invoicePrefix + uuid.NewString()
}
