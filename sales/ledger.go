// Package sales implements invoice construction, sale transaction
// processing and the sales report.
package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/domain"
	"storefront/util"
)

// vatMultiplier applies the flat 15% VAT to invoice subtotals.
var vatMultiplier = decimal.RequireFromString("1.15")

// Ledger constructs immutable purchase records. It never mutates
// catalog state; pricing is captured from the line items handed to it.
type Ledger struct {
	now   func() time.Time
	newID func() string
}

// NewLedger constructs a Ledger using the wall clock and random
// invoice identifiers.
func NewLedger() *Ledger {
	return &Ledger{
		now:   time.Now,
		newID: util.NewInvoiceID,
	}
}

// CreateInvoice builds the purchase record for the given validated line
// items: per-line totals, subtotal and the tax-inclusive total. Unit
// prices must already be captured in the items, so the invoice stays
// fixed even if product prices change later.
func (l *Ledger) CreateInvoice(customer domain.Customer, items []domain.LineItem) domain.Purchase {
	subtotal := decimal.Zero
	for i := range items {
		items[i].LineTotal = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		subtotal = subtotal.Add(items[i].LineTotal)
	}
	return domain.Purchase{
		InvoiceID:       l.newID(),
		Timestamp:       l.now(),
		CustomerName:    customer.Name,
		CustomerContact: customer.Contact,
		Items:           items,
		TotalWithTax:    subtotal.Mul(vatMultiplier),
	}
}
