package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is keyed by contact; the name is fixed at creation. The
// purchase history is append-only and kept in insertion order, which is
// chronological order under the single-actor execution model.
type Customer struct {
	Name      string     `json:"name"`
	Contact   string     `json:"contact"`
	Purchases []Purchase `json:"purchases,omitempty"`
}

// LineItem is one line of an invoice. UnitPrice is the product's base
// price captured at invoice time, so later price changes never alter an
// existing purchase.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Purchase is the immutable invoice record of one completed sale. Line
// items and the tax-inclusive total never change after construction.
type Purchase struct {
	InvoiceID       string          `json:"invoice_id"`
	Timestamp       time.Time       `json:"timestamp"`
	CustomerName    string          `json:"customer_name"`
	CustomerContact string          `json:"customer_contact"`
	Items           []LineItem      `json:"items"`
	TotalWithTax    decimal.Decimal `json:"total_with_tax"`
}

// Directory owns all customers, keyed by contact. FindOrCreate never
// renames an existing record; AddPurchase appends to the history.
type Directory interface {
	FindOrCreate(ctx context.Context, name, contact string) (Customer, error)
	GetByContact(ctx context.Context, contact string) (Customer, error)
	AddPurchase(ctx context.Context, contact string, purchase Purchase) error
	History(ctx context.Context, contact string) ([]Purchase, error)
}

// Store bundles the two ownership boundaries a backend provides.
type Store interface {
	Catalog
	Directory
}
