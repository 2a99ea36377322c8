package sales

import (
	"context"
	"fmt"
	"sort"

	"storefront/domain"
)

// LineStatus reports what happened to a single cart line.
type LineStatus string

const (
	LineFulfilled                LineStatus = "fulfilled"
	LineSkippedNotFound          LineStatus = "skipped_not_found"
	LineSkippedInsufficientStock LineStatus = "skipped_insufficient_stock"
)

// LineOutcome is the per-line result of a sale attempt. Skipped lines
// are dropped from the transaction without failing it; the outcome list
// is how a caller tells a partial sale from a no-op.
type LineOutcome struct {
	ProductID string     `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Status    LineStatus `json:"status"`
}

// Processor orchestrates a sale: it validates cart lines against the
// catalog, applies stock mutations, and appends the resulting invoice
// to the customer's history.
type Processor struct {
	catalog   domain.Catalog
	directory domain.Directory
	ledger    *Ledger
}

// NewProcessor constructs a Processor over the given boundaries.
func NewProcessor(catalog domain.Catalog, directory domain.Directory, ledger *Ledger) *Processor {
	return &Processor{
		catalog:   catalog,
		directory: directory,
		ledger:    ledger,
	}
}

// ProcessSale runs one sale for the customer with the given contact.
// Cart lines whose product is missing or whose quantity exceeds current
// stock are excluded without error; quantities are assumed positive.
// If no line survives, nothing is mutated and no invoice is produced
// (purchase is nil). Otherwise every surviving line is applied and
// exactly one invoice is appended to the customer's history.
//
// Lines are processed in ascending product-id order so outcomes and
// mutations are deterministic for a given cart.
func (pr *Processor) ProcessSale(ctx context.Context, contact string, cart map[string]int) (*domain.Purchase, []LineOutcome, error) {
	customer, err := pr.directory.GetByContact(ctx, contact)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var items []domain.LineItem
	outcomes := make([]LineOutcome, 0, len(cart))
	for _, id := range ids {
		qty := cart[id]
		p, err := pr.catalog.Lookup(ctx, id)
		if err != nil {
			if domain.IsProductNotFoundError(err) {
				outcomes = append(outcomes, LineOutcome{ProductID: id, Quantity: qty, Status: LineSkippedNotFound})
				continue
			}
			return nil, nil, err
		}
		if qty > p.CurrentStock {
			outcomes = append(outcomes, LineOutcome{ProductID: id, Quantity: qty, Status: LineSkippedInsufficientStock})
			continue
		}
		items = append(items, domain.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.BasePrice,
			Quantity:    qty,
		})
		outcomes = append(outcomes, LineOutcome{ProductID: id, Quantity: qty, Status: LineFulfilled})
	}

	if len(items) == 0 {
		return nil, outcomes, nil
	}

	invoice := pr.ledger.CreateInvoice(customer, items)
	for _, item := range items {
		// Pre-filtered above; a failure here means the catalog changed
		// underneath us and the single-actor model was violated.
		if err := pr.catalog.RecordSale(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, outcomes, fmt.Errorf("record sale for %s: %w", item.ProductID, err)
		}
	}
	if err := pr.directory.AddPurchase(ctx, contact, invoice); err != nil {
		return nil, outcomes, err
	}
	return &invoice, outcomes, nil
}
