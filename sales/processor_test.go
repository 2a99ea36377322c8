package sales

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/domain"
	"storefront/store"
)

func newTestProcessor(t *testing.T) (*Processor, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	ctx := context.Background()

	products := []domain.Product{
		{ID: "A", Name: "Widget", Category: domain.CategoryElectronics, BasePrice: decimal.RequireFromString("10"), TotalAvailable: 100, CurrentStock: 50},
		{ID: "B", Name: "Gadget", Category: domain.CategoryClothing, BasePrice: decimal.RequireFromString("5"), TotalAvailable: 100, CurrentStock: 50},
	}
	for _, p := range products {
		if err := s.Register(ctx, p); err != nil {
			t.Fatalf("setup register failed: %v", err)
		}
	}
	if _, err := s.FindOrCreate(ctx, "Alice", "a@x.com"); err != nil {
		t.Fatalf("setup customer failed: %v", err)
	}
	return NewProcessor(s, s, fixedLedger()), s
}

func TestProcessSale_FullCart(t *testing.T) {
	pr, s := newTestProcessor(t)
	ctx := context.Background()

	purchase, outcomes, err := pr.ProcessSale(ctx, "a@x.com", map[string]int{"A": 2, "B": 1})
	if err != nil {
		t.Fatalf("process sale failed: %v", err)
	}
	if purchase == nil {
		t.Fatal("expected an invoice")
	}
	if !purchase.TotalWithTax.Equal(decimal.RequireFromString("28.75")) {
		t.Fatalf("expected total 28.75, got %s", purchase.TotalWithTax)
	}
	if len(purchase.Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(purchase.Items))
	}
	for _, o := range outcomes {
		if o.Status != LineFulfilled {
			t.Fatalf("expected fulfilled outcome, got %+v", o)
		}
	}

	a, _ := s.Lookup(ctx, "A")
	b, _ := s.Lookup(ctx, "B")
	if a.CurrentStock != 48 || a.SalesCount != 2 {
		t.Fatalf("product A not applied: stock=%d sales=%d", a.CurrentStock, a.SalesCount)
	}
	if b.CurrentStock != 49 || b.SalesCount != 1 {
		t.Fatalf("product B not applied: stock=%d sales=%d", b.CurrentStock, b.SalesCount)
	}

	hist, err := s.History(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(hist) != 1 || hist[0].InvoiceID != purchase.InvoiceID {
		t.Fatalf("invoice not appended to history: %+v", hist)
	}
}

func TestProcessSale_PartialCart(t *testing.T) {
	pr, s := newTestProcessor(t)
	ctx := context.Background()

	purchase, outcomes, err := pr.ProcessSale(ctx, "a@x.com", map[string]int{
		"A":       2,
		"no-such": 1,
	})
	if err != nil {
		t.Fatalf("process sale failed: %v", err)
	}
	if purchase == nil {
		t.Fatal("expected an invoice for the valid line")
	}
	if len(purchase.Items) != 1 || purchase.Items[0].ProductID != "A" {
		t.Fatalf("expected only the valid line on the invoice: %+v", purchase.Items)
	}
	if !purchase.TotalWithTax.Equal(decimal.RequireFromString("23")) { // 20 * 1.15
		t.Fatalf("expected total 23, got %s", purchase.TotalWithTax)
	}

	byID := map[string]LineOutcome{}
	for _, o := range outcomes {
		byID[o.ProductID] = o
	}
	if byID["A"].Status != LineFulfilled {
		t.Fatalf("expected A fulfilled, got %+v", byID["A"])
	}
	if byID["no-such"].Status != LineSkippedNotFound {
		t.Fatalf("expected no-such skipped, got %+v", byID["no-such"])
	}

	a, _ := s.Lookup(ctx, "A")
	b, _ := s.Lookup(ctx, "B")
	if a.CurrentStock != 48 {
		t.Fatalf("valid line not applied: stock=%d", a.CurrentStock)
	}
	if b.CurrentStock != 50 || b.SalesCount != 0 {
		t.Fatalf("untouched product mutated: stock=%d sales=%d", b.CurrentStock, b.SalesCount)
	}
}

func TestProcessSale_OverQuantityLineSkipped(t *testing.T) {
	pr, s := newTestProcessor(t)
	ctx := context.Background()

	purchase, outcomes, err := pr.ProcessSale(ctx, "a@x.com", map[string]int{
		"A": 51, // above current stock of 50
		"B": 1,
	})
	if err != nil {
		t.Fatalf("process sale failed: %v", err)
	}
	if purchase == nil || len(purchase.Items) != 1 || purchase.Items[0].ProductID != "B" {
		t.Fatalf("expected invoice with only B: %+v", purchase)
	}

	byID := map[string]LineOutcome{}
	for _, o := range outcomes {
		byID[o.ProductID] = o
	}
	if byID["A"].Status != LineSkippedInsufficientStock {
		t.Fatalf("expected A skipped for stock, got %+v", byID["A"])
	}

	a, _ := s.Lookup(ctx, "A")
	if a.CurrentStock != 50 || a.SalesCount != 0 {
		t.Fatalf("skipped line mutated stock: %+v", a)
	}
}

func TestProcessSale_AllInvalidIsNoOp(t *testing.T) {
	pr, s := newTestProcessor(t)
	ctx := context.Background()

	purchase, outcomes, err := pr.ProcessSale(ctx, "a@x.com", map[string]int{
		"no-such": 1,
		"A":       999,
	})
	if err != nil {
		t.Fatalf("no-op sale should not error: %v", err)
	}
	if purchase != nil {
		t.Fatalf("expected no invoice, got %+v", purchase)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Status == LineFulfilled {
			t.Fatalf("no line should be fulfilled: %+v", o)
		}
	}

	a, _ := s.Lookup(ctx, "A")
	if a.CurrentStock != 50 || a.SalesCount != 0 {
		t.Fatalf("no-op sale mutated stock: %+v", a)
	}
	hist, _ := s.History(ctx, "a@x.com")
	if len(hist) != 0 {
		t.Fatalf("no-op sale produced history: %+v", hist)
	}
}

func TestProcessSale_UnknownCustomer(t *testing.T) {
	pr, _ := newTestProcessor(t)
	_, _, err := pr.ProcessSale(context.Background(), "nobody@x.com", map[string]int{"A": 1})
	if !domain.IsCustomerNotFoundError(err) {
		t.Fatalf("expected CustomerNotFoundError, got %v", err)
	}
}

func TestProcessSale_HistoryAccumulatesInOrder(t *testing.T) {
	pr, s := newTestProcessor(t)
	ctx := context.Background()

	first, _, err := pr.ProcessSale(ctx, "a@x.com", map[string]int{"A": 1})
	if err != nil {
		t.Fatalf("first sale failed: %v", err)
	}
	second, _, err := pr.ProcessSale(ctx, "a@x.com", map[string]int{"B": 2})
	if err != nil {
		t.Fatalf("second sale failed: %v", err)
	}

	hist, err := s.History(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(hist))
	}
	if hist[0].InvoiceID != first.InvoiceID || hist[1].InvoiceID != second.InvoiceID {
		t.Fatalf("history not in call order: %+v", hist)
	}
}

func TestProcessSale_InvoicePriceFixedAtSaleTime(t *testing.T) {
	pr, s := newTestProcessor(t)
	ctx := context.Background()

	purchase, _, err := pr.ProcessSale(ctx, "a@x.com", map[string]int{"A": 1})
	if err != nil || purchase == nil {
		t.Fatalf("sale failed: %v", err)
	}

	// drain and auto-restock A a few times; the stored invoice must not move
	for i := 0; i < 3; i++ {
		_ = s.RecordSale(ctx, "A", 10)
	}
	hist, _ := s.History(ctx, "a@x.com")
	if !hist[0].TotalWithTax.Equal(decimal.RequireFromString("11.5")) {
		t.Fatalf("stored invoice changed: %s", hist[0].TotalWithTax)
	}
	if !hist[0].Items[0].UnitPrice.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("captured unit price changed: %s", hist[0].Items[0].UnitPrice)
	}
}
