package sales

import (
	"context"
	"sort"

	"storefront/domain"
)

// Report is a read-only query surface over the catalog.
type Report struct {
	catalog domain.Catalog
}

// NewReport constructs a Report over the given catalog.
func NewReport(catalog domain.Catalog) *Report {
	return &Report{catalog: catalog}
}

// TopSellers returns the n products with the highest SalesCount in
// descending order. Ties keep the catalog's listing order, which is
// product id ascending.
func (r *Report) TopSellers(ctx context.Context, n int) ([]domain.Product, error) {
	out, err := r.catalog.List(ctx, domain.ListFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SalesCount > out[j].SalesCount
	})
	if n < 0 {
		n = 0
	}
	if n < len(out) {
		out = out[:n]
	}
	return out, nil
}
