// Package domain defines core business types and interfaces.
package domain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Category is a closed set of product categories. Each variant carries
// its own discount rate and detail formatting via the capability table
// below; adding a category means adding a constant and a table entry.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
)

// categorySpec is the per-variant capability table entry.
type categorySpec struct {
	discountRate decimal.Decimal
	details      func(p Product) string
}

var categorySpecs = map[Category]categorySpec{
	CategoryElectronics: {
		discountRate: decimal.RequireFromString("0.15"),
		details: func(p Product) string {
			return fmt.Sprintf("[Electronics] %s | Warranty: %s | Stock: %d/%d",
				p.Name, p.Attrs["warranty"], p.CurrentStock, p.TotalAvailable)
		},
	},
	CategoryClothing: {
		discountRate: decimal.RequireFromString("0.10"),
		details: func(p Product) string {
			return fmt.Sprintf("[Clothing] %s | Size: %s | Stock: %d/%d",
				p.Name, p.Attrs["size"], p.CurrentStock, p.TotalAvailable)
		},
	},
}

// Valid reports whether c is a known category variant.
func (c Category) Valid() bool {
	_, ok := categorySpecs[c]
	return ok
}

// Product represents a catalog product with stock counters and pricing.
// TotalAvailable is the capacity and is fixed at registration;
// CurrentStock moves between 0 and TotalAvailable only.
type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Category       Category          `json:"category"`
	BasePrice      decimal.Decimal   `json:"base_price"`
	TotalAvailable int               `json:"total_available"`
	CurrentStock   int               `json:"current_stock"`
	SalesCount     int               `json:"sales_count"`
	Attrs          map[string]string `json:"attrs,omitempty"`
}

// Restock adds amount units of stock. The amount must be positive and
// must not push CurrentStock past TotalAvailable.
func (p *Product) Restock(amount int) error {
	if amount <= 0 {
		return NewValidationError("amount", "must be positive", amount)
	}
	if p.CurrentStock+amount > p.TotalAvailable {
		return NewValidationError("amount", "exceeds total available", amount)
	}
	p.CurrentStock += amount
	return nil
}

// RecordSale removes quantity units of stock and bumps SalesCount.
// If stock is exhausted afterwards, the auto-restock policy adds 20% of
// TotalAvailable (floored; 0 units for small capacities is a valid
// no-op). The policy restock is trusted and skips Restock validation.
func (p *Product) RecordSale(quantity int) error {
	if quantity > p.CurrentStock {
		return NewInsufficientStockError(p.ID, quantity, p.CurrentStock)
	}
	p.CurrentStock -= quantity
	p.SalesCount += quantity
	if p.CurrentStock <= 0 {
		p.CurrentStock += p.TotalAvailable / 5
	}
	return nil
}

// Discount returns the discount amount for the product's category, a
// fixed percentage of BasePrice. It is informational: reported next to
// the product, never subtracted from invoice totals.
func (p Product) Discount() decimal.Decimal {
	spec, ok := categorySpecs[p.Category]
	if !ok {
		return decimal.Zero
	}
	return p.BasePrice.Mul(spec.discountRate)
}

// Details renders the category-specific product summary line.
func (p Product) Details() string {
	spec, ok := categorySpecs[p.Category]
	if !ok {
		return fmt.Sprintf("[%s] %s | Stock: %d/%d", p.Category, p.Name, p.CurrentStock, p.TotalAvailable)
	}
	return spec.details(p)
}

// ValidateProduct checks a product at registration time.
func ValidateProduct(p Product) error {
	if p.ID == "" {
		return NewValidationError("id", "cannot be empty", p.ID)
	}
	if p.Name == "" {
		return NewValidationError("name", "cannot be empty", p.Name)
	}
	if !p.Category.Valid() {
		return NewValidationError("category", "unknown category", string(p.Category))
	}
	if !p.BasePrice.IsPositive() {
		return NewValidationError("base_price", "must be positive", p.BasePrice.String())
	}
	if p.TotalAvailable < 0 {
		return NewValidationError("total_available", "must be non-negative", p.TotalAvailable)
	}
	if p.CurrentStock < 0 {
		return NewValidationError("current_stock", "must be non-negative", p.CurrentStock)
	}
	if p.CurrentStock > p.TotalAvailable {
		return NewValidationError("current_stock", "exceeds total available", p.CurrentStock)
	}
	return nil
}

// ListFilter allows filtering and sorting results from List
type ListFilter struct {
	Category Category
	SortBy   string // "name", "price", "stock", "sales"
	Order    string // "asc" or "desc"
}

// Catalog is the only component permitted to mutate product stock.
// Lookup signals a missing id with ProductNotFoundError; callers treat
// absence as "not purchasable". List with a zero filter returns all
// products ordered by id.
type Catalog interface {
	Register(ctx context.Context, product Product) error
	Restock(ctx context.Context, id string, amount int) error
	RecordSale(ctx context.Context, id string, quantity int) error
	Lookup(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)
}
