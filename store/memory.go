// Package store provides catalog and directory backends for the store
// management system.
package store

import (
	"context"
	"sort"
	"sync"

	"storefront/domain"
)

// MemoryStore is a mutex-guarded in-memory implementation of
// domain.Store. It owns all products and customers; every operation is
// a single critical section, so mutations are observable to any
// subsequent lookup.
type MemoryStore struct {
	mu        sync.RWMutex
	products  map[string]domain.Product
	customers map[string]domain.Customer
}

// NewMemoryStore constructs an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:  make(map[string]domain.Product),
		customers: make(map[string]domain.Customer),
	}
}

// compile-time assertion that MemoryStore implements domain.Store
var _ domain.Store = (*MemoryStore)(nil)

func (s *MemoryStore) Register(ctx context.Context, product domain.Product) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := domain.ValidateProduct(product); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; exists {
		return domain.NewDuplicateProductError(product.ID)
	}
	s.products[product.ID] = product
	return nil
}

func (s *MemoryStore) Restock(ctx context.Context, id string, amount int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.NewProductNotFoundError(id)
	}
	if err := p.Restock(amount); err != nil {
		return err
	}
	s.products[id] = p
	return nil
}

func (s *MemoryStore) RecordSale(ctx context.Context, id string, quantity int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.NewProductNotFoundError(id)
	}
	if err := p.RecordSale(quantity); err != nil {
		return err
	}
	s.products[id] = p
	return nil
}

func (s *MemoryStore) Lookup(ctx context.Context, id string) (domain.Product, error) {
	select {
	case <-ctx.Done():
		return domain.Product{}, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.NewProductNotFoundError(id)
	}
	return p, nil
}

func (s *MemoryStore) List(ctx context.Context, filter domain.ListFilter) ([]domain.Product, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
	}
	sortProducts(out, filter)
	return out, nil
}

// sortProducts orders the listing: by id ascending unless a sort field
// is requested. The id order is the catalog's documented iteration
// order and the tie-break for every other sort.
func sortProducts(out []domain.Product, filter domain.ListFilter) {
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	switch filter.SortBy {
	case "name":
		sort.SliceStable(out, func(i, j int) bool {
			if filter.Order == "desc" {
				return out[i].Name > out[j].Name
			}
			return out[i].Name < out[j].Name
		})
	case "price":
		sort.SliceStable(out, func(i, j int) bool {
			if filter.Order == "desc" {
				return out[i].BasePrice.GreaterThan(out[j].BasePrice)
			}
			return out[i].BasePrice.LessThan(out[j].BasePrice)
		})
	case "stock":
		sort.SliceStable(out, func(i, j int) bool {
			if filter.Order == "desc" {
				return out[i].CurrentStock > out[j].CurrentStock
			}
			return out[i].CurrentStock < out[j].CurrentStock
		})
	case "sales":
		sort.SliceStable(out, func(i, j int) bool {
			if filter.Order == "desc" {
				return out[i].SalesCount > out[j].SalesCount
			}
			return out[i].SalesCount < out[j].SalesCount
		})
	}
}

func (s *MemoryStore) FindOrCreate(ctx context.Context, name, contact string) (domain.Customer, error) {
	select {
	case <-ctx.Done():
		return domain.Customer{}, ctx.Err()
	default:
	}

	if contact == "" {
		return domain.Customer{}, domain.NewValidationError("contact", "cannot be empty", contact)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.customers[contact]; ok {
		return c, nil
	}
	c := domain.Customer{Name: name, Contact: contact}
	s.customers[contact] = c
	return c, nil
}

func (s *MemoryStore) GetByContact(ctx context.Context, contact string) (domain.Customer, error) {
	select {
	case <-ctx.Done():
		return domain.Customer{}, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[contact]
	if !ok {
		return domain.Customer{}, domain.NewCustomerNotFoundError(contact)
	}
	return c, nil
}

func (s *MemoryStore) AddPurchase(ctx context.Context, contact string, purchase domain.Purchase) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[contact]
	if !ok {
		return domain.NewCustomerNotFoundError(contact)
	}
	c.Purchases = append(c.Purchases, purchase)
	s.customers[contact] = c
	return nil
}

func (s *MemoryStore) History(ctx context.Context, contact string) ([]domain.Purchase, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[contact]
	if !ok {
		return nil, domain.NewCustomerNotFoundError(contact)
	}
	out := make([]domain.Purchase, len(c.Purchases))
	copy(out, c.Purchases)
	return out, nil
}
