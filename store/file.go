package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"storefront/domain"
)

// FileStore is a JSON file-backed implementation of domain.Store. The
// whole document is loaded at construction and rewritten after every
// mutation, so the file always holds a consistent snapshot.
type FileStore struct {
	mu        sync.RWMutex
	products  map[string]domain.Product
	customers map[string]domain.Customer
	path      string
}

// snapshot is the persisted document layout. Entities are plain data;
// nothing in the core depends on this format.
type snapshot struct {
	Products  []domain.Product  `json:"products"`
	Customers []domain.Customer `json:"customers"`
}

// compile-time assertion
var _ domain.Store = (*FileStore)(nil)

// NewFileStore constructs a FileStore at the given path. If the file exists it will be loaded.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		products:  make(map[string]domain.Product),
		customers: make(map[string]domain.Customer),
		path:      path,
	}
	if err := s.loadFromFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) loadFromFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// no file yet; that's fine
			return nil
		}
		return err
	}
	if len(b) == 0 {
		return nil
	}
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return err
	}
	for _, p := range snap.Products {
		s.products[p.ID] = p
	}
	for _, c := range snap.Customers {
		s.customers[c.Contact] = c
	}
	return nil
}

func (s *FileStore) saveToFile() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	snap := snapshot{
		Products:  make([]domain.Product, 0, len(s.products)),
		Customers: make([]domain.Customer, 0, len(s.customers)),
	}
	for _, p := range s.products {
		snap.Products = append(snap.Products, p)
	}
	for _, c := range s.customers {
		snap.Customers = append(snap.Customers, c)
	}
	// stable order for deterministic files
	sort.Slice(snap.Products, func(i, j int) bool { return snap.Products[i].ID < snap.Products[j].ID })
	sort.Slice(snap.Customers, func(i, j int) bool { return snap.Customers[i].Contact < snap.Customers[j].Contact })
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Register(ctx context.Context, product domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := domain.ValidateProduct(product); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; ok {
		return domain.NewDuplicateProductError(product.ID)
	}
	s.products[product.ID] = product
	return s.saveToFile()
}

func (s *FileStore) Restock(ctx context.Context, id string, amount int) error {
	if err := ctx.Err(); err != nil {
		return err
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
	return s.saveToFile()
}

func (s *FileStore) RecordSale(ctx context.Context, id string, quantity int) error {
	if err := ctx.Err(); err != nil {
		return err
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
	return s.saveToFile()
}

func (s *FileStore) Lookup(ctx context.Context, id string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.NewProductNotFoundError(id)
	}
	return p, nil
}

func (s *FileStore) List(ctx context.Context, filter domain.ListFilter) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
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

func (s *FileStore) FindOrCreate(ctx context.Context, name, contact string) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
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
	if err := s.saveToFile(); err != nil {
		delete(s.customers, contact)
		return domain.Customer{}, err
	}
	return c, nil
}

func (s *FileStore) GetByContact(ctx context.Context, contact string) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[contact]
	if !ok {
		return domain.Customer{}, domain.NewCustomerNotFoundError(contact)
	}
	return c, nil
}

func (s *FileStore) AddPurchase(ctx context.Context, contact string, purchase domain.Purchase) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[contact]
	if !ok {
		return domain.NewCustomerNotFoundError(contact)
	}
	c.Purchases = append(c.Purchases, purchase)
	s.customers[contact] = c
	return s.saveToFile()
}

func (s *FileStore) History(ctx context.Context, contact string) ([]domain.Purchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
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
