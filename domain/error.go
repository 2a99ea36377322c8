// Package domain defines error types for the store management system.
package domain

import (
	"errors"
	"fmt"
)

// ValidationError is returned for invalid construction or restock
// parameters. It never leaves state mutated.
type ValidationError struct {
	Field  string
	Reason string
	Value  interface{}
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field=%s, reason=%s, value=%v", e.Field, e.Reason, e.Value)
}

// Is allows proper error type checking with errors.Is()
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// InsufficientStockError is returned by the unconditional sale-recording
// path when the requested quantity exceeds current stock. The sale
// processor pre-filters cart lines, so reaching it through a sale is an
// internal invariant violation rather than a user error.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

// Error implements the error interface for InsufficientStockError
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: id=%s, requested=%d, available=%d", e.ProductID, e.Requested, e.Available)
}

// Is allows proper error type checking with errors.Is()
func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// ProductNotFoundError is returned when a product with the given ID is not found
type ProductNotFoundError struct {
	ProductID string
}

// Error implements the error interface for ProductNotFoundError
func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: id=%s", e.ProductID)
}

// Is allows proper error type checking with errors.Is()
func (e *ProductNotFoundError) Is(target error) bool {
	_, ok := target.(*ProductNotFoundError)
	return ok
}

// CustomerNotFoundError is returned when no customer exists for a contact
type CustomerNotFoundError struct {
	Contact string
}

// Error implements the error interface for CustomerNotFoundError
func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer not found: contact=%s", e.Contact)
}

// Is allows proper error type checking with errors.Is()
func (e *CustomerNotFoundError) Is(target error) bool {
	_, ok := target.(*CustomerNotFoundError)
	return ok
}

// DuplicateProductError is returned when registering a product with an existing ID
type DuplicateProductError struct {
	ProductID string
}

// Error implements the error interface for DuplicateProductError
func (e *DuplicateProductError) Error() string {
	return fmt.Sprintf("duplicate product: id=%s already exists", e.ProductID)
}

// Is allows proper error type checking with errors.Is()
func (e *DuplicateProductError) Is(target error) bool {
	_, ok := target.(*DuplicateProductError)
	return ok
}

// Helper functions for creating errors with context

// NewValidationError creates a new ValidationError
func NewValidationError(field, reason string, value interface{}) error {
	return &ValidationError{
		Field:  field,
		Reason: reason,
		Value:  value,
	}
}

// NewInsufficientStockError creates a new InsufficientStockError
func NewInsufficientStockError(productID string, requested, available int) error {
	return &InsufficientStockError{
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

// NewProductNotFoundError creates a new ProductNotFoundError
func NewProductNotFoundError(productID string) error {
	return &ProductNotFoundError{ProductID: productID}
}

// NewCustomerNotFoundError creates a new CustomerNotFoundError
func NewCustomerNotFoundError(contact string) error {
	return &CustomerNotFoundError{Contact: contact}
}

// NewDuplicateProductError creates a new DuplicateProductError
func NewDuplicateProductError(productID string) error {
	return &DuplicateProductError{ProductID: productID}
}

// Type assertion helpers for use with errors.As()

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInsufficientStockError checks if an error is an InsufficientStockError
func IsInsufficientStockError(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

// IsProductNotFoundError checks if an error is a ProductNotFoundError
func IsProductNotFoundError(err error) bool {
	var pnf *ProductNotFoundError
	return errors.As(err, &pnf)
}

// IsCustomerNotFoundError checks if an error is a CustomerNotFoundError
func IsCustomerNotFoundError(err error) bool {
	var cnf *CustomerNotFoundError
	return errors.As(err, &cnf)
}

// IsDuplicateProductError checks if an error is a DuplicateProductError
func IsDuplicateProductError(err error) bool {
	var dpe *DuplicateProductError
	return errors.As(err, &dpe)
}
