package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrProductNotFound    = errors.New("product not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryExists     = errors.New("category already exists")
	ErrProductInUse       = errors.New("product is referenced by existing orders")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// ValidationError reports malformed input detected before any storage access
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StockError is a recoverable checkout failure for one requested line.
// Err is ErrInsufficientStock or ErrProductNotFound.
type StockError struct {
	Line        int
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
	Err         error
}

func (e *StockError) Error() string {
	if errors.Is(e.Err, ErrProductNotFound) {
		return fmt.Sprintf("Product not found: %s", e.ProductID)
	}
	return fmt.Sprintf("Insufficient stock for product: %s", e.ProductName)
}

func (e *StockError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps an unexpected storage failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
