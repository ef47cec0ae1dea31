// Package apperror holds the business errors returned by the services. Handlers
// classify them with errors.As / errors.Is; anything not defined here is treated
// as a server fault.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned by checkout when the customer has no cart or it holds no entries.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrForbidden is returned when the caller's role may not perform the operation.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports malformed input. No state was changed.
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

// Validation builds a ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an entity that does not exist or is not owned by the caller.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is a NotFoundError for the given entity.
// An empty entity matches any NotFoundError.
func IsNotFound(err error, entity string) bool {
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return false
	}
	return entity == "" || nf.Entity == entity
}

// InsufficientStockError is the authoritative stock failure raised by the
// product registry and by checkout.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)", name, e.Requested, e.Available)
}

// StockExceededError is the advisory cart-time variant. Available is the
// headroom the customer may still add.
type StockExceededError struct {
	ProductID string
	Requested int
	InCart    int
	Available int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("requested quantity %d for product %s exceeds stock: %d already in cart, %d more available",
		e.Requested, e.ProductID, e.InCart, e.Available)
}

// NoItemsForCompanyError means the cart holds nothing sold by the company being checked out.
type NoItemsForCompanyError struct {
	CompanyID string
}

func (e *NoItemsForCompanyError) Error() string {
	return fmt.Sprintf("cart has no products from company %s", e.CompanyID)
}

// InvalidTransitionError reports an order status change not allowed from the current status.
type InvalidTransitionError struct {
	OrderID string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s cannot move from %s to %s", e.OrderID, e.From, e.To)
}

// DuplicateRatingError means the product was already rated for that order.
type DuplicateRatingError struct {
	OrderID   string
	ProductID string
}

func (e *DuplicateRatingError) Error() string {
	return fmt.Sprintf("product %s was already rated for order %s", e.ProductID, e.OrderID)
}

// OrderNotDeliveredError means a rating was attempted before the order reached Delivered.
type OrderNotDeliveredError struct {
	OrderID string
	Status  string
}

func (e *OrderNotDeliveredError) Error() string {
	return fmt.Sprintf("order %s is %s; only delivered orders can be rated", e.OrderID, e.Status)
}
