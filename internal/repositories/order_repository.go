package repositories

import (
	"context"
	"time"

	"github.com/cardona-dev/bean-quick/internal/models"
)

// ProductUnits is the number of units of a product sold.
type ProductUnits struct {
	ProductID string
	Units     int64
}

// OrderRepository defines data access for orders and their line items.
type OrderRepository interface {
	// Create inserts the order together with its line items.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetForCustomer returns NotFoundError when the order is absent or owned by another customer.
	GetForCustomer(ctx context.Context, id, customerID string) (*models.Order, error)
	// GetForCompany returns NotFoundError when the order is absent or placed with another company.
	GetForCompany(ctx context.Context, id, companyID string) (*models.Order, error)
	// ListByCustomer returns newest first with line items and company.
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	// ListByCompany returns oldest first with line items and customer.
	ListByCompany(ctx context.Context, companyID string) ([]models.Order, error)
	// UpdateStatus moves the order from one status to another only if it is
	// still in from. It reports whether the row changed.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error)

	// ListByCompanySince returns orders in status (case-insensitive) created at or after since, without line items.
	ListByCompanySince(ctx context.Context, companyID string, status models.OrderStatus, since time.Time) ([]models.Order, error)
	// RecentByCompany returns the latest orders of any status with customer loaded.
	RecentByCompany(ctx context.Context, companyID string, limit int) ([]models.Order, error)
	// UnitsSoldByProduct sums line item quantities of the company's orders in status.
	UnitsSoldByProduct(ctx context.Context, companyID string, status models.OrderStatus) ([]ProductUnits, error)
}
