package repositories

import (
	"context"

	"github.com/cardona-dev/bean-quick/internal/models"
)

// ProductRepository defines data access for the product registry.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// GetForUpdate reads the product and locks its row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*models.Product, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes the catalog fields set by the company: name, description,
	// price and stock. Stock is written as given, so callers pass an explicit
	// value, never one read earlier.
	Update(ctx context.Context, product *models.Product) error
	// SetImagePath writes only the image path, leaving stock to AdjustStock.
	SetImagePath(ctx context.Context, id, path string) error
	Delete(ctx context.Context, id string) error

	GetStock(ctx context.Context, id string) (int, error)
	// AdjustStock adds delta to the stock in a single conditional statement and
	// returns the resulting stock. It fails with InsufficientStockError, leaving
	// stock untouched, when the result would be negative.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}
