package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single live product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetForUpdate retrieves a product holding a row lock. SQLite ignores the
// locking clause; its single writer already serializes transactions.
func (r *GORMProductRepository) GetForUpdate(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product", id)
		}
		return nil, fmt.Errorf("failed to lock product %s: %w", id, err)
	}
	return &product, nil
}

// ListByCompany retrieves the live catalog of a company ordered by name.
func (r *GORMProductRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products of company %s: %w", companyID, err)
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the catalog fields of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).
		Select("name", "description", "price", "stock").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("product", product.ID)
	}
	return nil
}

func (r *GORMProductRepository) SetImagePath(ctx context.Context, id, path string) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("image_path", path)
	if res.Error != nil {
		return fmt.Errorf("failed to set image of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}

// Delete soft-deletes a product. Order line items keep referencing the row.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}

// GetStock returns the current stock of a live product.
func (r *GORMProductRepository) GetStock(ctx context.Context, id string) (int, error) {
	product, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// AdjustStock applies delta with a compare-in-place UPDATE, so concurrent
// adjustments of the same product never lose an update. Soft-deleted rows are
// still adjustable: cancelling an order restores stock of products removed
// from the catalog afterwards.
func (r *GORMProductRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	db := r.db.WithContext(ctx).Unscoped()

	res := db.Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to adjust stock of product %s: %w", id, res.Error)
	}

	var product models.Product
	if err := db.Select("id", "name", "stock").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.NotFound("product", id)
		}
		return 0, fmt.Errorf("failed to read stock of product %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return product.Stock, &apperror.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   -delta,
			Available:   product.Stock,
		}
	}
	return product.Stock, nil
}

var _ ProductRepository = (*GORMProductRepository)(nil)
