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

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) GetByCustomer(ctx context.Context, customerID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "customer_id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("cart", customerID)
		}
		return nil, fmt.Errorf("failed to get cart of customer %s: %w", customerID, err)
	}
	return &cart, nil
}

// GetOrCreate inserts the cart unless one exists, then reads it back. Two
// concurrent first requests both end up with the same row.
func (r *GORMCartRepository) GetOrCreate(ctx context.Context, customerID string) (*models.Cart, error) {
	return r.getOrCreate(ctx, customerID, false)
}

func (r *GORMCartRepository) GetOrCreateLocked(ctx context.Context, customerID string) (*models.Cart, error) {
	return r.getOrCreate(ctx, customerID, true)
}

func (r *GORMCartRepository) getOrCreate(ctx context.Context, customerID string, lock bool) (*models.Cart, error) {
	db := r.db.WithContext(ctx)

	cart := models.Cart{ID: uuid.New().String(), CustomerID: customerID}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}},
		DoNothing: true,
	}).Create(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create cart for customer %s: %w", customerID, err)
	}

	q := db
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var stored models.Cart
	if err := q.First(&stored, "customer_id = ?", customerID).Error; err != nil {
		return nil, fmt.Errorf("failed to read cart of customer %s: %w", customerID, err)
	}
	return &stored, nil
}

func (r *GORMCartRepository) GetEntry(ctx context.Context, cartID, productID string) (*models.CartEntry, error) {
	var entry models.CartEntry
	err := r.db.WithContext(ctx).First(&entry, "cart_id = ? AND product_id = ?", cartID, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("cart entry", productID)
		}
		return nil, fmt.Errorf("failed to get cart entry: %w", err)
	}
	return &entry, nil
}

func (r *GORMCartRepository) ListEntries(ctx context.Context, cartID string) ([]models.CartEntry, error) {
	var entries []models.CartEntry
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Company").
		Where("cart_id = ?", cartID).
		Order("created_at, id").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entries of cart %s: %w", cartID, err)
	}

	// Preload skips soft-deleted products; their entries are invisible.
	live := entries[:0]
	for _, e := range entries {
		if e.Product != nil {
			live = append(live, e)
		}
	}
	return live, nil
}

func (r *GORMCartRepository) SetEntry(ctx context.Context, cartID, productID string, quantity int) error {
	entry := models.CartEntry{
		ID:        uuid.New().String(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set cart entry: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) DeleteEntry(ctx context.Context, cartID, productID string) error {
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete cart entry: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) DeleteEntries(ctx context.Context, cartID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id IN ?", cartID, productIDs).
		Delete(&models.CartEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete cart entries: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) Clear(ctx context.Context, cartID string) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartEntry{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
	}
	return nil
}

func (r *GORMCartRepository) DeleteEntriesForProduct(ctx context.Context, productID string) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.CartEntry{}).Error; err != nil {
		return fmt.Errorf("failed to remove product %s from carts: %w", productID, err)
	}
	return nil
}

var _ CartRepository = (*GORMCartRepository)(nil)
