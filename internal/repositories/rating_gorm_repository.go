package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMRatingRepository is a GORM implementation of RatingRepository.
type GORMRatingRepository struct {
	db *gorm.DB
}

// NewGORMRatingRepository creates a new instance of GORMRatingRepository.
func NewGORMRatingRepository(db *gorm.DB) *GORMRatingRepository {
	return &GORMRatingRepository{db: db}
}

func (r *GORMRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Customer", "Product").Create(rating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &apperror.DuplicateRatingError{OrderID: rating.OrderID, ProductID: rating.ProductID}
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

func (r *GORMRatingRepository) ExistsForOrderProduct(ctx context.Context, orderID, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check rating: %w", err)
	}
	return count > 0, nil
}

func (r *GORMRatingRepository) GetByID(ctx context.Context, id string) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).First(&rating, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("rating", id)
		}
		return nil, fmt.Errorf("failed to get rating %s: %w", id, err)
	}
	return &rating, nil
}

func (r *GORMRatingRepository) Update(ctx context.Context, rating *models.Rating) error {
	res := r.db.WithContext(ctx).Model(rating).Select("stars", "comment").Updates(rating)
	if res.Error != nil {
		return fmt.Errorf("failed to update rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("rating", rating.ID)
	}
	return nil
}

func (r *GORMRatingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Rating{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("rating", id)
	}
	return nil
}

func (r *GORMRatingRepository) ListByProduct(ctx context.Context, productID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Preload("Customer", selectPublicUser).
		Where("product_id = ?", productID).
		Order("created_at DESC, id").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings of product %s: %w", productID, err)
	}
	return ratings, nil
}

func (r *GORMRatingRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Preload("Product", withDeletedProducts).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings of customer %s: %w", customerID, err)
	}
	return ratings, nil
}

func (r *GORMRatingRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Preload("Customer", selectPublicUser).
		Preload("Product", withDeletedProducts).
		Where("product_id IN (?)", r.companyProductIDs(companyID)).
		Order("created_at DESC, id").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings of company %s: %w", companyID, err)
	}
	return ratings, nil
}

func (r *GORMRatingRepository) StatsByCompany(ctx context.Context, companyID string) (RatingStats, error) {
	var row struct {
		Total   int64
		Average *float64
	}
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("COUNT(*) AS total, AVG(stars) AS average").
		Where("product_id IN (?)", r.companyProductIDs(companyID)).
		Scan(&row).Error
	if err != nil {
		return RatingStats{}, fmt.Errorf("failed to compute rating stats of company %s: %w", companyID, err)
	}
	stats := RatingStats{Count: row.Total}
	if row.Average != nil {
		stats.Average = *row.Average
	}
	return stats, nil
}

// companyProductIDs is a subquery over every product of the company, removed ones included.
func (r *GORMRatingRepository) companyProductIDs(companyID string) *gorm.DB {
	return r.db.Unscoped().Model(&models.Product{}).Select("id").Where("company_id = ?", companyID)
}

func withDeletedProducts(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

var _ RatingRepository = (*GORMRatingRepository)(nil)
