package repositories

import (
	"context"

	"github.com/cardona-dev/bean-quick/internal/models"
)

// RatingStats summarizes the ratings of a company's products.
type RatingStats struct {
	Count   int64
	Average float64
}

// RatingRepository defines data access for ratings.
type RatingRepository interface {
	// Create fails with DuplicateRatingError when (order, product) is already rated.
	Create(ctx context.Context, rating *models.Rating) error
	ExistsForOrderProduct(ctx context.Context, orderID, productID string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Rating, error)
	// Update writes stars and comment.
	Update(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, id string) error

	ListByProduct(ctx context.Context, productID string) ([]models.Rating, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Rating, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.Rating, error)
	StatsByCompany(ctx context.Context, companyID string) (RatingStats, error)
}
