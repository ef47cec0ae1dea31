package services

import (
	"context"
	"unicode/utf8"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/cache"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/repositories"

	"github.com/rs/zerolog/log"
)

const maxCommentLength = 255

// RateInput identifies the purchased product being reviewed.
type RateInput struct {
	OrderID   string
	ProductID string
	Stars     int
	Comment   string
}

// RatingService lets customers review what they actually received.
type RatingService struct {
	store repositories.Store
	cache cache.DashboardCache
}

func NewRatingService(store repositories.Store, dashboards cache.DashboardCache) *RatingService {
	if dashboards == nil {
		dashboards = cache.Noop{}
	}
	return &RatingService{store: store, cache: dashboards}
}

func validateReview(stars int, comment string) error {
	if stars < 1 || stars > 5 {
		return apperror.Validation("stars", "must be between %d and %d", 1, 5)
	}
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return apperror.Validation("comment", "must be at most %d characters", maxCommentLength)
	}
	return nil
}

// Rate records one review per product of a delivered order.
func (s *RatingService) Rate(ctx context.Context, customerID string, in RateInput) (*models.Rating, error) {
	order, err := s.store.Orders().GetForCustomer(ctx, in.OrderID, customerID)
	if err != nil {
		return nil, err
	}
	if order.Status.Canonical() != models.StatusDelivered {
		return nil, &apperror.OrderNotDeliveredError{OrderID: order.ID, Status: string(order.Status.Canonical())}
	}

	purchased := false
	for _, item := range order.Items {
		if item.ProductID == in.ProductID {
			purchased = true
			break
		}
	}
	if !purchased {
		return nil, apperror.NotFound("product", in.ProductID)
	}

	exists, err := s.store.Ratings().ExistsForOrderProduct(ctx, order.ID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &apperror.DuplicateRatingError{OrderID: order.ID, ProductID: in.ProductID}
	}
	if err := validateReview(in.Stars, in.Comment); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		CustomerID: customerID,
		OrderID:    order.ID,
		ProductID:  in.ProductID,
		Stars:      in.Stars,
		Comment:    in.Comment,
	}
	// A concurrent duplicate is caught by the unique index.
	if err := s.store.Ratings().Create(ctx, rating); err != nil {
		return nil, err
	}
	s.invalidate(ctx, order.CompanyID)
	return rating, nil
}

// Update changes stars and comment of the customer's own rating.
func (s *RatingService) Update(ctx context.Context, customerID, ratingID string, stars int, comment string) (*models.Rating, error) {
	rating, err := s.ownRating(ctx, customerID, ratingID)
	if err != nil {
		return nil, err
	}
	if err := validateReview(stars, comment); err != nil {
		return nil, err
	}
	rating.Stars = stars
	rating.Comment = comment
	if err := s.store.Ratings().Update(ctx, rating); err != nil {
		return nil, err
	}
	s.invalidateFor(ctx, rating)
	return rating, nil
}

// Delete removes the customer's own rating.
func (s *RatingService) Delete(ctx context.Context, customerID, ratingID string) error {
	rating, err := s.ownRating(ctx, customerID, ratingID)
	if err != nil {
		return err
	}
	if err := s.store.Ratings().Delete(ctx, rating.ID); err != nil {
		return err
	}
	s.invalidateFor(ctx, rating)
	return nil
}

func (s *RatingService) ownRating(ctx context.Context, customerID, ratingID string) (*models.Rating, error) {
	rating, err := s.store.Ratings().GetByID(ctx, ratingID)
	if err != nil {
		return nil, err
	}
	if rating.CustomerID != customerID {
		return nil, apperror.NotFound("rating", ratingID)
	}
	return rating, nil
}

func (s *RatingService) ListByProduct(ctx context.Context, productID string) ([]models.Rating, error) {
	return s.store.Ratings().ListByProduct(ctx, productID)
}

func (s *RatingService) ListByCustomer(ctx context.Context, customerID string) ([]models.Rating, error) {
	return s.store.Ratings().ListByCustomer(ctx, customerID)
}

func (s *RatingService) ListByCompany(ctx context.Context, companyID string) ([]models.Rating, error) {
	return s.store.Ratings().ListByCompany(ctx, companyID)
}

func (s *RatingService) invalidateFor(ctx context.Context, rating *models.Rating) {
	order, err := s.store.Orders().GetByID(ctx, rating.OrderID)
	if err != nil {
		log.Warn().Err(err).Str("rating_id", rating.ID).Msg("failed to resolve company of rating")
		return
	}
	s.invalidate(ctx, order.CompanyID)
}

func (s *RatingService) invalidate(ctx context.Context, companyID string) {
	if err := s.cache.Invalidate(ctx, companyID); err != nil {
		log.Warn().Err(err).Str("company_id", companyID).Msg("failed to invalidate dashboard")
	}
}
