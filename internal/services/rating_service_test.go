package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ratingFixture struct {
	env      *env
	ratings  *services.RatingService
	customer *models.User
	company  *models.Company
	product  *models.Product
	order    *models.Order
}

func newRatingFixture(t *testing.T, status models.OrderStatus) *ratingFixture {
	t.Helper()
	e := newEnv(t)
	ctx := context.Background()

	f := &ratingFixture{env: e, ratings: services.NewRatingService(e.store, nil)}
	f.customer = e.fx.User("ana", models.RoleCustomer)
	f.company = e.fx.Company("C1")
	f.product = e.fx.Product(f.company.ID, "Latte", "4.50", 10)
	putInCart(t, e, f.customer.ID, f.product.ID, 1)

	order, err := services.NewOrderService(e.store, nil, nil).PlaceOrder(ctx, f.customer.ID, f.company.ID, "10:00")
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", status).Error)
	f.order = order
	return f
}

func TestRatingService_RateDeliveredOnce(t *testing.T) {
	f := newRatingFixture(t, models.StatusDelivered)
	ctx := context.Background()
	in := services.RateInput{OrderID: f.order.ID, ProductID: f.product.ID, Stars: 4, Comment: "Great"}

	rating, err := f.ratings.Rate(ctx, f.customer.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 4, rating.Stars)

	_, err = f.ratings.Rate(ctx, f.customer.ID, in)
	var dre *apperror.DuplicateRatingError
	assert.True(t, errors.As(err, &dre))

	listed, err := f.ratings.ListByProduct(ctx, f.product.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "ana", listed[0].Customer.Name)
}

func TestRatingService_RateRequiresDelivered(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusPending, models.StatusPreparing, models.StatusReady, models.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newRatingFixture(t, status)
			_, err := f.ratings.Rate(context.Background(), f.customer.ID, services.RateInput{
				OrderID: f.order.ID, ProductID: f.product.ID, Stars: 5,
			})
			var nde *apperror.OrderNotDeliveredError
			require.True(t, errors.As(err, &nde))
			assert.Equal(t, string(status), nde.Status)
		})
	}
}

func TestRatingService_RateAcceptsLegacyDeliveredStatus(t *testing.T) {
	f := newRatingFixture(t, "entregado")
	_, err := f.ratings.Rate(context.Background(), f.customer.ID, services.RateInput{
		OrderID: f.order.ID, ProductID: f.product.ID, Stars: 5,
	})
	assert.NoError(t, err)
}

func TestRatingService_RateRejections(t *testing.T) {
	f := newRatingFixture(t, models.StatusDelivered)
	ctx := context.Background()

	stranger := f.env.fx.User("bob", models.RoleCustomer)
	_, err := f.ratings.Rate(ctx, stranger.ID, services.RateInput{OrderID: f.order.ID, ProductID: f.product.ID, Stars: 5})
	assert.True(t, apperror.IsNotFound(err, "order"))

	other := f.env.fx.Product(f.company.ID, "Scone", "2", 1)
	_, err = f.ratings.Rate(ctx, f.customer.ID, services.RateInput{OrderID: f.order.ID, ProductID: other.ID, Stars: 5})
	assert.True(t, apperror.IsNotFound(err, "product"))

	var ve *apperror.ValidationError
	for _, in := range []services.RateInput{
		{OrderID: f.order.ID, ProductID: f.product.ID, Stars: 0},
		{OrderID: f.order.ID, ProductID: f.product.ID, Stars: 6},
		{OrderID: f.order.ID, ProductID: f.product.ID, Stars: 3, Comment: strings.Repeat("a", 256)},
	} {
		_, err = f.ratings.Rate(ctx, f.customer.ID, in)
		assert.True(t, errors.As(err, &ve))
	}

	_, err = f.ratings.Rate(ctx, f.customer.ID, services.RateInput{
		OrderID: f.order.ID, ProductID: f.product.ID, Stars: 3, Comment: strings.Repeat("é", 255),
	})
	assert.NoError(t, err)
}

func TestRatingService_UpdateAndDeleteOwnOnly(t *testing.T) {
	f := newRatingFixture(t, models.StatusDelivered)
	ctx := context.Background()

	rating, err := f.ratings.Rate(ctx, f.customer.ID, services.RateInput{OrderID: f.order.ID, ProductID: f.product.ID, Stars: 2})
	require.NoError(t, err)

	stranger := f.env.fx.User("bob", models.RoleCustomer)
	_, err = f.ratings.Update(ctx, stranger.ID, rating.ID, 5, "")
	assert.True(t, apperror.IsNotFound(err, "rating"))
	assert.True(t, apperror.IsNotFound(f.ratings.Delete(ctx, stranger.ID, rating.ID), "rating"))

	var ve *apperror.ValidationError
	_, err = f.ratings.Update(ctx, f.customer.ID, rating.ID, 9, "")
	assert.True(t, errors.As(err, &ve))

	updated, err := f.ratings.Update(ctx, f.customer.ID, rating.ID, 5, "Better now")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Stars)

	mine, err := f.ratings.ListByCustomer(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Better now", mine[0].Comment)

	require.NoError(t, f.ratings.Delete(ctx, f.customer.ID, rating.ID))
	forCompany, err := f.ratings.ListByCompany(ctx, f.company.ID)
	require.NoError(t, err)
	assert.Empty(t, forCompany)
}
