package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/cardona-dev/bean-quick/internal/cache"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deliveredOrder inserts a delivered order created at the given instant.
func deliveredOrder(t *testing.T, e *env, customerID string, p *models.Product, qty int, at time.Time) *models.Order {
	t.Helper()
	o := &models.Order{
		CustomerID: customerID,
		CompanyID:  p.CompanyID,
		Status:     models.StatusDelivered,
		PickupTime: "12:00",
		Total:      p.Price.Mul(decimal.NewFromInt(int64(qty))),
		Items:      []models.OrderLineItem{{ProductID: p.ID, ProductName: p.Name, Quantity: qty, UnitPrice: p.Price}},
	}
	require.NoError(t, e.store.Orders().Create(context.Background(), o))
	require.NoError(t, e.db.Model(&models.Order{}).Where("id = ?", o.ID).Update("created_at", at.UTC()).Error)
	return o
}

func TestDashboardService_Summary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	loc := time.UTC
	dashboards := services.NewDashboardService(e.store, nil, loc)

	customer := e.fx.User("ana", models.RoleCustomer)
	c1 := e.fx.Company("C1")
	latte := e.fx.Product(c1.ID, "Latte", "5", 100)
	scone := e.fx.Product(c1.ID, "Scone", "2", 100)
	e.fx.Product(c1.ID, "Water", "1", 100)

	now := time.Now().In(loc)
	deliveredOrder(t, e, customer.ID, latte, 2, now)
	deliveredOrder(t, e, customer.ID, scone, 5, now)
	deliveredOrder(t, e, customer.ID, latte, 1, now.AddDate(0, 0, -3))
	deliveredOrder(t, e, customer.ID, latte, 4, now.AddDate(0, 0, -30))

	pending := deliveredOrder(t, e, customer.ID, latte, 9, now)
	require.NoError(t, e.db.Model(&models.Order{}).Where("id = ?", pending.ID).Update("status", models.StatusPending).Error)

	summary, err := dashboards.Summary(ctx, c1.ID)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(20).Equal(summary.SalesToday), summary.SalesToday.String())

	require.Len(t, summary.WeeklySales, 7)
	assert.Equal(t, now.Format("02/01"), summary.WeeklySales[6].Label)
	assert.Equal(t, now.AddDate(0, 0, -6).Format("02/01"), summary.WeeklySales[0].Label)
	assert.True(t, decimal.NewFromInt(20).Equal(summary.WeeklySales[6].Total))
	assert.True(t, decimal.NewFromInt(5).Equal(summary.WeeklySales[3].Total))
	assert.True(t, summary.WeeklySales[5].Total.IsZero())

	require.Len(t, summary.MonthlySales, int(now.Month()))
	yearTotal := decimal.Zero
	for _, m := range summary.MonthlySales {
		yearTotal = yearTotal.Add(m.Total)
	}
	expected := decimal.NewFromInt(25)
	if now.AddDate(0, 0, -30).Year() == now.Year() {
		expected = decimal.NewFromInt(45)
	}
	// the -3 day order may fall in the previous year in early January
	if now.AddDate(0, 0, -3).Year() != now.Year() {
		expected = expected.Sub(decimal.NewFromInt(5))
	}
	assert.True(t, expected.Equal(yearTotal), yearTotal.String())

	require.Len(t, summary.TopProducts, 3)
	assert.Equal(t, "Latte", summary.TopProducts[0].Name)
	assert.Equal(t, int64(7), summary.TopProducts[0].UnitsSold)
	assert.Equal(t, "Scone", summary.TopProducts[1].Name)
	assert.Equal(t, int64(0), summary.TopProducts[2].UnitsSold)

	require.Len(t, summary.RecentOrders, 5)
	assert.Equal(t, "ana", summary.RecentOrders[0].CustomerName)
	assert.Zero(t, summary.RatingCount)
}

func TestDashboardService_TopProductsLimitedToFive(t *testing.T) {
	e := newEnv(t)
	dashboards := services.NewDashboardService(e.store, nil, time.UTC)
	c1 := e.fx.Company("C1")
	for _, name := range []string{"F", "E", "D", "C", "B", "A"} {
		e.fx.Product(c1.ID, name, "1", 1)
	}

	summary, err := dashboards.Summary(context.Background(), c1.ID)
	require.NoError(t, err)
	require.Len(t, summary.TopProducts, 5)
	assert.Equal(t, "A", summary.TopProducts[0].Name)
	assert.Empty(t, summary.RecentOrders)
	assert.True(t, summary.SalesToday.IsZero())
}

func TestDashboardService_AnonymousCustomer(t *testing.T) {
	e := newEnv(t)
	dashboards := services.NewDashboardService(e.store, nil, time.UTC)
	c1 := e.fx.Company("C1")
	p := e.fx.Product(c1.ID, "Latte", "5", 10)

	deliveredOrder(t, e, "deleted-user", p, 1, time.Now())

	summary, err := dashboards.Summary(context.Background(), c1.ID)
	require.NoError(t, err)
	require.Len(t, summary.RecentOrders, 1)
	assert.Equal(t, "Anonymous customer", summary.RecentOrders[0].CustomerName)
}

func TestDashboardService_CachedUntilInvalidated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	redisCache := cache.NewRedisCache(client, time.Minute)

	dashboards := services.NewDashboardService(e.store, redisCache, time.UTC)
	orders := services.NewOrderService(e.store, nil, redisCache)

	customer := e.fx.User("ana", models.RoleCustomer)
	c1 := e.fx.Company("C1")
	p := e.fx.Product(c1.ID, "Latte", "5", 10)

	first, err := dashboards.Summary(ctx, c1.ID)
	require.NoError(t, err)
	assert.Empty(t, first.RecentOrders)
	assert.True(t, mr.Exists("dashboard:"+c1.ID))

	// a write behind the service's back is not seen while cached
	deliveredOrder(t, e, customer.ID, p, 1, time.Now())
	cached, err := dashboards.Summary(ctx, c1.ID)
	require.NoError(t, err)
	assert.Empty(t, cached.RecentOrders)

	putInCart(t, e, customer.ID, p.ID, 1)
	_, err = orders.PlaceOrder(ctx, customer.ID, c1.ID, "09:00")
	require.NoError(t, err)
	assert.False(t, mr.Exists("dashboard:"+c1.ID))

	fresh, err := dashboards.Summary(ctx, c1.ID)
	require.NoError(t, err)
	assert.Len(t, fresh.RecentOrders, 2)
	assert.True(t, decimal.NewFromInt(5).Equal(fresh.SalesToday))
}

func TestDashboardService_CacheFailureIsNotFatal(t *testing.T) {
	e := newEnv(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	dashboards := services.NewDashboardService(e.store, cache.NewRedisCache(client, time.Minute), time.UTC)
	_, err := dashboards.Summary(context.Background(), e.fx.Company("C1").ID)
	assert.NoError(t, err)
}

func TestDashboardService_CacheExpiresAtMidnight(t *testing.T) {
	e := newEnv(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	dashboards := services.NewDashboardService(e.store, cache.NewRedisCache(client, time.Hour), time.UTC)
	dashboards.SetClock(func() time.Time { return time.Date(2026, 3, 14, 23, 59, 30, 0, time.UTC) })
	c1 := e.fx.Company("C1")

	_, err := dashboards.Summary(context.Background(), c1.ID)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL("dashboard:"+c1.ID))
}
