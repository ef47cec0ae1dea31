package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/cardona-dev/bean-quick/internal/cache"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	topProductsLimit  = 5
	recentOrdersLimit = 5
	anonymousCustomer = "Anonymous customer"
)

// SalesPoint is one bar of a sales chart.
type SalesPoint struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// TopProduct is a product ranked by units sold in delivered orders.
type TopProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitsSold int64  `json:"units_sold"`
}

// RecentOrder is one line of the latest-orders table.
type RecentOrder struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	PickupTime   string          `json:"pickup_time"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Summary is the company dashboard. Sales count delivered orders only.
type Summary struct {
	SalesToday    decimal.Decimal `json:"sales_today"`
	RatingCount   int64           `json:"rating_count"`
	RatingAverage float64         `json:"rating_average"`
	WeeklySales   []SalesPoint    `json:"weekly_sales"`
	MonthlySales  []SalesPoint    `json:"monthly_sales"`
	TopProducts   []TopProduct    `json:"top_products"`
	RecentOrders  []RecentOrder   `json:"recent_orders"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// DashboardService aggregates sales figures of a company in the business time zone.
type DashboardService struct {
	store repositories.Store
	cache cache.DashboardCache
	loc   *time.Location
	now   func() time.Time
}

func NewDashboardService(store repositories.Store, dashboards cache.DashboardCache, loc *time.Location) *DashboardService {
	if dashboards == nil {
		dashboards = cache.Noop{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{store: store, cache: dashboards, loc: loc, now: time.Now}
}

// Summary returns the cached dashboard or computes a fresh one.
func (s *DashboardService) Summary(ctx context.Context, companyID string) (*Summary, error) {
	var cached Summary
	found, err := s.cache.Get(ctx, companyID, &cached)
	if err != nil {
		log.Warn().Err(err).Str("company_id", companyID).Msg("dashboard cache read failed")
	}
	if found {
		return &cached, nil
	}

	summary, err := s.compute(ctx, companyID)
	if err != nil {
		return nil, err
	}
	// sales_today must not outlive the day it was computed for
	if err := s.cache.Set(ctx, companyID, summary, untilMidnight(summary.GeneratedAt, s.loc)); err != nil {
		log.Warn().Err(err).Str("company_id", companyID).Msg("dashboard cache write failed")
	}
	return summary, nil
}

func (s *DashboardService) compute(ctx context.Context, companyID string) (*Summary, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	weekStart := today.AddDate(0, 0, -6)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, s.loc)
	since := yearStart
	if weekStart.Before(since) {
		since = weekStart
	}

	summary := &Summary{GeneratedAt: now}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		delivered, err := s.store.Orders().ListByCompanySince(gctx, companyID, models.StatusDelivered, since)
		if err != nil {
			return err
		}
		summary.SalesToday, summary.WeeklySales, summary.MonthlySales = salesSeries(delivered, now, s.loc)
		return nil
	})
	g.Go(func() error {
		stats, err := s.store.Ratings().StatsByCompany(gctx, companyID)
		if err != nil {
			return err
		}
		summary.RatingCount = stats.Count
		summary.RatingAverage = math.Round(stats.Average*10) / 10
		return nil
	})
	g.Go(func() error {
		top, err := s.topProducts(gctx, companyID)
		if err != nil {
			return err
		}
		summary.TopProducts = top
		return nil
	})
	g.Go(func() error {
		orders, err := s.store.Orders().RecentByCompany(gctx, companyID, recentOrdersLimit)
		if err != nil {
			return err
		}
		summary.RecentOrders = recentOrders(orders, s.loc)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

func untilMidnight(now time.Time, loc *time.Location) time.Duration {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
	return next.Sub(now)
}

// salesSeries buckets delivered orders into today, the last seven days
// (dd/mm labels) and the months of the current year, zero-filled.
func salesSeries(orders []models.Order, now time.Time, loc *time.Location) (decimal.Decimal, []SalesPoint, []SalesPoint) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	weekly := make([]SalesPoint, 7)
	for i := range weekly {
		day := today.AddDate(0, 0, i-6)
		weekly[i] = SalesPoint{Label: day.Format("02/01"), Total: decimal.Zero}
	}
	monthly := make([]SalesPoint, int(now.Month()))
	for i := range monthly {
		monthly[i] = SalesPoint{Label: time.Month(i + 1).String()[:3], Total: decimal.Zero}
	}

	salesToday := decimal.Zero
	for _, o := range orders {
		at := o.CreatedAt.In(loc)
		day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, loc)

		// calendar-day distance, immune to DST-length days
		offset := 6 - int(math.Round(today.Sub(day).Hours()/24))
		if offset >= 0 && offset < 7 {
			weekly[offset].Total = weekly[offset].Total.Add(o.Total)
		}
		if day.Equal(today) {
			salesToday = salesToday.Add(o.Total)
		}
		if at.Year() == now.Year() && int(at.Month()) <= len(monthly) {
			m := int(at.Month()) - 1
			monthly[m].Total = monthly[m].Total.Add(o.Total)
		}
	}
	return salesToday, weekly, monthly
}

func (s *DashboardService) topProducts(ctx context.Context, companyID string) ([]TopProduct, error) {
	products, err := s.store.Products().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	units, err := s.store.Orders().UnitsSoldByProduct(ctx, companyID, models.StatusDelivered)
	if err != nil {
		return nil, err
	}
	sold := make(map[string]int64, len(units))
	for _, u := range units {
		sold[u.ProductID] = u.Units
	}

	top := make([]TopProduct, 0, len(products))
	for _, p := range products {
		top = append(top, TopProduct{ProductID: p.ID, Name: p.Name, UnitsSold: sold[p.ID]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].UnitsSold != top[j].UnitsSold {
			return top[i].UnitsSold > top[j].UnitsSold
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}
	return top, nil
}

func recentOrders(orders []models.Order, loc *time.Location) []RecentOrder {
	out := make([]RecentOrder, 0, len(orders))
	for _, o := range orders {
		name := anonymousCustomer
		if o.Customer != nil && o.Customer.Name != "" {
			name = o.Customer.Name
		}
		out = append(out, RecentOrder{
			ID:           o.ID,
			CustomerName: name,
			Status:       string(o.Status.Canonical()),
			Total:        o.Total,
			PickupTime:   o.PickupTime,
			CreatedAt:    o.CreatedAt.In(loc),
		})
	}
	return out
}
