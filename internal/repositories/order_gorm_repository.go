package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Omit("Customer", "Company").Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ?", id), id)
}

func (r *GORMOrderRepository) GetForCustomer(ctx context.Context, id, customerID string) (*models.Order, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ? AND customer_id = ?", id, customerID), id)
}

func (r *GORMOrderRepository) GetForCompany(ctx context.Context, id, companyID string) (*models.Order, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID), id)
}

func (r *GORMOrderRepository) first(ctx context.Context, q *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := q.Preload("Items").First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order", id)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Company").
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of customer %s: %w", customerID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer", selectPublicUser).
		Where("company_id = ?", companyID).
		Order("created_at ASC, id").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of company %s: %w", companyID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMOrderRepository) ListByCompanySince(ctx context.Context, companyID string, status models.OrderStatus, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND LOWER(status) = ? AND created_at >= ?", companyID, strings.ToLower(string(status)), since.UTC()).
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of company %s: %w", companyID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) RecentByCompany(ctx context.Context, companyID string, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer", selectPublicUser).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders of company %s: %w", companyID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) UnitsSoldByProduct(ctx context.Context, companyID string, status models.OrderStatus) ([]ProductUnits, error) {
	var rows []ProductUnits
	err := r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Select("order_line_items.product_id AS product_id, SUM(order_line_items.quantity) AS units").
		Joins("JOIN orders ON orders.id = order_line_items.order_id").
		Where("orders.company_id = ? AND LOWER(orders.status) = ?", companyID, strings.ToLower(string(status))).
		Group("order_line_items.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum units sold for company %s: %w", companyID, err)
	}
	return rows, nil
}

// selectPublicUser limits preloaded users to what other parties may see.
func selectPublicUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

var _ OrderRepository = (*GORMOrderRepository)(nil)
