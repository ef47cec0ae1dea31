package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineItem is the immutable snapshot of one product inside an order.
type OrderLineItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID   string          `json:"product_id" gorm:"type:varchar(36);not null;index"`
	ProductName string          `json:"product_name" gorm:"type:varchar(255);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"` // price at the time of order
}

// Subtotal is quantity times the frozen unit price.
func (li OrderLineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is a single-company commitment to buy. Total is computed at creation
// and never recomputed.
type Order struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID string          `json:"customer_id" gorm:"type:varchar(36);not null;index"`
	Customer   *User           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	CompanyID  string          `json:"company_id" gorm:"type:varchar(36);not null;index"`
	Company    *Company        `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Status     OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	PickupTime string          `json:"pickup_time" gorm:"type:varchar(5);not null"`
	Total      decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Items      []OrderLineItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
