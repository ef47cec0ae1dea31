package models

import "time"

// Rating is a review of one product from one delivered order.
type Rating struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID string    `json:"customer_id" gorm:"type:varchar(36);not null;index"`
	Customer   *User     `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	OrderID    string    `json:"order_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_ratings_order_product"`
	ProductID  string    `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_ratings_order_product;index"`
	Product    *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Stars      int       `json:"stars" gorm:"not null"`
	Comment    string    `json:"comment" gorm:"type:varchar(255)"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
