package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the single pending selection of a customer. It may hold products of many companies.
type Cart struct {
	ID         string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID string      `json:"customer_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Entries    []CartEntry `json:"entries,omitempty" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// CartEntry is a reserved quantity of one product. Price and company are
// resolved live through Product.
type CartEntry struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string    `json:"cart_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_entries_cart_product"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_entries_cart_product"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLine is the read projection of a cart entry joined with live product data.
type CartLine struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}
