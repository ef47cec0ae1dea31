package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog entry of one company. Stock is the authoritative
// number of units available and never goes negative.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CompanyID   string          `json:"company_id" gorm:"type:varchar(36);not null;index"`
	Company     *Company        `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	ImagePath   string          `json:"image_path,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"` // line items keep pointing at soft-deleted rows
}
