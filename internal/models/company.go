package models

import "time"

// CompanyStatus tracks the admin approval of a company registration.
type CompanyStatus string

const (
	CompanyPending  CompanyStatus = "pending"
	CompanyApproved CompanyStatus = "approved"
	CompanyRejected CompanyStatus = "rejected"
)

// Company is a merchant tenant. It owns products and receives orders.
type Company struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID     string        `json:"owner_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Owner       *User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name        string        `json:"name" gorm:"type:varchar(150);not null"`
	TaxID       string        `json:"tax_id" gorm:"type:varchar(50)"`
	Address     string        `json:"address" gorm:"type:varchar(255)"`
	Phone       string        `json:"phone" gorm:"type:varchar(30)"`
	Description string        `json:"description" gorm:"type:text"`
	LogoPath    string        `json:"logo_path,omitempty" gorm:"type:varchar(255)"`
	Status      CompanyStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Approved reports whether the company may sell.
func (c *Company) Approved() bool {
	return c.Status == CompanyApproved
}
