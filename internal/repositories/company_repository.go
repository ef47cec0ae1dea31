package repositories

import (
	"context"

	"github.com/cardona-dev/bean-quick/internal/models"
)

// CompanyRepository defines data access for companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id string) (*models.Company, error)
	GetByOwner(ctx context.Context, ownerID string) (*models.Company, error)
	ListByStatus(ctx context.Context, status models.CompanyStatus) ([]models.Company, error)
	// UpdateStatus loads the owner into the returned company for notifications.
	UpdateStatus(ctx context.Context, id string, status models.CompanyStatus) (*models.Company, error)
	// UpdateProfile writes name, address, phone and description. Status, tax ID
	// and logo are left alone.
	UpdateProfile(ctx context.Context, company *models.Company) error
	SetLogoPath(ctx context.Context, id, path string) error
}
