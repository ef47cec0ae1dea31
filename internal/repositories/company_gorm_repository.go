package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCompanyRepository is a GORM implementation of CompanyRepository.
type GORMCompanyRepository struct {
	db *gorm.DB
}

// NewGORMCompanyRepository creates a new instance of GORMCompanyRepository.
func NewGORMCompanyRepository(db *gorm.DB) *GORMCompanyRepository {
	return &GORMCompanyRepository{db: db}
}

func (r *GORMCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Owner").Create(company).Error; err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (r *GORMCompanyRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GORMCompanyRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Company, error) {
	return r.first(ctx, "owner_id = ?", ownerID)
}

func (r *GORMCompanyRepository) first(ctx context.Context, cond, arg string) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("company", arg)
		}
		return nil, fmt.Errorf("failed to get company %s: %w", arg, err)
	}
	return &company, nil
}

func (r *GORMCompanyRepository) ListByStatus(ctx context.Context, status models.CompanyStatus) ([]models.Company, error) {
	var companies []models.Company
	if err := r.db.WithContext(ctx).Where("status = ?", status).Order("name").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s companies: %w", status, err)
	}
	return companies, nil
}

func (r *GORMCompanyRepository) UpdateStatus(ctx context.Context, id string, status models.CompanyStatus) (*models.Company, error) {
	res := r.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update company %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("company", id)
	}

	var company models.Company
	if err := r.db.WithContext(ctx).Preload("Owner").First(&company, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload company %s: %w", id, err)
	}
	return &company, nil
}

func (r *GORMCompanyRepository) UpdateProfile(ctx context.Context, company *models.Company) error {
	res := r.db.WithContext(ctx).Model(company).
		Select("name", "address", "phone", "description").
		Updates(company)
	if res.Error != nil {
		return fmt.Errorf("failed to update company %s: %w", company.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("company", company.ID)
	}
	return nil
}

func (r *GORMCompanyRepository) SetLogoPath(ctx context.Context, id, path string) error {
	res := r.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", id).Update("logo_path", path)
	if res.Error != nil {
		return fmt.Errorf("failed to set logo of company %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("company", id)
	}
	return nil
}

var _ CompanyRepository = (*GORMCompanyRepository)(nil)
