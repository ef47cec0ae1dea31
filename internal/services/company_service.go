package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/notify"
	"github.com/cardona-dev/bean-quick/internal/repositories"
	"github.com/cardona-dev/bean-quick/internal/storage"

	"github.com/rs/zerolog/log"
)

// CompanyRequest registers a company together with the account of its owner.
type CompanyRequest struct {
	OwnerName   string
	Email       string
	Password    string
	CompanyName string
	TaxID       string
	Address     string
	Phone       string
	Description string
}

// ProfileInput holds the fields a company may edit about itself.
type ProfileInput struct {
	Name        string
	Address     string
	Phone       string
	Description string
}

// CompanyService covers company registration, admin approval, client browsing
// and the profile a company keeps about itself.
type CompanyService struct {
	store    repositories.Store
	files    storage.Storage
	notifier notify.Notifier
}

// NewCompanyService builds the service. files may be nil when logos are not served.
func NewCompanyService(store repositories.Store, files storage.Storage, notifier notify.Notifier) *CompanyService {
	return &CompanyService{store: store, files: files, notifier: notifier}
}

// RequestRegistration creates the owner account and a pending company in one transaction.
func (s *CompanyService) RequestRegistration(ctx context.Context, req CompanyRequest) (*models.Company, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, apperror.Validation("company_name", "is required")
	}

	var company *models.Company
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		owner := &models.User{
			Name:     req.OwnerName,
			Email:    req.Email,
			Password: req.Password,
			Role:     models.RoleCompany,
		}
		if err := createAccount(ctx, tx.Users(), owner); err != nil {
			return err
		}
		company = &models.Company{
			OwnerID:     owner.ID,
			Name:        strings.TrimSpace(req.CompanyName),
			TaxID:       req.TaxID,
			Address:     req.Address,
			Phone:       req.Phone,
			Description: req.Description,
			Status:      models.CompanyPending,
		}
		return tx.Companies().Create(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("company_id", company.ID).Str("name", company.Name).Msg("company registration requested")
	return company, nil
}

// GetForOwner returns the company owned by the user.
func (s *CompanyService) GetForOwner(ctx context.Context, ownerID string) (*models.Company, error) {
	return s.store.Companies().GetByOwner(ctx, ownerID)
}

// ListApproved lists companies visible to clients.
func (s *CompanyService) ListApproved(ctx context.Context) ([]models.Company, error) {
	return s.store.Companies().ListByStatus(ctx, models.CompanyApproved)
}

// GetApproved hides companies that are not approved.
func (s *CompanyService) GetApproved(ctx context.Context, id string) (*models.Company, error) {
	company, err := s.store.Companies().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !company.Approved() {
		return nil, apperror.NotFound("company", id)
	}
	return company, nil
}

func (s *CompanyService) ListPending(ctx context.Context) ([]models.Company, error) {
	return s.store.Companies().ListByStatus(ctx, models.CompanyPending)
}

func (s *CompanyService) Approve(ctx context.Context, id string) (*models.Company, error) {
	return s.decide(ctx, id, models.CompanyApproved, notify.CompanyApproved)
}

func (s *CompanyService) Reject(ctx context.Context, id string) (*models.Company, error) {
	return s.decide(ctx, id, models.CompanyRejected, notify.CompanyRejected)
}

// decide records the admin decision on a pending request.
func (s *CompanyService) decide(ctx context.Context, id string, status models.CompanyStatus, event notify.EventType) (*models.Company, error) {
	current, err := s.store.Companies().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.CompanyPending {
		return nil, apperror.Validation("status", "company %s was already %s", id, current.Status)
	}
	company, err := s.store.Companies().UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	e := notify.NewEvent(event)
	e.CompanyID = company.ID
	e.Name = company.Name
	if company.Owner != nil {
		e.Email = company.Owner.Email
	}
	notify.Send(ctx, s.notifier, e)
	return company, nil
}

// GetProfile returns the company record, whatever its approval status.
func (s *CompanyService) GetProfile(ctx context.Context, companyID string) (*models.Company, error) {
	return s.store.Companies().GetByID(ctx, companyID)
}

// UpdateProfile replaces the editable fields. Tax ID, status and logo keep
// their stored values.
func (s *CompanyService) UpdateProfile(ctx context.Context, companyID string, in ProfileInput) (*models.Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("name", "is required")
	}
	company := &models.Company{
		ID:          companyID,
		Name:        name,
		Address:     in.Address,
		Phone:       in.Phone,
		Description: in.Description,
	}
	if err := s.store.Companies().UpdateProfile(ctx, company); err != nil {
		return nil, err
	}
	log.Info().Str("company_id", companyID).Msg("company profile updated")
	return s.store.Companies().GetByID(ctx, companyID)
}

// SetLogo stores a new logo and drops the previous file.
func (s *CompanyService) SetLogo(ctx context.Context, companyID string, data []byte) (*models.Company, error) {
	if s.files == nil {
		return nil, fmt.Errorf("logo storage is not configured")
	}
	current, err := s.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	path, err := s.files.Save(ctx, "logos", data)
	if err != nil {
		return nil, err
	}
	if err := s.store.Companies().SetLogoPath(ctx, companyID, path); err != nil {
		s.removeFile(ctx, path)
		return nil, fmt.Errorf("failed to attach logo: %w", err)
	}
	s.removeFile(ctx, current.LogoPath)
	return s.store.Companies().GetByID(ctx, companyID)
}

// LogoURL resolves the public address of a stored logo.
func (s *CompanyService) LogoURL(path string) string {
	if s.files == nil || path == "" {
		return ""
	}
	return s.files.URL(path)
}

func (s *CompanyService) removeFile(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.files.Delete(ctx, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove company logo")
	}
}
