package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/cache"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/repositories"
	"github.com/cardona-dev/bean-quick/internal/storage"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ProductInput carries the catalog fields a company may set.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.Validation("name", "is required")
	}
	if len(in.Name) > 255 {
		return apperror.Validation("name", "must be at most 255 characters")
	}
	if in.Price.IsNegative() {
		return apperror.Validation("price", "must not be negative")
	}
	if in.Stock < 0 {
		return apperror.Validation("stock", "must not be negative")
	}
	return nil
}

// ProductService handles business logic related to products.
type ProductService struct {
	store repositories.Store
	files storage.Storage
	cache cache.DashboardCache
}

// NewProductService creates a new ProductService. Catalog changes invalidate
// the company dashboard; a nil cache disables that.
func NewProductService(store repositories.Store, files storage.Storage, dashboards cache.DashboardCache) *ProductService {
	if dashboards == nil {
		dashboards = cache.Noop{}
	}
	return &ProductService{
		store: store,
		files: files,
		cache: dashboards,
	}
}

// ListByCompany retrieves the catalog of the calling company.
func (s *ProductService) ListByCompany(ctx context.Context, companyID string) ([]models.Product, error) {
	return s.store.Products().ListByCompany(ctx, companyID)
}

// ListForCustomers retrieves the catalog of an approved company.
func (s *ProductService) ListForCustomers(ctx context.Context, companyID string) ([]models.Product, error) {
	company, err := s.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !company.Approved() {
		return nil, apperror.NotFound("company", companyID)
	}
	return s.store.Products().ListByCompany(ctx, companyID)
}

// Get retrieves a product of the calling company. Products of other companies are reported as not found.
func (s *ProductService) Get(ctx context.Context, companyID, id string) (*models.Product, error) {
	return owned(ctx, s.store.Products(), companyID, id)
}

func owned(ctx context.Context, products repositories.ProductRepository, companyID, id string) (*models.Product, error) {
	product, err := products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.CompanyID != companyID {
		return nil, apperror.NotFound("product", id)
	}
	return product, nil
}

// Create adds a product to the company's catalog.
func (s *ProductService) Create(ctx context.Context, companyID string, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := &models.Product{CompanyID: companyID}
	setCatalogFields(product, in)
	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update overwrites the catalog fields of a product of the company.
func (s *ProductService) Update(ctx context.Context, companyID, id string, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product, err := owned(ctx, s.store.Products(), companyID, id)
	if err != nil {
		return nil, err
	}
	setCatalogFields(product, in)
	if err := s.store.Products().Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, companyID)
	return product, nil
}

func (s *ProductService) invalidate(ctx context.Context, companyID string) {
	if err := s.cache.Invalidate(ctx, companyID); err != nil {
		log.Warn().Err(err).Str("company_id", companyID).Msg("failed to invalidate dashboard")
	}
}

func setCatalogFields(p *models.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price.Round(2)
	p.Stock = in.Stock
}

// Delete removes the product from the catalog and from every cart.
// Orders keep their line items.
func (s *ProductService) Delete(ctx context.Context, companyID, id string) error {
	var image string
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		product, err := owned(ctx, tx.Products(), companyID, id)
		if err != nil {
			return err
		}
		image = product.ImagePath
		if err := tx.Products().Delete(ctx, id); err != nil {
			return err
		}
		return tx.Carts().DeleteEntriesForProduct(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, companyID)
	s.removeFile(ctx, image)
	return nil
}

// SetImage stores a new product picture and drops the previous one.
func (s *ProductService) SetImage(ctx context.Context, companyID, id string, data []byte) (*models.Product, error) {
	product, err := owned(ctx, s.store.Products(), companyID, id)
	if err != nil {
		return nil, err
	}
	path, err := s.files.Save(ctx, "products", data)
	if err != nil {
		return nil, err
	}

	if err := s.store.Products().SetImagePath(ctx, id, path); err != nil {
		s.removeFile(ctx, path)
		return nil, fmt.Errorf("failed to attach image: %w", err)
	}
	s.removeFile(ctx, product.ImagePath)

	// reload: stock may have moved while the file was written
	return s.store.Products().GetByID(ctx, id)
}

// ImageURL resolves the public address of a stored picture.
func (s *ProductService) ImageURL(path string) string {
	if s.files == nil {
		return ""
	}
	return s.files.URL(path)
}

func (s *ProductService) removeFile(ctx context.Context, path string) {
	if path == "" || s.files == nil {
		return
	}
	if err := s.files.Delete(ctx, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove product image")
	}
}

// GetStock returns the authoritative stock of a product.
func (s *ProductService) GetStock(ctx context.Context, id string) (int, error) {
	return s.store.Products().GetStock(ctx, id)
}

// AdjustStock restocks (positive delta) or withdraws units of a company's product.
func (s *ProductService) AdjustStock(ctx context.Context, companyID, id string, delta int) (int, error) {
	if _, err := owned(ctx, s.store.Products(), companyID, id); err != nil {
		return 0, err
	}
	return s.store.Products().AdjustStock(ctx, id, delta)
}
