package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/repositories"
	"github.com/cardona-dev/bean-quick/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetForUpdate(ctx context.Context, id string) (*models.Product, error) {
	return m.GetByID(ctx, id)
}

func (m *MockProductRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Product, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) SetImagePath(ctx context.Context, id, path string) error {
	return m.Called(ctx, id, path).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) GetStock(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

// MockCartRepository only implements what product removal needs.
type MockCartRepository struct {
	repositories.CartRepository
	mock.Mock
}

func (m *MockCartRepository) DeleteEntriesForProduct(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

type MockCompanyRepository struct {
	repositories.CompanyRepository
	mock.Mock
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

// mockStore runs transactions inline against the mocks.
type mockStore struct {
	repositories.Store
	products  *MockProductRepository
	carts     *MockCartRepository
	companies *MockCompanyRepository
}

func newMockStore() *mockStore {
	return &mockStore{
		products:  new(MockProductRepository),
		carts:     new(MockCartRepository),
		companies: new(MockCompanyRepository),
	}
}

func (s *mockStore) Products() repositories.ProductRepository  { return s.products }
func (s *mockStore) Carts() repositories.CartRepository        { return s.carts }
func (s *mockStore) Companies() repositories.CompanyRepository { return s.companies }

func (s *mockStore) Transaction(_ context.Context, fn func(tx repositories.Store) error) error {
	return fn(s)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, folder string, data []byte) (string, error) {
	args := m.Called(ctx, folder, data)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockStorage) URL(path string) string {
	return "/uploads/" + path
}

func TestProductService_ListForCustomers(t *testing.T) {
	store := newMockStore()
	service := services.NewProductService(store, nil, nil)
	ctx := context.Background()

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Price: decimal.NewFromInt(10), Stock: 100},
		{ID: "2", Name: "Product B", Price: decimal.NewFromInt(20), Stock: 50},
	}
	store.companies.On("GetByID", ctx, "co-1").Return(&models.Company{ID: "co-1", Status: models.CompanyApproved}, nil).Once()
	store.products.On("ListByCompany", ctx, "co-1").Return(expectedProducts, nil).Once()

	products, err := service.ListForCustomers(ctx, "co-1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)

	store.companies.On("GetByID", ctx, "co-2").Return(&models.Company{ID: "co-2", Status: models.CompanyPending}, nil).Once()
	_, err = service.ListForCustomers(ctx, "co-2")
	assert.True(t, apperror.IsNotFound(err, "company"))

	store.products.AssertExpectations(t)
	store.companies.AssertExpectations(t)
}

func TestProductService_Get_ScopedToCompany(t *testing.T) {
	store := newMockStore()
	service := services.NewProductService(store, nil, nil)
	ctx := context.Background()

	expectedProduct := &models.Product{ID: "1", CompanyID: "co-1", Name: "Product A"}
	store.products.On("GetByID", ctx, "1").Return(expectedProduct, nil).Twice()

	product, err := service.Get(ctx, "co-1", "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	_, err = service.Get(ctx, "co-2", "1")
	assert.True(t, apperror.IsNotFound(err, "product"))

	store.products.On("GetByID", ctx, "99").Return(nil, apperror.NotFound("product", "99")).Once()
	_, err = service.Get(ctx, "co-1", "99")
	assert.True(t, apperror.IsNotFound(err, "product"))
	store.products.AssertExpectations(t)
}

func TestProductService_Create(t *testing.T) {
	store := newMockStore()
	service := services.NewProductService(store, nil, nil)
	ctx := context.Background()

	in := services.ProductInput{Name: " Latte ", Price: decimal.RequireFromString("4.505"), Stock: 10}
	store.products.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.CompanyID == "co-1" && p.Name == "Latte" && p.Price.Equal(decimal.RequireFromString("4.51"))
	})).Return(nil).Once()

	product, err := service.Create(ctx, "co-1", in)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Stock)
	store.products.AssertExpectations(t)

	var ve *apperror.ValidationError
	_, err = service.Create(ctx, "co-1", services.ProductInput{Name: "Bad", Price: decimal.NewFromInt(-1)})
	assert.True(t, errors.As(err, &ve))
	_, err = service.Create(ctx, "co-1", services.ProductInput{Name: "Bad", Stock: -1})
	assert.True(t, errors.As(err, &ve))
	_, err = service.Create(ctx, "co-1", services.ProductInput{Name: "  "})
	assert.True(t, errors.As(err, &ve))
}

func TestProductService_Update(t *testing.T) {
	store := newMockStore()
	service := services.NewProductService(store, nil, nil)
	ctx := context.Background()

	existing := &models.Product{ID: "1", CompanyID: "co-1", Name: "Old", ImagePath: "products/a.png"}
	store.products.On("GetByID", ctx, "1").Return(existing, nil).Once()
	store.products.On("Update", ctx, existing).Return(nil).Once()

	updated, err := service.Update(ctx, "co-1", "1", services.ProductInput{Name: "New", Price: decimal.NewFromInt(3), Stock: 0})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "products/a.png", updated.ImagePath)
	store.products.AssertExpectations(t)
}

func TestProductService_Delete_RemovesCartEntriesAndImage(t *testing.T) {
	store := newMockStore()
	files := new(MockStorage)
	service := services.NewProductService(store, files, nil)
	ctx := context.Background()

	store.products.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", CompanyID: "co-1", ImagePath: "products/a.png"}, nil).Once()
	store.products.On("Delete", ctx, "1").Return(nil).Once()
	store.carts.On("DeleteEntriesForProduct", ctx, "1").Return(nil).Once()
	files.On("Delete", ctx, "products/a.png").Return(nil).Once()

	require.NoError(t, service.Delete(ctx, "co-1", "1"))
	store.products.AssertExpectations(t)
	store.carts.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestProductService_Delete_CartCleanupFailureKeepsImage(t *testing.T) {
	store := newMockStore()
	files := new(MockStorage)
	service := services.NewProductService(store, files, nil)
	ctx := context.Background()

	store.products.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", CompanyID: "co-1", ImagePath: "products/a.png"}, nil).Once()
	store.products.On("Delete", ctx, "1").Return(nil).Once()
	store.carts.On("DeleteEntriesForProduct", ctx, "1").Return(errors.New("db down")).Once()

	assert.Error(t, service.Delete(ctx, "co-1", "1"))
	files.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProductService_SetImage(t *testing.T) {
	store := newMockStore()
	files := new(MockStorage)
	service := services.NewProductService(store, files, nil)
	ctx := context.Background()
	data := []byte("png")

	store.products.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", CompanyID: "co-1", ImagePath: "products/old.png"}, nil).Once()
	files.On("Save", ctx, "products", data).Return("products/new.png", nil).Once()
	store.products.On("SetImagePath", ctx, "1", "products/new.png").Return(nil).Once()
	files.On("Delete", ctx, "products/old.png").Return(nil).Once()
	store.products.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", CompanyID: "co-1", ImagePath: "products/new.png"}, nil).Once()

	got, err := service.SetImage(ctx, "co-1", "1", data)
	require.NoError(t, err)
	assert.Equal(t, "products/new.png", got.ImagePath)
	assert.Equal(t, "/uploads/products/new.png", service.ImageURL(got.ImagePath))
	files.AssertExpectations(t)
	store.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_SetImage_FailedAttachRemovesNewFile(t *testing.T) {
	store := newMockStore()
	files := new(MockStorage)
	service := services.NewProductService(store, files, nil)
	ctx := context.Background()
	data := []byte("png")

	store.products.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", CompanyID: "co-1", ImagePath: "products/old.png"}, nil).Once()
	files.On("Save", ctx, "products", data).Return("products/new.png", nil).Once()
	store.products.On("SetImagePath", ctx, "1", "products/new.png").Return(errors.New("db down")).Once()
	files.On("Delete", ctx, "products/new.png").Return(nil).Once()

	_, err := service.SetImage(ctx, "co-1", "1", data)
	assert.Error(t, err)
	files.AssertExpectations(t)
	files.AssertNotCalled(t, "Delete", ctx, "products/old.png")
}

// checkoutDuringSave is a Storage whose Save lets a stock change commit
// while the upload is in flight.
type checkoutDuringSave struct {
	MockStorage
	store     repositories.Store
	productID string
}

func (s *checkoutDuringSave) Save(ctx context.Context, _ string, _ []byte) (string, error) {
	if _, err := s.store.Products().AdjustStock(ctx, s.productID, -3); err != nil {
		return "", err
	}
	return "products/new.png", nil
}

func TestProductService_SetImage_KeepsConcurrentStockChanges(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c1 := e.fx.Company("C1")
	p := e.fx.Product(c1.ID, "Latte", "2.50", 10)

	files := &checkoutDuringSave{store: e.store, productID: p.ID}
	got, err := services.NewProductService(e.store, files, nil).SetImage(ctx, c1.ID, p.ID, []byte("png"))
	require.NoError(t, err)

	assert.Equal(t, 7, e.fx.Stock(p.ID))
	assert.Equal(t, 7, got.Stock)
	assert.Equal(t, "products/new.png", got.ImagePath)
}

func TestProductService_CatalogChangesInvalidateDashboard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c1 := e.fx.Company("C1")
	p := e.fx.Product(c1.ID, "Latte", "2.50", 10)
	dashboards := &recordingCache{}
	service := services.NewProductService(e.store, nil, dashboards)

	_, err := service.Update(ctx, c1.ID, p.ID, services.ProductInput{Name: "Flat white", Price: decimal.NewFromInt(3), Stock: 10})
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, c1.ID, p.ID))

	assert.Equal(t, []string{c1.ID, c1.ID}, dashboards.invalidated)
}

func TestProductService_AdjustStock(t *testing.T) {
	store := newMockStore()
	service := services.NewProductService(store, nil, nil)
	ctx := context.Background()

	store.products.On("GetByID", ctx, "1").Return(&models.Product{ID: "1", CompanyID: "co-1"}, nil).Twice()
	store.products.On("AdjustStock", ctx, "1", 5).Return(8, nil).Once()
	store.products.On("AdjustStock", ctx, "1", -20).Return(8, &apperror.InsufficientStockError{ProductID: "1", Available: 8}).Once()

	stock, err := service.AdjustStock(ctx, "co-1", "1", 5)
	require.NoError(t, err)
	assert.Equal(t, 8, stock)

	_, err = service.AdjustStock(ctx, "co-1", "1", -20)
	var ise *apperror.InsufficientStockError
	assert.True(t, errors.As(err, &ise))
	store.products.AssertExpectations(t)
}
