package repositories_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/repositories"
	"github.com/cardona-dev/bean-quick/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGORMProductRepository_AdjustStock(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repositories.NewGORMProductRepository(db)
	ctx := context.Background()

	company := fx.Company("Cafe")
	p := fx.Product(company.ID, "Latte", "4.50", 5)

	stock, err := repo.AdjustStock(ctx, p.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)

	stock, err = repo.AdjustStock(ctx, p.ID, -3)
	var ise *apperror.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 3, ise.Requested)
	assert.Equal(t, "Latte", ise.ProductName)
	assert.Equal(t, 2, stock)
	assert.Equal(t, 2, fx.Stock(p.ID))

	stock, err = repo.AdjustStock(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, stock)

	_, err = repo.AdjustStock(ctx, "missing", 1)
	assert.True(t, apperror.IsNotFound(err, "product"))
}

func TestGORMProductRepository_AdjustStockConcurrentNeverNegative(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repositories.NewGORMProductRepository(db)

	p := fx.Product(fx.Company("Cafe").ID, "Mocha", "3.00", 10)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustStock(context.Background(), p.ID, -1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, fx.Stock(p.ID))
}

func TestGORMProductRepository_SoftDelete(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repositories.NewGORMProductRepository(db)
	ctx := context.Background()

	company := fx.Company("Cafe")
	a := fx.Product(company.ID, "Americano", "2.00", 1)
	b := fx.Product(company.ID, "Brownie", "1.50", 1)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.True(t, apperror.IsNotFound(repo.Delete(ctx, a.ID), "product"))

	_, err := repo.GetByID(ctx, a.ID)
	assert.True(t, apperror.IsNotFound(err, "product"))

	list, err := repo.ListByCompany(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	// stock of removed products can still be restored
	stock, err := repo.AdjustStock(ctx, a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, stock)
}

func TestGORMProductRepository_Update(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repositories.NewGORMProductRepository(db)
	ctx := context.Background()

	p := fx.Product(fx.Company("Cafe").ID, "Tea", "1.00", 3)
	p.Name = "Green tea"
	p.Stock = 0
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green tea", got.Name)
	assert.Equal(t, 0, got.Stock)

	p.ID = "missing"
	assert.True(t, apperror.IsNotFound(repo.Update(ctx, p), "product"))
}

func TestGORMProductRepository_SetImagePathLeavesStock(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repositories.NewGORMProductRepository(db)
	ctx := context.Background()

	p := fx.Product(fx.Company("Cafe").ID, "Tea", "1.00", 10)
	stale := *p

	_, err := repo.AdjustStock(ctx, p.ID, -4)
	require.NoError(t, err)
	require.NoError(t, repo.SetImagePath(ctx, stale.ID, "products/tea.png"))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "products/tea.png", got.ImagePath)
	assert.Equal(t, 6, got.Stock)

	// catalog updates never touch the image either
	stale.ImagePath = ""
	stale.Stock = 6
	require.NoError(t, repo.Update(ctx, &stale))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "products/tea.png", got.ImagePath)

	assert.True(t, apperror.IsNotFound(repo.SetImagePath(ctx, "missing", "x.png"), "product"))
}
