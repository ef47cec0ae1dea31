// Package testutil builds throwaway SQLite databases and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/cardona-dev/bean-quick/internal/config"
	"github.com/cardona-dev/bean-quick/internal/database"
	"github.com/cardona-dev/bean-quick/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open(config.Database{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Fixtures inserts rows directly through GORM.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
}

func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) User(name string, role models.Role) *models.User {
	f.t.Helper()
	u := &models.User{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.New().String()[:8]),
		Password: "x",
		Role:     role,
	}
	require.NoError(f.t, f.db.WithContext(context.Background()).Create(u).Error)
	return u
}

// Company creates an owner and an approved company.
func (f *Fixtures) Company(name string) *models.Company {
	f.t.Helper()
	owner := f.User(name+"-owner", models.RoleCompany)
	c := &models.Company{
		ID:      uuid.New().String(),
		OwnerID: owner.ID,
		Name:    name,
		Status:  models.CompanyApproved,
	}
	require.NoError(f.t, f.db.Omit("Owner").Create(c).Error)
	return c
}

func (f *Fixtures) Product(companyID, name, price string, stock int) *models.Product {
	f.t.Helper()
	p := &models.Product{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
	}
	require.NoError(f.t, f.db.Omit("Company").Create(p).Error)
	return p
}

// Stock reads the stock of a product, soft-deleted ones included.
func (f *Fixtures) Stock(productID string) int {
	f.t.Helper()
	var p models.Product
	require.NoError(f.t, f.db.Unscoped().Select("stock").First(&p, "id = ?", productID).Error)
	return p.Stock
}
