package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store gives access to every repository and runs units of work.
type Store interface {
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	Ratings() RatingRepository
	Users() UserRepository
	Companies() CompanyRepository

	// Transaction runs fn against a Store bound to a single database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GORMStore is the GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a Store over db, which may itself be a transaction.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

func (s *GORMStore) Products() ProductRepository  { return NewGORMProductRepository(s.db) }
func (s *GORMStore) Carts() CartRepository        { return NewGORMCartRepository(s.db) }
func (s *GORMStore) Orders() OrderRepository      { return NewGORMOrderRepository(s.db) }
func (s *GORMStore) Ratings() RatingRepository    { return NewGORMRatingRepository(s.db) }
func (s *GORMStore) Users() UserRepository        { return NewGORMUserRepository(s.db) }
func (s *GORMStore) Companies() CompanyRepository { return NewGORMCompanyRepository(s.db) }

func (s *GORMStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}

var _ Store = (*GORMStore)(nil)
