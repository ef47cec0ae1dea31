package repositories

import (
	"context"

	"github.com/cardona-dev/bean-quick/internal/models"
)

// CartRepository defines data access for customer carts and their entries.
type CartRepository interface {
	// GetByCustomer returns NotFoundError when the customer never used a cart.
	GetByCustomer(ctx context.Context, customerID string) (*models.Cart, error)
	GetOrCreate(ctx context.Context, customerID string) (*models.Cart, error)
	// GetOrCreateLocked is GetOrCreate holding the cart row lock until the transaction ends.
	GetOrCreateLocked(ctx context.Context, customerID string) (*models.Cart, error)

	GetEntry(ctx context.Context, cartID, productID string) (*models.CartEntry, error)
	// ListEntries returns entries of live products with Product and Product.Company loaded.
	ListEntries(ctx context.Context, cartID string) ([]models.CartEntry, error)
	// SetEntry inserts the entry or overwrites its quantity.
	SetEntry(ctx context.Context, cartID, productID string, quantity int) error
	DeleteEntry(ctx context.Context, cartID, productID string) error
	DeleteEntries(ctx context.Context, cartID string, productIDs []string) error
	Clear(ctx context.Context, cartID string) error
	// DeleteEntriesForProduct removes the product from every cart.
	DeleteEntriesForProduct(ctx context.Context, productID string) error
}
