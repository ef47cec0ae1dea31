package services

import (
	"context"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartService manages the single multi-company cart of each customer.
// Stock checks here are advisory; checkout re-validates against live stock.
type CartService struct {
	store repositories.Store
}

func NewCartService(store repositories.Store) *CartService {
	return &CartService{store: store}
}

func (s *CartService) GetOrCreate(ctx context.Context, customerID string) (*models.Cart, error) {
	return s.store.Carts().GetOrCreate(ctx, customerID)
}

// AddOrIncrement adds quantity units of the product, on top of what is already reserved.
func (s *CartService) AddOrIncrement(ctx context.Context, customerID, productID string, quantity int) error {
	if quantity < 1 {
		return apperror.Validation("quantity", "must be at least 1")
	}
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		cart, err := tx.Carts().GetOrCreateLocked(ctx, customerID)
		if err != nil {
			return err
		}
		product, err := sellable(ctx, tx, productID)
		if err != nil {
			return err
		}

		inCart := 0
		entry, err := tx.Carts().GetEntry(ctx, cart.ID, productID)
		switch {
		case err == nil:
			inCart = entry.Quantity
		case !apperror.IsNotFound(err, ""):
			return err
		}

		if inCart+quantity > product.Stock {
			return &apperror.StockExceededError{
				ProductID: productID,
				Requested: quantity,
				InCart:    inCart,
				Available: max(product.Stock-inCart, 0),
			}
		}
		return tx.Carts().SetEntry(ctx, cart.ID, productID, inCart+quantity)
	})
}

// SetQuantity replaces the reserved quantity of a product already in the cart.
func (s *CartService) SetQuantity(ctx context.Context, customerID, productID string, quantity int) error {
	if quantity < 1 {
		return apperror.Validation("quantity", "must be at least 1")
	}
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		cart, err := tx.Carts().GetOrCreateLocked(ctx, customerID)
		if err != nil {
			return err
		}
		entry, err := tx.Carts().GetEntry(ctx, cart.ID, productID)
		if err != nil {
			return err
		}
		product, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return &apperror.StockExceededError{
				ProductID: productID,
				Requested: quantity,
				InCart:    entry.Quantity,
				Available: product.Stock,
			}
		}
		return tx.Carts().SetEntry(ctx, cart.ID, productID, quantity)
	})
}

// Remove drops the product from the cart. Removing an absent product succeeds.
func (s *CartService) Remove(ctx context.Context, customerID, productID string) error {
	cart, err := s.store.Carts().GetByCustomer(ctx, customerID)
	if apperror.IsNotFound(err, "cart") {
		return nil
	}
	if err != nil {
		return err
	}
	return s.store.Carts().DeleteEntry(ctx, cart.ID, productID)
}

// Clear empties the cart but keeps it.
func (s *CartService) Clear(ctx context.Context, customerID string) error {
	cart, err := s.store.Carts().GetByCustomer(ctx, customerID)
	if apperror.IsNotFound(err, "cart") {
		return nil
	}
	if err != nil {
		return err
	}
	return s.store.Carts().Clear(ctx, cart.ID)
}

// ListWithDetails returns each reserved product with its company, live price and subtotal.
func (s *CartService) ListWithDetails(ctx context.Context, customerID string) ([]models.CartLine, error) {
	cart, err := s.store.Carts().GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Carts().ListEntries(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	lines := make([]models.CartLine, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, models.CartLine{
			Product:  *e.Product,
			Quantity: e.Quantity,
			Subtotal: e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity))),
		})
	}
	return lines, nil
}

// sellable loads a product whose company is approved.
func sellable(ctx context.Context, tx repositories.Store, productID string) (*models.Product, error) {
	product, err := tx.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	company, err := tx.Companies().GetByID(ctx, product.CompanyID)
	if err != nil {
		return nil, err
	}
	if !company.Approved() {
		return nil, apperror.NotFound("product", productID)
	}
	return product, nil
}
