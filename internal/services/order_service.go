package services

import (
	"context"
	"sort"
	"time"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/cache"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/notify"
	"github.com/cardona-dev/bean-quick/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// OrderService turns cart entries into orders and drives the order life cycle.
type OrderService struct {
	store    repositories.Store
	notifier notify.Notifier
	cache    cache.DashboardCache
}

// NewOrderService creates a new OrderService.
func NewOrderService(store repositories.Store, notifier notify.Notifier, dashboards cache.DashboardCache) *OrderService {
	if dashboards == nil {
		dashboards = cache.Noop{}
	}
	return &OrderService{
		store:    store,
		notifier: notifier,
		cache:    dashboards,
	}
}

// ValidatePickupTime accepts a 24h HH:MM clock time.
func ValidatePickupTime(s string) error {
	if len(s) != 5 {
		return apperror.Validation("pickup_time", "must use the HH:MM format")
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return apperror.Validation("pickup_time", "must use the HH:MM format")
	}
	return nil
}

// PlaceOrder checks out the cart entries of one company. Stock is withdrawn,
// the order is created and those entries leave the cart in a single
// transaction; entries of other companies stay in the cart.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID, companyID, pickupTime string) (*models.Order, error) {
	if err := ValidatePickupTime(pickupTime); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		cart, err := tx.Carts().GetOrCreateLocked(ctx, customerID)
		if err != nil {
			return err
		}
		entries, err := tx.Carts().ListEntries(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return apperror.ErrEmptyCart
		}

		var selected []models.CartEntry
		for _, e := range entries {
			if e.Product.CompanyID == companyID {
				selected = append(selected, e)
			}
		}
		if len(selected) == 0 {
			return &apperror.NoItemsForCompanyError{CompanyID: companyID}
		}
		// Lock in a fixed order so concurrent checkouts sharing products cannot deadlock.
		sort.Slice(selected, func(i, j int) bool { return selected[i].ProductID < selected[j].ProductID })

		order = &models.Order{
			CustomerID: customerID,
			CompanyID:  companyID,
			Status:     models.StatusPending,
			PickupTime: pickupTime,
			Total:      decimal.Zero,
		}
		productIDs := make([]string, 0, len(selected))
		for _, e := range selected {
			product, err := tx.Products().GetForUpdate(ctx, e.ProductID)
			if err != nil {
				return err
			}
			if e.Quantity > product.Stock {
				return &apperror.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   e.Quantity,
					Available:   product.Stock,
				}
			}
			item := models.OrderLineItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    e.Quantity,
				UnitPrice:   product.Price,
			}
			order.Items = append(order.Items, item)
			order.Total = order.Total.Add(item.Subtotal())
			productIDs = append(productIDs, product.ID)
		}

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		for _, item := range order.Items {
			if _, err := tx.Products().AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}
		return tx.Carts().DeleteEntries(ctx, cart.ID, productIDs)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("order_id", order.ID).Str("company_id", companyID).Str("total", order.Total.StringFixed(2)).Msg("order placed")
	s.afterChange(ctx, notify.OrderCreated, order)
	return order, nil
}

// Cancel moves a pending order of the customer to Cancelled and puts its
// units back in stock.
func (s *OrderService) Cancel(ctx context.Context, orderID, customerID string) (*models.Order, error) {
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetForCustomer(ctx, orderID, customerID)
		if err != nil {
			return err
		}
		if err := s.transition(ctx, tx, order, models.StatusCancelled, models.ActorCustomer); err != nil {
			return err
		}
		for _, item := range order.Items {
			if _, err := tx.Products().AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("order_id", order.ID).Msg("order cancelled")
	s.afterChange(ctx, notify.OrderCancelled, order)
	return order, nil
}

// SetStatus advances an order of the company through preparation and delivery.
// status may be given in any case, in English or Spanish.
func (s *OrderService) SetStatus(ctx context.Context, orderID, companyID, status string) (*models.Order, error) {
	to, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, apperror.Validation("status", "unknown order status %q", status)
	}
	order, err := s.store.Orders().GetForCompany(ctx, orderID, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, s.store, order, to, models.ActorCompany); err != nil {
		return nil, err
	}

	s.afterChange(ctx, notify.OrderStatusChanged, order)
	return order, nil
}

// transition applies the state machine and writes the new status only if the
// stored one is still what was read.
func (s *OrderService) transition(ctx context.Context, st repositories.Store, order *models.Order, to models.OrderStatus, actor models.Actor) error {
	from := order.Status.Canonical()
	if !models.CanTransition(from, to, actor) {
		return &apperror.InvalidTransitionError{OrderID: order.ID, From: string(from), To: string(to)}
	}
	changed, err := st.Orders().UpdateStatus(ctx, order.ID, order.Status, to)
	if err != nil {
		return err
	}
	if !changed {
		current := from
		if fresh, err := st.Orders().GetByID(ctx, order.ID); err == nil {
			current = fresh.Status.Canonical()
		}
		return &apperror.InvalidTransitionError{OrderID: order.ID, From: string(current), To: string(to)}
	}
	order.Status = to
	return nil
}

func (s *OrderService) afterChange(ctx context.Context, t notify.EventType, order *models.Order) {
	if err := s.cache.Invalidate(ctx, order.CompanyID); err != nil {
		log.Warn().Err(err).Str("company_id", order.CompanyID).Msg("failed to invalidate dashboard")
	}

	e := notify.NewEvent(t)
	e.OrderID = order.ID
	e.CustomerID = order.CustomerID
	e.CompanyID = order.CompanyID
	e.Status = string(order.Status)
	e.Total = order.Total.StringFixed(2)
	if customer, err := s.store.Users().GetByID(ctx, order.CustomerID); err == nil {
		e.Email = customer.Email
		e.Name = customer.Name
	}
	notify.Send(ctx, s.notifier, e)
}

// ListForCustomer returns the customer's orders, newest first.
func (s *OrderService) ListForCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return s.store.Orders().ListByCustomer(ctx, customerID)
}

// ListForCompany returns the company's orders oldest first, the order they are prepared in.
func (s *OrderService) ListForCompany(ctx context.Context, companyID string) ([]models.Order, error) {
	return s.store.Orders().ListByCompany(ctx, companyID)
}

// GetForCustomer returns one order of the customer. Orders of others are reported as not found.
func (s *OrderService) GetForCustomer(ctx context.Context, orderID, customerID string) (*models.Order, error) {
	return s.store.Orders().GetForCustomer(ctx, orderID, customerID)
}
