package handlers

import (
	"github.com/cardona-dev/bean-quick/internal/middleware"
	"github.com/cardona-dev/bean-quick/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterClientRoutes registers checkout and the customer's order history.
func (h *OrderHandler) RegisterClientRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListForCustomer)
	orderRoutes.Post("/", h.HandlePlaceOrder)
	orderRoutes.Get("/:id", h.HandleGetForCustomer)
	orderRoutes.Post("/:id/cancel", h.HandleCancel)
}

// RegisterCompanyRoutes registers the order queue of a company.
func (h *OrderHandler) RegisterCompanyRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListForCompany)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

type placeOrderRequest struct {
	CompanyID  string `json:"company_id" validate:"required"`
	PickupTime string `json:"pickup_time" validate:"required"`
}

// HandlePlaceOrder checks out the cart entries of one company.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req placeOrderRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	order, err := h.service.PlaceOrder(c.UserContext(), middleware.UserID(c), req.CompanyID, req.PickupTime)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) HandleListForCustomer(c *fiber.Ctx) error {
	orders, err := h.service.ListForCustomer(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) HandleGetForCustomer(c *fiber.Ctx) error {
	order, err := h.service.GetForCustomer(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleCancel cancels a pending order and returns its stock.
func (h *OrderHandler) HandleCancel(c *fiber.Ctx) error {
	order, err := h.service.Cancel(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleListForCompany(c *fiber.Ctx) error {
	orders, err := h.service.ListForCompany(c.UserContext(), middleware.CompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus moves an order of the company forward.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req orderStatusRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	order, err := h.service.SetStatus(c.UserContext(), c.Params("id"), middleware.CompanyID(c), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
