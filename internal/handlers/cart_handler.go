package handlers

import (
	"github.com/cardona-dev/bean-quick/internal/middleware"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CartHandler serves the cart of the authenticated customer.
type CartHandler struct {
	service  *services.CartService
	products *services.ProductService
	validate *validator.Validate
}

func NewCartHandler(service *services.CartService, products *services.ProductService) *CartHandler {
	return &CartHandler{
		service:  service,
		products: products,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGet)
	cartRoutes.Delete("/", h.HandleClear)
	cartRoutes.Post("/items/:productId", h.HandleAdd)
	cartRoutes.Put("/items/:productId", h.HandleSetQuantity)
	cartRoutes.Delete("/items/:productId", h.HandleRemove)
}

type cartLineView struct {
	Product  productView     `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type quantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// HandleGet lists the cart with live prices. The total is informative only;
// checkout recomputes it per company.
func (h *CartHandler) HandleGet(c *fiber.Ctx) error {
	lines, err := h.service.ListWithDetails(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.cartBody(lines))
}

func (h *CartHandler) cartBody(lines []models.CartLine) fiber.Map {
	views := make([]cartLineView, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		views = append(views, cartLineView{
			Product:  newProductView(h.products, l.Product),
			Quantity: l.Quantity,
			Subtotal: l.Subtotal,
		})
		total = total.Add(l.Subtotal)
	}
	return fiber.Map{"items": views, "total": total}
}

func (h *CartHandler) HandleAdd(c *fiber.Ctx) error {
	var req quantityRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	if err := h.service.AddOrIncrement(c.UserContext(), middleware.UserID(c), c.Params("productId"), req.Quantity); err != nil {
		return respondError(c, err)
	}
	return h.HandleGet(c)
}

func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var req quantityRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	if err := h.service.SetQuantity(c.UserContext(), middleware.UserID(c), c.Params("productId"), req.Quantity); err != nil {
		return respondError(c, err)
	}
	return h.HandleGet(c)
}

func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.UserContext(), middleware.UserID(c), c.Params("productId")); err != nil {
		return respondError(c, err)
	}
	return h.HandleGet(c)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
