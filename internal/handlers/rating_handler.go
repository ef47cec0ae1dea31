package handlers

import (
	"github.com/cardona-dev/bean-quick/internal/middleware"
	"github.com/cardona-dev/bean-quick/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type RatingHandler struct {
	service  *services.RatingService
	validate *validator.Validate
}

func NewRatingHandler(service *services.RatingService) *RatingHandler {
	return &RatingHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public product reviews.
func (h *RatingHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products/:id/ratings", h.HandleListByProduct)
}

func (h *RatingHandler) RegisterClientRoutes(router fiber.Router) {
	ratingRoutes := router.Group("/ratings")
	ratingRoutes.Get("/", h.HandleListByCustomer)
	ratingRoutes.Post("/", h.HandleRate)
	ratingRoutes.Put("/:id", h.HandleUpdate)
	ratingRoutes.Delete("/:id", h.HandleDelete)
}

func (h *RatingHandler) RegisterCompanyRoutes(router fiber.Router) {
	router.Get("/ratings", h.HandleListByCompany)
}

type rateRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Stars     int    `json:"stars"`
	Comment   string `json:"comment"`
}

type reviewRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

func (h *RatingHandler) HandleRate(c *fiber.Ctx) error {
	var req rateRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	rating, err := h.service.Rate(c.UserContext(), middleware.UserID(c), services.RateInput{
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		Stars:     req.Stars,
		Comment:   req.Comment,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rating)
}

func (h *RatingHandler) HandleUpdate(c *fiber.Ctx) error {
	var req reviewRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	rating, err := h.service.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Stars, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rating)
}

func (h *RatingHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RatingHandler) HandleListByProduct(c *fiber.Ctx) error {
	ratings, err := h.service.ListByProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ratings)
}

func (h *RatingHandler) HandleListByCustomer(c *fiber.Ctx) error {
	ratings, err := h.service.ListByCustomer(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ratings)
}

func (h *RatingHandler) HandleListByCompany(c *fiber.Ctx) error {
	ratings, err := h.service.ListByCompany(c.UserContext(), middleware.CompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ratings)
}
