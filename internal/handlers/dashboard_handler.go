package handlers

import (
	"github.com/cardona-dev/bean-quick/internal/middleware"
	"github.com/cardona-dev/bean-quick/internal/services"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleSummary)
}

// HandleSummary returns the sales and rating figures of the caller's company.
func (h *DashboardHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), middleware.CompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
