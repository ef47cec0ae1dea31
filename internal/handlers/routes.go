package handlers

import (
	"github.com/cardona-dev/bean-quick/internal/middleware"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	DB         *gorm.DB
	Auth       *services.AuthService
	Companies  *services.CompanyService
	Products   *services.ProductService
	Carts      *services.CartService
	Orders     *services.OrderService
	Ratings    *services.RatingService
	Dashboards *services.DashboardService
}

// Mount registers every route below router, grouped by the role allowed to call it.
func Mount(router fiber.Router, s Services) {
	auth := NewAuthHandler(s.Auth)
	companies := NewCompanyHandler(s.Companies, s.Products)
	products := NewProductHandler(s.Products)
	carts := NewCartHandler(s.Carts, s.Products)
	orders := NewOrderHandler(s.Orders)
	ratings := NewRatingHandler(s.Ratings)
	dashboards := NewDashboardHandler(s.Dashboards)

	// Public routes come first: group middleware below matches by path prefix,
	// so "/company" would otherwise also guard "/companies/requests".
	NewHealthHandler(s.DB).RegisterRoutes(router)
	auth.RegisterRoutes(router)
	companies.RegisterRoutes(router)
	ratings.RegisterRoutes(router)

	authRequired := middleware.AuthRequired(s.Auth)

	client := router.Group("/client", authRequired, middleware.RequireRole(models.RoleCustomer))
	auth.RegisterClientRoutes(client)
	companies.RegisterClientRoutes(client)
	carts.RegisterRoutes(client)
	orders.RegisterClientRoutes(client)
	ratings.RegisterClientRoutes(client)

	company := router.Group("/company", authRequired,
		middleware.RequireRole(models.RoleCompany), middleware.RequireCompany(s.Companies))
	companies.RegisterCompanyRoutes(company)
	products.RegisterRoutes(company)
	orders.RegisterCompanyRoutes(company)
	ratings.RegisterCompanyRoutes(company)
	dashboards.RegisterRoutes(company)

	admin := router.Group("/admin", authRequired, middleware.RequireRole(models.RoleAdmin))
	companies.RegisterAdminRoutes(admin)
}
