package middleware

import (
	"strings"

	"github.com/cardona-dev/bean-quick/internal/apperror"
	"github.com/cardona-dev/bean-quick/internal/models"
	"github.com/cardona-dev/bean-quick/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	localUserID    = "user_id"
	localUserName  = "user_name"
	localRole      = "role"
	localCompanyID = "company_id"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localUserName, claims.Name)
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

// RequireRole lets through only users holding one of roles. Must run after AuthRequired.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You are not allowed to access this resource",
			"code":    "forbidden",
		})
	}
}

// RequireCompany resolves the approved company owned by the caller and stores its id.
func RequireCompany(companies *services.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		company, err := companies.GetForOwner(c.UserContext(), UserID(c))
		if err != nil {
			if apperror.IsNotFound(err, "") {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"message": "No company is registered for this account",
					"code":    "forbidden",
				})
			}
			log.Error().Err(err).Str("user_id", UserID(c)).Msg("failed to resolve company")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "internal server error",
			})
		}
		if !company.Approved() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Company is awaiting approval",
				"code":    "forbidden",
				"details": fiber.Map{"status": company.Status},
			})
		}
		c.Locals(localCompanyID, company.ID)
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func Role(c *fiber.Ctx) models.Role {
	role, _ := c.Locals(localRole).(models.Role)
	return role
}

// CompanyID returns the company resolved by RequireCompany.
func CompanyID(c *fiber.Ctx) string {
	id, _ := c.Locals(localCompanyID).(string)
	return id
}
