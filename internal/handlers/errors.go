package handlers

import (
	"errors"
	"fmt"

	"github.com/cardona-dev/bean-quick/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// respondError maps business errors to their HTTP status. Anything else is a
// server fault: it is logged and its detail is not sent to the client.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validation   *apperror.ValidationError
		notFound     *apperror.NotFoundError
		insufficient *apperror.InsufficientStockError
		exceeded     *apperror.StockExceededError
		noItems      *apperror.NoItemsForCompanyError
		transition   *apperror.InvalidTransitionError
		duplicate    *apperror.DuplicateRatingError
		notDelivered *apperror.OrderNotDeliveredError
	)

	switch {
	case errors.As(err, &validation):
		return businessError(c, fiber.StatusBadRequest, "validation_failed", err, fiber.Map{"field": validation.Field})
	case errors.Is(err, apperror.ErrEmptyCart):
		return businessError(c, fiber.StatusBadRequest, "empty_cart", err, nil)
	case errors.As(err, &notFound):
		return businessError(c, fiber.StatusNotFound, "not_found", err, fiber.Map{"entity": notFound.Entity, "id": notFound.ID})
	case errors.As(err, &insufficient):
		return businessError(c, fiber.StatusConflict, "insufficient_stock", err, fiber.Map{
			"product_id":   insufficient.ProductID,
			"product_name": insufficient.ProductName,
			"requested":    insufficient.Requested,
			"available":    insufficient.Available,
		})
	case errors.As(err, &exceeded):
		return businessError(c, fiber.StatusConflict, "stock_exceeded", err, fiber.Map{
			"product_id": exceeded.ProductID,
			"requested":  exceeded.Requested,
			"in_cart":    exceeded.InCart,
			"available":  exceeded.Available,
		})
	case errors.As(err, &transition):
		return businessError(c, fiber.StatusConflict, "invalid_transition", err, fiber.Map{
			"order_id": transition.OrderID,
			"status":   transition.From,
			"target":   transition.To,
		})
	case errors.As(err, &duplicate):
		return businessError(c, fiber.StatusConflict, "duplicate_rating", err, fiber.Map{
			"order_id":   duplicate.OrderID,
			"product_id": duplicate.ProductID,
		})
	case errors.As(err, &noItems):
		return businessError(c, fiber.StatusUnprocessableEntity, "no_items_for_company", err, fiber.Map{"company_id": noItems.CompanyID})
	case errors.As(err, &notDelivered):
		return businessError(c, fiber.StatusForbidden, "order_not_delivered", err, fiber.Map{
			"order_id": notDelivered.OrderID,
			"status":   notDelivered.Status,
		})
	case errors.Is(err, apperror.ErrForbidden):
		return businessError(c, fiber.StatusForbidden, "forbidden", err, nil)
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}

func businessError(c *fiber.Ctx, status int, code string, err error, details fiber.Map) error {
	body := fiber.Map{
		"message": err.Error(),
		"code":    code,
	}
	if details != nil {
		body["details"] = details
	}
	return c.Status(status).JSON(body)
}

// parseBody decodes and validates the request body. On failure it has already
// written the response; callers return the second value.
func parseBody(c *fiber.Ctx, validate *validator.Validate, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, respondError(c, err)
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"code":    "validation_failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}
