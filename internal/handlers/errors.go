package handlers

import (
	"errors"
	"log"
	"net/http"

	"storefront/internal/common"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

// sendServiceError maps catalog and account service errors onto the error envelope
func sendServiceError(c echo.Context, action string, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return common.SendValidationError(c, validationErr.Field, validationErr.Message)
	case errors.Is(err, services.ErrProductNotFound):
		return common.SendNotFoundError(c, "Product")
	case errors.Is(err, services.ErrCategoryNotFound):
		return common.SendNotFoundError(c, "Category")
	case errors.Is(err, services.ErrUserNotFound):
		return common.SendNotFoundError(c, "User")
	case errors.Is(err, services.ErrCategoryExists),
		errors.Is(err, services.ErrProductInUse),
		errors.Is(err, services.ErrEmailTaken):
		return common.SendConflictError(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrForbidden):
		return common.SendForbiddenError(c)
	default:
		log.Printf("ERROR: %s: %v", action, err)
		return common.SendServerError(c, "Failed to "+action)
	}
}
