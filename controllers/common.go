package controllers

import (
	"errors"

	"agro-app/models"
	"agro-app/repositories"
	"agro-app/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// currentUser loads the authenticated user from the userID the auth
// middleware stored in the context.
func currentUser(ctx *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	userID, ok := ctx.Locals("userID").(float64)
	if !ok {
		return nil, errors.New("missing user in context")
	}
	return repositories.NewUserRepository(db).GetByID(uint(userID))
}

// respondError maps domain errors to HTTP responses. Insufficient stock
// carries the exact shortfall so the operator can correct the quantity; other
// hard failures render generic messages.
func respondError(ctx *fiber.Ctx, err error) error {
	var notFound *services.NotFoundError
	if errors.As(err, &notFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	var permission *services.PermissionError
	if errors.As(err, &permission) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": permission.Message,
		})
	}

	var insufficient *services.InsufficientStockError
	if errors.As(err, &insufficient) {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": insufficient.Error(),
			"data": fiber.Map{
				"supply_name": insufficient.SupplyName,
				"available":   insufficient.Available,
				"required":    insufficient.Required,
			},
		})
	}

	var stale *services.StaleConfirmationError
	if errors.As(err, &stale) {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": stale.Error(),
		})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Operation failed",
		"error":   err.Error(),
	})
}
