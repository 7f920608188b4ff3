package routes

import (
	"agro-app/config"
	"agro-app/controllers"
	"agro-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewAuthController(db)

	api := app.Group(config.MAIN_ROUTES + "/auth")
	api.Post("/login", controller.Login)
	api.Post("/register", controller.Register)
	api.Get("/me", middleware.AuthMiddleware, controller.Me)
}
