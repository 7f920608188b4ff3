package routes

import (
	"agro-app/config"
	"agro-app/controllers"
	"agro-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupSupplyRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewSupplyController(db)

	api := app.Group(config.MAIN_ROUTES+"/supplies", middleware.AuthMiddleware)
	api.Get("/low-stock", controller.GetLowStock)
	api.Get("/movements/export", controller.ExportMovements)
	api.Post("/", controller.CreateSupply)
	api.Get("/", controller.GetSupplies)
	api.Get("/:id", controller.GetSupply)
	api.Put("/:id", controller.UpdateSupply)
	api.Post("/:id/receive", controller.ReceiveStock)
	api.Get("/:id/movements", controller.GetMovements)
}
