package routes

import (
	"agro-app/config"
	"agro-app/controllers"
	"agro-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupWorkOrderRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewWorkOrderController(db)

	api := app.Group(config.MAIN_ROUTES+"/work-orders", middleware.AuthMiddleware)
	api.Get("/parcel/:parcelId", controller.GetByParcel)
	api.Post("/", controller.CreateWorkOrder)
	api.Get("/", controller.GetWorkOrders)
	api.Get("/:id", controller.GetWorkOrder)
	api.Put("/:id", controller.UpdateWorkOrder)
	api.Delete("/:id", controller.DeleteWorkOrder)
	api.Post("/:id/annul", controller.AnnulWorkOrder)
	api.Get("/:id/movements", controller.GetMovements)
}
