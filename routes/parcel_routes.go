package routes

import (
	"agro-app/config"
	"agro-app/controllers"
	"agro-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupParcelRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewParcelController(db)

	api := app.Group(config.MAIN_ROUTES+"/parcels", middleware.AuthMiddleware)
	api.Get("/states", controller.GetStates)
	api.Get("/ready-for-sowing", controller.GetReadyForSowing)
	api.Get("/state/:state", controller.GetByState)
	api.Get("/transitions/export", controller.ExportTransitions)
	api.Post("/transitions/confirm", controller.ConfirmTransition)
	api.Post("/", controller.CreateParcel)
	api.Get("/", controller.GetParcels)
	api.Get("/:id", controller.GetParcel)
	api.Put("/:id", controller.UpdateParcel)
	api.Get("/:id/transitions", controller.GetTransitions)
	api.Post("/:id/transitions/propose", controller.ProposeTransition)
}
