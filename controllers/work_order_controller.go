package controllers

import (
	"agro-app/models"
	"agro-app/repositories"
	"agro-app/services"
	"agro-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WorkOrderController struct {
	DB       *gorm.DB
	service  *services.WorkOrderService
	orders   *repositories.WorkOrderRepository
	supplies *repositories.SupplyRepository
}

func NewWorkOrderController(db *gorm.DB) *WorkOrderController {
	users := repositories.NewUserRepository(db)
	perms := services.NewPermissionService(users, users)
	inventory := services.NewInventoryService(db).WithNotifier(utils.NewLowStockMailer())
	auto := services.NewAutoTransitionService(db)
	return &WorkOrderController{
		DB:       db,
		service:  services.NewWorkOrderService(db, perms, inventory, auto),
		orders:   repositories.NewWorkOrderRepository(db),
		supplies: repositories.NewSupplyRepository(db),
	}
}

func (c *WorkOrderController) GetWorkOrders(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	orders, err := c.orders.GetByUser(user.ID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Work orders found",
		"data":    orders,
	})
}

func (c *WorkOrderController) GetWorkOrder(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid work order ID",
		})
	}

	order, err := c.orders.GetByID(uint(id))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Work order found",
		"data":    order,
	})
}

// GetMovements lists the stock movements a work order caused, so edits and
// annulments can be audited against the ledger.
func (c *WorkOrderController) GetMovements(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid work order ID",
		})
	}

	if _, err := c.orders.GetByID(uint(id)); err != nil {
		return respondError(ctx, err)
	}

	movements, err := c.supplies.MovementsByWorkOrder(uint(id))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Movements found",
		"data":    movements,
	})
}

func (c *WorkOrderController) GetByParcel(ctx *fiber.Ctx) error {
	parcelID, err := ctx.ParamsInt("parcelId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid parcel ID",
		})
	}

	orders, err := c.orders.GetByParcel(uint(parcelID))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Work orders found",
		"data":    orders,
	})
}

// CreateWorkOrder records field work. Completed orders deduct supply stock
// and may move the parcel forward automatically; the response carries the
// parcel so clients can show the state that resulted.
func (c *WorkOrderController) CreateWorkOrder(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	var order models.WorkOrder
	if err := ctx.BodyParser(&order); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if err := validator.New().Struct(order); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	created, err := c.service.Create(&order, user)
	if err != nil {
		return respondError(ctx, err)
	}

	var parcel models.Parcel
	if err := c.DB.First(&parcel, created.ParcelID).Error; err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Work order created successfully",
		"data": fiber.Map{
			"work_order":   created,
			"parcel_state": parcel.State,
		},
	})
}

func (c *WorkOrderController) UpdateWorkOrder(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid work order ID",
		})
	}

	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	var input models.WorkOrder
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}

	updated, err := c.service.Update(uint(id), &input, user)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Work order updated successfully",
		"data":    updated,
	})
}

func (c *WorkOrderController) DeleteWorkOrder(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid work order ID",
		})
	}

	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := c.service.Delete(uint(id), user); err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Work order deleted successfully",
	})
}

// AnnulWorkOrder voids an executed work order with a mandatory justification.
func (c *WorkOrderController) AnnulWorkOrder(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid work order ID",
		})
	}

	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		Justification   string `json:"justification" validate:"required,max=1000"`
		RestoreSupplies bool   `json:"restore_supplies"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if err := validator.New().Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if err := c.service.Annul(uint(id), input.Justification, input.RestoreSupplies, user); err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Work order annulled successfully",
	})
}
