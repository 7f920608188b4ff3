package controllers

import (
	"fmt"

	"agro-app/models"
	"agro-app/repositories"
	"agro-app/services"
	"agro-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type SupplyController struct {
	DB        *gorm.DB
	supplies  *repositories.SupplyRepository
	inventory *services.InventoryService
}

func NewSupplyController(db *gorm.DB) *SupplyController {
	return &SupplyController{
		DB:        db,
		supplies:  repositories.NewSupplyRepository(db),
		inventory: services.NewInventoryService(db).WithNotifier(utils.NewLowStockMailer()),
	}
}

func (c *SupplyController) GetSupplies(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	items, err := c.supplies.GetByUser(user.ID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Supplies found",
		"data":    items,
	})
}

func (c *SupplyController) GetSupply(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid supply ID",
		})
	}

	item, err := c.supplies.GetByID(uint(id))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Supply found",
		"data":    item,
	})
}

func (c *SupplyController) CreateSupply(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	var item models.SupplyItem
	if err := ctx.BodyParser(&item); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if err := validator.New().Struct(item); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	item.UserID = user.ID
	item.CompanyID = user.CompanyID
	item.IsActive = true
	item.CreatedBy = int(user.ID)

	if err := c.DB.Create(&item).Error; err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Supply created successfully",
		"data":    item,
	})
}

// UpdateSupply edits catalog fields. QuantityOnHand is owned by the inventory
// service and cannot be set here; stock arrives through ReceiveStock.
func (c *SupplyController) UpdateSupply(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid supply ID",
		})
	}

	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	item, err := c.supplies.GetByID(uint(id))
	if err != nil {
		return respondError(ctx, err)
	}
	if item.UserID != user.ID {
		return respondError(ctx, &services.PermissionError{Message: "you do not have permission to modify this supply"})
	}

	var input struct {
		Name         string            `json:"name"`
		Description  string            `json:"description"`
		Type         models.SupplyType `json:"type"`
		Unit         string            `json:"unit"`
		UnitPrice    float64           `json:"unit_price"`
		MinimumStock float64           `json:"minimum_stock"`
		Supplier     string            `json:"supplier"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}

	if input.Name != "" {
		item.Name = input.Name
	}
	item.Description = input.Description
	if input.Type != "" {
		item.Type = input.Type
	}
	if input.Unit != "" {
		item.Unit = input.Unit
	}
	if input.UnitPrice > 0 {
		item.UnitPrice = input.UnitPrice
	}
	if input.MinimumStock >= 0 {
		item.MinimumStock = input.MinimumStock
	}
	item.Supplier = input.Supplier
	item.UpdatedBy = int(user.ID)

	if err := c.supplies.Save(item); err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Supply updated successfully",
		"data":    item,
	})
}

// ReceiveStock registers a purchase or stock intake. Goes through the
// inventory service so the movement ledger stays complete.
func (c *SupplyController) ReceiveStock(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid supply ID",
		})
	}

	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		Quantity float64 `json:"quantity" validate:"required,gt=0"`
		Reason   string  `json:"reason"`
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

	reason := input.Reason
	if reason == "" {
		reason = "stock received"
	}
	if err := c.inventory.Restore(uint(id), input.Quantity, nil, user.ID, reason); err != nil {
		return respondError(ctx, err)
	}

	item, err := c.supplies.GetByID(uint(id))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Stock received successfully",
		"data":    item,
	})
}

func (c *SupplyController) GetLowStock(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	items, err := c.supplies.GetLowStock(user.ID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Low stock supplies found",
		"data":    items,
	})
}

func (c *SupplyController) GetMovements(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid supply ID",
		})
	}

	if _, err := c.supplies.GetByID(uint(id)); err != nil {
		return respondError(ctx, err)
	}

	movements, err := c.supplies.MovementsBySupply(uint(id))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Movements found",
		"data":    movements,
	})
}

// ExportMovements streams the full stock movement history as an Excel file.
func (c *SupplyController) ExportMovements(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	movements, err := c.supplies.MovementsByUser(user.ID)
	if err != nil {
		return respondError(ctx, err)
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Supply ID")
	f.SetCellValue(sheet, "B1", "Kind")
	f.SetCellValue(sheet, "C1", "Quantity")
	f.SetCellValue(sheet, "D1", "Reason")
	f.SetCellValue(sheet, "E1", "Work Order")
	f.SetCellValue(sheet, "F1", "Date")

	for i, m := range movements {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), m.SupplyItemID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(m.Kind))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), m.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), m.Reason)
		if m.WorkOrderID != nil {
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), *m.WorkOrderID)
		}
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), m.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="stock_movements.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).SendString("Failed to generate Excel")
	}
	return nil
}
