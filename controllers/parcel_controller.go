package controllers

import (
	"fmt"

	"agro-app/models"
	"agro-app/repositories"
	"agro-app/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ParcelController struct {
	DB        *gorm.DB
	lifecycle *services.LifecycleService
	parcels   *repositories.ParcelRepository
}

func NewParcelController(db *gorm.DB) *ParcelController {
	users := repositories.NewUserRepository(db)
	perms := services.NewPermissionService(users, users)
	return &ParcelController{
		DB:        db,
		lifecycle: services.NewLifecycleService(db, perms),
		parcels:   repositories.NewParcelRepository(db),
	}
}

func (c *ParcelController) GetParcels(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	parcels, err := c.parcels.GetByUser(user.ID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Parcels found",
		"data":    parcels,
	})
}

func (c *ParcelController) GetParcel(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid parcel ID",
		})
	}

	parcel, err := c.parcels.GetByID(uint(id))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Parcel found",
		"data": fiber.Map{
			"parcel":        parcel,
			"valid_targets": services.ValidTargets(parcel.State),
			"terminal":      services.IsTerminalState(parcel.State),
		},
	})
}

func (c *ParcelController) CreateParcel(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	var parcel models.Parcel
	if err := ctx.BodyParser(&parcel); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if err := validator.New().Struct(parcel); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	// New parcels always begin available; the state machine owns every
	// change after this point.
	parcel.State = models.StateAvailable
	parcel.UserID = user.ID
	parcel.CompanyID = user.CompanyID
	parcel.IsActive = true
	parcel.CreatedBy = int(user.ID)

	if err := c.DB.Create(&parcel).Error; err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Parcel created successfully",
		"data":    parcel,
	})
}

// UpdateParcel edits descriptive fields only. State and its audit fields are
// untouchable here.
func (c *ParcelController) UpdateParcel(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid parcel ID",
		})
	}

	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	parcel, err := c.parcels.GetByID(uint(id))
	if err != nil {
		return respondError(ctx, err)
	}
	if parcel.UserID != user.ID {
		return respondError(ctx, &services.PermissionError{Message: "you do not have permission to modify this parcel"})
	}

	var input struct {
		Name                string  `json:"name"`
		Description         string  `json:"description"`
		AreaHectares        float64 `json:"area_hectares"`
		CurrentCrop         string  `json:"current_crop"`
		ExpectedYield       float64 `json:"expected_yield"`
		ActualYield         float64 `json:"actual_yield"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}

	if input.Name != "" {
		parcel.Name = input.Name
	}
	parcel.Description = input.Description
	if input.AreaHectares > 0 {
		parcel.AreaHectares = input.AreaHectares
	}
	parcel.CurrentCrop = input.CurrentCrop
	if input.ExpectedYield > 0 {
		parcel.ExpectedYield = input.ExpectedYield
	}
	if input.ActualYield > 0 {
		parcel.ActualYield = input.ActualYield
	}
	parcel.UpdatedBy = int(user.ID)

	if err := c.parcels.Save(parcel); err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Parcel updated successfully",
		"data":    parcel,
	})
}

// GetStates returns the lifecycle catalog so clients can render the state
// machine without hardcoding it.
func (c *ParcelController) GetStates(ctx *fiber.Ctx) error {
	states := make([]fiber.Map, 0, len(models.AllLifecycleStates))
	for _, state := range models.AllLifecycleStates {
		states = append(states, fiber.Map{
			"value":         state,
			"description":   state.Description(),
			"valid_targets": services.ValidTargets(state),
			"terminal":      services.IsTerminalState(state),
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "States found",
		"data":    states,
	})
}

// GetReadyForSowing lists parcels a sowing work order can start on.
func (c *ParcelController) GetReadyForSowing(ctx *fiber.Ctx) error {
	parcels, err := c.parcels.GetReadyForSowing()
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Parcels found",
		"data":    parcels,
	})
}

func (c *ParcelController) GetByState(ctx *fiber.Ctx) error {
	state := models.LifecycleState(ctx.Params("state"))
	if !state.Valid() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Unknown state '%s'", state),
		})
	}

	parcels, err := c.parcels.GetByState(state)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Parcels found",
		"data":    parcels,
	})
}

func (c *ParcelController) GetTransitions(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid parcel ID",
		})
	}

	if _, err := c.parcels.GetByID(uint(id)); err != nil {
		return respondError(ctx, err)
	}

	records, err := c.parcels.Transitions(uint(id))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Transitions found",
		"data":    records,
	})
}

// ProposeTransition runs the first phase of the two-step state change. A
// rejection (bad permission or invalid move) still returns 200: the proposal
// itself explains why it cannot be confirmed.
func (c *ParcelController) ProposeTransition(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid parcel ID",
		})
	}

	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	var input struct {
		TargetState models.LifecycleState `json:"target_state" validate:"required"`
		Reason      string                `json:"reason"`
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
	if !input.TargetState.Valid() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Unknown state '%s'", input.TargetState),
		})
	}

	proposal, err := c.lifecycle.Propose(uint(id), input.TargetState, input.Reason, user)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": proposal.Message,
		"data":    proposal,
	})
}

// ConfirmTransition runs the second phase. Declining is not an error: nothing
// changes and the response says so.
func (c *ParcelController) ConfirmTransition(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	var conf services.TransitionConfirmation
	if err := ctx.BodyParser(&conf); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}
	if err := validator.New().Struct(conf); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	applied, err := c.lifecycle.Confirm(conf, user)
	if err != nil {
		return respondError(ctx, err)
	}

	if !applied {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"message": "State change cancelled, the parcel was not modified",
		})
	}

	parcel, err := c.parcels.GetByID(conf.ParcelID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Parcel '%s' is now '%s'", parcel.Name, parcel.State.Description()),
		"data":    parcel,
	})
}

// ExportTransitions streams the transition history of the user's parcels as
// an Excel file.
func (c *ParcelController) ExportTransitions(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx, c.DB)
	if err != nil {
		return respondError(ctx, err)
	}

	records, err := c.parcels.AllTransitions(user.ID)
	if err != nil {
		return respondError(ctx, err)
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Parcel ID")
	f.SetCellValue(sheet, "B1", "From")
	f.SetCellValue(sheet, "C1", "To")
	f.SetCellValue(sheet, "D1", "Reason")
	f.SetCellValue(sheet, "E1", "Automatic")
	f.SetCellValue(sheet, "F1", "Work Order")
	f.SetCellValue(sheet, "G1", "Date")

	for i, r := range records {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.ParcelID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(r.FromState))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(r.ToState))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Reason)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Automatic)
		if r.WorkOrderID != nil {
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), *r.WorkOrderID)
		}
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="parcel_transitions.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).SendString("Failed to generate Excel")
	}
	return nil
}
