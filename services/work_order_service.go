package services

import (
	"errors"
	"fmt"
	"time"

	"agro-app/models"

	"gorm.io/gorm"
)

// WorkOrderService is the entry point for recording field work. Creating or
// editing a work order drives the inventory consumption engine for its supply
// line items and the automatic transition evaluator for its parcel, all
// within one transaction.
type WorkOrderService struct {
	db        *gorm.DB
	perms     *PermissionService
	inventory *InventoryService
	auto      *AutoTransitionService
}

func NewWorkOrderService(db *gorm.DB, perms *PermissionService, inventory *InventoryService, auto *AutoTransitionService) *WorkOrderService {
	return &WorkOrderService{db: db, perms: perms, inventory: inventory, auto: auto}
}

// Create persists the work order with its line items, deducts consumed
// supplies and evaluates automatic transitions when the order is completed.
func (s *WorkOrderService) Create(order *models.WorkOrder, actor *models.User) (*models.WorkOrder, error) {
	var parcel models.Parcel
	if err := s.db.First(&parcel, order.ParcelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "parcel", ID: order.ParcelID}
		}
		return nil, err
	}

	if !s.perms.HasParcelAccess(actor, &parcel) {
		return nil, &PermissionError{Message: "you do not have permission to record work orders on this parcel"}
	}
	if role := s.perms.roles.EffectiveRole(actor, &parcel); !CanRecordWork(role) {
		return nil, &PermissionError{Message: fmt.Sprintf("role %s cannot record work orders", role)}
	}

	order.UserID = actor.ID
	order.IsActive = true
	if order.Status == "" {
		order.Status = models.WorkOrderPlanned
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.priceSupplyLines(tx, order.Supplies); err != nil {
			return err
		}
		order.TotalCost = totalCost(order)

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, line := range order.Supplies {
			reason := "used in work order: " + order.Description
			if err := s.inventory.DeductTx(tx, line.SupplyItemID, line.QuantityUsed, order, actor.ID, reason); err != nil {
				return err
			}
		}

		_, err := s.auto.EvaluateAndApply(tx, &parcel, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Update edits a work order. Supply line items are reconciled against the
// previous version so the stock ledger reflects only the latest edit; the
// whole operation rolls back if any deduction lacks stock.
func (s *WorkOrderService) Update(id uint, updated *models.WorkOrder, actor *models.User) (*models.WorkOrder, error) {
	var order models.WorkOrder

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Supplies").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "work order", ID: id}
			}
			return err
		}
		if !order.IsActive {
			return &PermissionError{Message: "work order is no longer active"}
		}

		var parcel models.Parcel
		if err := tx.First(&parcel, order.ParcelID).Error; err != nil {
			return err
		}
		if !s.perms.HasParcelAccess(actor, &parcel) {
			return &PermissionError{Message: "you do not have permission to modify this work order"}
		}

		if err := s.priceSupplyLines(tx, updated.Supplies); err != nil {
			return err
		}
		if err := s.inventory.ReconcileEditTx(tx, order.ID, order.Supplies, updated.Supplies, actor.ID); err != nil {
			return err
		}

		// Replace line items with the edited set.
		if err := tx.Where("work_order_id = ?", order.ID).Delete(&models.WorkOrderSupply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_order_id = ?", order.ID).Delete(&models.WorkOrderMachinery{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_order_id = ?", order.ID).Delete(&models.WorkOrderLabor{}).Error; err != nil {
			return err
		}

		order.Kind = updated.Kind
		order.Description = updated.Description
		order.StartDate = updated.StartDate
		order.EndDate = updated.EndDate
		order.Status = updated.Status
		order.Responsible = updated.Responsible
		order.Notes = updated.Notes
		order.Supplies = reparent(updated.Supplies, order.ID)
		order.Machinery = reparentMachinery(updated.Machinery, order.ID)
		order.ManualLabor = reparentLabor(updated.ManualLabor, order.ID)
		order.TotalCost = totalCost(&order)
		order.UpdatedBy = int(actor.ID)

		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		_, err := s.auto.EvaluateAndApply(tx, &parcel, &order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete cancels a planned work order, restoring its supplies. Orders already
// in progress or completed require the formal annulment flow.
func (s *WorkOrderService) Delete(id uint, actor *models.User) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.WorkOrder
		if err := tx.Preload("Supplies").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "work order", ID: id}
			}
			return err
		}
		if !order.IsActive {
			return &PermissionError{Message: "work order is already deleted"}
		}

		var parcel models.Parcel
		if err := tx.First(&parcel, order.ParcelID).Error; err != nil {
			return err
		}
		if !s.perms.HasParcelAccess(actor, &parcel) {
			return &PermissionError{Message: "you do not have permission to delete this work order"}
		}
		if role := s.perms.roles.EffectiveRole(actor, &parcel); role == models.RoleOperator && order.UserID != actor.ID {
			return &PermissionError{Message: "operators can only delete their own work orders"}
		}

		switch {
		case order.IsPlanned():
			for _, line := range order.Supplies {
				if err := s.inventory.RestoreTx(tx, line.SupplyItemID, line.QuantityUsed, &order, actor.ID, "cancellation of planned work order"); err != nil {
					return err
				}
			}
			order.Status = models.WorkOrderCancelled
			order.IsActive = false
			return tx.Save(&order).Error

		case order.RequiresFormalAnnulment():
			return &PermissionError{Message: fmt.Sprintf(
				"work order is %s and requires formal annulment with a justification", order.Status)}

		default:
			order.IsActive = false
			return tx.Save(&order).Error
		}
	})
}

// Annul voids an executed work order. Administrators only, justification
// mandatory; supply restoration is optional because consumed product may not
// be recoverable.
func (s *WorkOrderService) Annul(id uint, justification string, restoreSupplies bool, actor *models.User) error {
	if justification == "" {
		return &PermissionError{Message: "a justification is required to annul a work order"}
	}
	if len(justification) > 1000 {
		return &PermissionError{Message: "the justification cannot exceed 1000 characters"}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.WorkOrder
		if err := tx.Preload("Supplies").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "work order", ID: id}
			}
			return err
		}
		if !order.IsActive {
			return &PermissionError{Message: "work order is already deleted or annulled"}
		}

		var parcel models.Parcel
		if err := tx.First(&parcel, order.ParcelID).Error; err != nil {
			return err
		}
		role := s.perms.roles.EffectiveRole(actor, &parcel)
		if role != models.RoleAdmin && role != models.RoleSuperAdmin {
			return &PermissionError{Message: "only administrators can annul executed work orders"}
		}
		if !s.perms.HasParcelAccess(actor, &parcel) {
			return &PermissionError{Message: "you do not have permission to annul this work order"}
		}

		if restoreSupplies {
			for _, line := range order.Supplies {
				if err := s.inventory.RestoreTx(tx, line.SupplyItemID, line.QuantityUsed, &order, actor.ID, "work order annulment: "+justification); err != nil {
					return err
				}
			}
		}

		now := time.Now()
		actorID := actor.ID
		order.Status = models.WorkOrderAnnulled
		order.IsActive = false
		order.AnnulReason = justification
		order.AnnulledAt = &now
		order.AnnulledBy = &actorID
		return tx.Save(&order).Error
	})
}

// priceSupplyLines fills unit costs from the supply catalog when the caller
// did not provide them.
func (s *WorkOrderService) priceSupplyLines(tx *gorm.DB, lines []models.WorkOrderSupply) error {
	for i := range lines {
		if lines[i].UnitCost == 0 {
			item, err := loadSupply(tx, lines[i].SupplyItemID)
			if err != nil {
				return err
			}
			lines[i].UnitCost = item.UnitPrice
		}
		lines[i].TotalCost = lines[i].UnitCost * lines[i].QuantityUsed
	}
	return nil
}

func totalCost(order *models.WorkOrder) float64 {
	var total float64
	for _, line := range order.Supplies {
		total += line.TotalCost
	}
	for _, m := range order.Machinery {
		total += m.Cost
	}
	for _, l := range order.ManualLabor {
		total += l.TotalCost
	}
	return total
}

func reparent(lines []models.WorkOrderSupply, orderID uint) []models.WorkOrderSupply {
	for i := range lines {
		lines[i].ID = 0
		lines[i].WorkOrderID = orderID
	}
	return lines
}

func reparentMachinery(lines []models.WorkOrderMachinery, orderID uint) []models.WorkOrderMachinery {
	for i := range lines {
		lines[i].ID = 0
		lines[i].WorkOrderID = orderID
	}
	return lines
}

func reparentLabor(lines []models.WorkOrderLabor, orderID uint) []models.WorkOrderLabor {
	for i := range lines {
		lines[i].ID = 0
		lines[i].WorkOrderID = orderID
	}
	return lines
}
