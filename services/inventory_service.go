package services

import (
	"errors"
	"sort"

	"agro-app/models"

	"gorm.io/gorm"
)

// LowStockNotifier is told when a deduction leaves a supply below its
// minimum-stock threshold.
type LowStockNotifier interface {
	NotifyLowStock(item *models.SupplyItem)
}

// InventoryService owns every change to SupplyItem.QuantityOnHand. Each
// deduction or restoration appends exactly one StockMovement; movements are
// never updated or deleted afterwards. Reads and writes of a supply happen
// inside one transaction, relying on the store's isolation to serialize
// concurrent deductions.
type InventoryService struct {
	db       *gorm.DB
	notifier LowStockNotifier
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// WithNotifier attaches the low-stock alert hook.
func (s *InventoryService) WithNotifier(n LowStockNotifier) *InventoryService {
	s.notifier = n
	return s
}

// Deduct removes quantity from a supply and appends an OUT movement
// referencing the work order. Fails with InsufficientStockError before any
// write when stock would go negative.
func (s *InventoryService) Deduct(supplyID uint, quantity float64, order *models.WorkOrder, actorID uint, reason string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.DeductTx(tx, supplyID, quantity, order, actorID, reason)
	})
}

// Restore adds quantity back to a supply and appends an IN movement.
func (s *InventoryService) Restore(supplyID uint, quantity float64, order *models.WorkOrder, actorID uint, reason string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.RestoreTx(tx, supplyID, quantity, order, actorID, reason)
	})
}

// DeductTx is Deduct inside an existing transaction, for callers that bundle
// the deduction with other writes (work order creation and edits).
func (s *InventoryService) DeductTx(tx *gorm.DB, supplyID uint, quantity float64, order *models.WorkOrder, actorID uint, reason string) error {
	item, err := loadSupply(tx, supplyID)
	if err != nil {
		return err
	}

	if item.QuantityOnHand < quantity {
		return &InsufficientStockError{
			SupplyName: item.Name,
			Available:  item.QuantityOnHand,
			Required:   quantity,
		}
	}

	item.QuantityOnHand -= quantity
	if err := tx.Save(item).Error; err != nil {
		return err
	}
	if err := appendMovement(tx, item, order, models.MovementOut, quantity, reason, actorID); err != nil {
		return err
	}

	if s.notifier != nil && item.BelowMinimum() {
		s.notifier.NotifyLowStock(item)
	}
	return nil
}

// RestoreTx is Restore inside an existing transaction.
func (s *InventoryService) RestoreTx(tx *gorm.DB, supplyID uint, quantity float64, order *models.WorkOrder, actorID uint, reason string) error {
	item, err := loadSupply(tx, supplyID)
	if err != nil {
		return err
	}

	item.QuantityOnHand += quantity
	if err := tx.Save(item).Error; err != nil {
		return err
	}
	return appendMovement(tx, item, order, models.MovementIn, quantity, reason, actorID)
}

// ReconcileEdit adjusts stock when a work order's supply line items change,
// so the net effect reflects only the latest version. It computes the
// per-supply delta between the old and new sets and applies it in a single
// transaction: identical sets touch nothing, and an insufficient-stock
// failure rolls back the whole edit.
func (s *InventoryService) ReconcileEdit(workOrderID uint, oldItems, newItems []models.WorkOrderSupply, actorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.ReconcileEditTx(tx, workOrderID, oldItems, newItems, actorID)
	})
}

// ReconcileEditTx is ReconcileEdit inside an existing transaction.
func (s *InventoryService) ReconcileEditTx(tx *gorm.DB, workOrderID uint, oldItems, newItems []models.WorkOrderSupply, actorID uint) error {
	var order models.WorkOrder
	if err := tx.First(&order, workOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "work order", ID: workOrderID}
		}
		return err
	}

	deltas := map[uint]float64{}
	for _, item := range newItems {
		deltas[item.SupplyItemID] += item.QuantityUsed
	}
	for _, item := range oldItems {
		deltas[item.SupplyItemID] -= item.QuantityUsed
	}

	ids := make([]uint, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		delta := deltas[id]
		switch {
		case delta > 0:
			if err := s.DeductTx(tx, id, delta, &order, actorID, "work order edit adjustment: "+order.Description); err != nil {
				return err
			}
		case delta < 0:
			if err := s.RestoreTx(tx, id, -delta, &order, actorID, "work order edit adjustment: "+order.Description); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadSupply(tx *gorm.DB, supplyID uint) (*models.SupplyItem, error) {
	var item models.SupplyItem
	if err := tx.First(&item, supplyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "supply item", ID: supplyID}
		}
		return nil, err
	}
	return &item, nil
}

func appendMovement(tx *gorm.DB, item *models.SupplyItem, order *models.WorkOrder, kind models.MovementKind, quantity float64, reason string, actorID uint) error {
	movement := models.StockMovement{
		SupplyItemID: item.ID,
		Kind:         kind,
		Quantity:     quantity,
		Reason:       reason,
		UserID:       actorID,
	}
	if order != nil {
		orderID := order.ID
		movement.WorkOrderID = &orderID
	}
	return tx.Create(&movement).Error
}
