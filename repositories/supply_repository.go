package repositories

import (
	"agro-app/models"

	"gorm.io/gorm"
)

type SupplyRepository struct {
	db *gorm.DB
}

func NewSupplyRepository(db *gorm.DB) *SupplyRepository {
	return &SupplyRepository{db}
}

func (r *SupplyRepository) GetByID(id uint) (*models.SupplyItem, error) {
	var item models.SupplyItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *SupplyRepository) GetByUser(userID uint) ([]models.SupplyItem, error) {
	var items []models.SupplyItem
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).Order("name").Find(&items).Error
	return items, err
}

// GetLowStock lists active supplies at or below their minimum-stock
// threshold.
func (r *SupplyRepository) GetLowStock(userID uint) ([]models.SupplyItem, error) {
	var items []models.SupplyItem
	err := r.db.
		Where("user_id = ? AND is_active = ? AND minimum_stock > 0 AND quantity_on_hand < minimum_stock", userID, true).
		Order("name").
		Find(&items).Error
	return items, err
}

func (r *SupplyRepository) Save(item *models.SupplyItem) error {
	return r.db.Save(item).Error
}

// MovementsBySupply returns the audit trail of one supply, newest first.
func (r *SupplyRepository) MovementsBySupply(supplyID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.Where("supply_item_id = ?", supplyID).Order("created_at DESC").Find(&movements).Error
	return movements, err
}

// MovementsByWorkOrder returns every movement a work order caused.
func (r *SupplyRepository) MovementsByWorkOrder(workOrderID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.Where("work_order_id = ?", workOrderID).Order("created_at").Find(&movements).Error
	return movements, err
}

// MovementsByUser returns the full movement history over the user's
// supplies, newest first, for the Excel export.
func (r *SupplyRepository) MovementsByUser(userID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.
		Joins("JOIN supply_items ON supply_items.id = stock_movements.supply_item_id").
		Where("supply_items.user_id = ?", userID).
		Order("stock_movements.created_at DESC").
		Find(&movements).Error
	return movements, err
}
