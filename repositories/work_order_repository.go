package repositories

import (
	"agro-app/models"

	"gorm.io/gorm"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db}
}

func (r *WorkOrderRepository) GetByID(id uint) (*models.WorkOrder, error) {
	var order models.WorkOrder
	err := r.db.
		Preload("Supplies").
		Preload("Machinery").
		Preload("ManualLabor").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *WorkOrderRepository) GetByParcel(parcelID uint) ([]models.WorkOrder, error) {
	var orders []models.WorkOrder
	err := r.db.
		Preload("Supplies").
		Where("parcel_id = ? AND is_active = ?", parcelID, true).
		Order("start_date DESC").
		Find(&orders).Error
	return orders, err
}

func (r *WorkOrderRepository) GetByUser(userID uint) ([]models.WorkOrder, error) {
	var orders []models.WorkOrder
	err := r.db.
		Preload("Supplies").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("start_date DESC").
		Find(&orders).Error
	return orders, err
}

// No Save here: work order writes go through the work order service so the
// stock ledger and automatic transitions stay in sync.
