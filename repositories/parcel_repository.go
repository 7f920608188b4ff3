package repositories

import (
	"agro-app/models"

	"gorm.io/gorm"
)

type ParcelRepository struct {
	db *gorm.DB
}

func NewParcelRepository(db *gorm.DB) *ParcelRepository {
	return &ParcelRepository{db}
}

func (r *ParcelRepository) GetByID(id uint) (*models.Parcel, error) {
	var parcel models.Parcel
	if err := r.db.First(&parcel, id).Error; err != nil {
		return nil, err
	}
	return &parcel, nil
}

func (r *ParcelRepository) GetByUser(userID uint) ([]models.Parcel, error) {
	var parcels []models.Parcel
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&parcels).Error
	return parcels, err
}

func (r *ParcelRepository) GetByState(state models.LifecycleState) ([]models.Parcel, error) {
	var parcels []models.Parcel
	err := r.db.Where("state = ? AND is_active = ?", state, true).Find(&parcels).Error
	return parcels, err
}

// GetReadyForSowing lists parcels a sowing work order can start on.
func (r *ParcelRepository) GetReadyForSowing() ([]models.Parcel, error) {
	var parcels []models.Parcel
	err := r.db.Where("state IN ? AND is_active = ?",
		[]models.LifecycleState{models.StateAvailable, models.StatePrepared}, true).
		Find(&parcels).Error
	return parcels, err
}

func (r *ParcelRepository) Save(parcel *models.Parcel) error {
	return r.db.Save(parcel).Error
}

// Transitions returns the append-only state change history, newest first.
func (r *ParcelRepository) Transitions(parcelID uint) ([]models.TransitionRecord, error) {
	var records []models.TransitionRecord
	err := r.db.Where("parcel_id = ?", parcelID).Order("created_at DESC").Find(&records).Error
	return records, err
}

// AllTransitions returns every transition for the given user's parcels,
// newest first, for the history export.
func (r *ParcelRepository) AllTransitions(userID uint) ([]models.TransitionRecord, error) {
	var records []models.TransitionRecord
	err := r.db.
		Joins("JOIN parcels ON parcels.id = transition_records.parcel_id").
		Where("parcels.user_id = ?", userID).
		Order("transition_records.created_at DESC").
		Find(&records).Error
	return records, err
}
