package migration

import (
	"agro-app/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Company{},
		&models.UserCompanyRole{},

		&models.Parcel{},
		&models.TransitionRecord{},

		&models.WorkOrder{},
		&models.WorkOrderSupply{},
		&models.WorkOrderMachinery{},
		&models.WorkOrderLabor{},

		&models.SupplyItem{},
		&models.StockMovement{},
	)
}
