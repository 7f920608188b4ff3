package services

import (
	"fmt"
	"testing"
	"time"

	"agro-app/controllers/idgen"
	"agro-app/models"
	"agro-app/repositories"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	idgen.Init()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
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
	))
	return db
}

func newPermissionService(db *gorm.DB) *PermissionService {
	users := repositories.NewUserRepository(db)
	return NewPermissionService(users, users)
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.RoleName) *models.User {
	t.Helper()
	user := &models.User{
		Username: name,
		Name:     name,
		Email:    name + "@test.local",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createParcel(t *testing.T, db *gorm.DB, owner *models.User, state models.LifecycleState) *models.Parcel {
	t.Helper()
	parcel := &models.Parcel{
		Name:     "Parcel " + string(state),
		State:    state,
		UserID:   owner.ID,
		IsActive: true,
	}
	require.NoError(t, db.Create(parcel).Error)
	return parcel
}

func createSupply(t *testing.T, db *gorm.DB, owner *models.User, name string, onHand, minimum float64) *models.SupplyItem {
	t.Helper()
	item := &models.SupplyItem{
		Name:           name,
		Type:           models.SupplyFertilizer,
		Unit:           "kg",
		UnitPrice:      10,
		QuantityOnHand: onHand,
		MinimumStock:   minimum,
		UserID:         owner.ID,
		IsActive:       true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func createCompletedOrder(t *testing.T, db *gorm.DB, parcel *models.Parcel, actor *models.User, kind models.WorkOrderKind) *models.WorkOrder {
	t.Helper()
	order := &models.WorkOrder{
		Kind:     kind,
		Status:   models.WorkOrderCompleted,
		ParcelID: parcel.ID,
		UserID:   actor.ID,
		IsActive: true,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func daysAgo(n int) *time.Time {
	ts := time.Now().Add(-time.Duration(n) * 24 * time.Hour)
	return &ts
}

func supplyOnHand(t *testing.T, db *gorm.DB, id uint) float64 {
	t.Helper()
	var item models.SupplyItem
	require.NoError(t, db.First(&item, id).Error)
	return item.QuantityOnHand
}

func movementCount(t *testing.T, db *gorm.DB, supplyID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.StockMovement{}).
		Where("supply_item_id = ?", supplyID).Count(&count).Error)
	return count
}
