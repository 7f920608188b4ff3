package services

import (
	"testing"

	"agro-app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWorkOrderService(db *gorm.DB) *WorkOrderService {
	perms := newPermissionService(db)
	return NewWorkOrderService(db, perms, NewInventoryService(db), NewAutoTransitionService(db))
}

func TestCreateWorkOrderDeductsAndMovesParcel(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateAvailable)
	supply := createSupply(t, db, producer, "Urea", 100, 0)

	order := &models.WorkOrder{
		Kind:        models.WorkMaintenance,
		Description: "clearing the field",
		Status:      models.WorkOrderCompleted,
		ParcelID:    parcel.ID,
		Supplies: []models.WorkOrderSupply{
			{SupplyItemID: supply.ID, QuantityUsed: 20},
		},
	}

	created, err := svc.Create(order, producer)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	// Line priced from the catalog: 20 kg at the 10/unit catalog price.
	assert.Equal(t, 200.0, created.TotalCost)

	assert.Equal(t, 80.0, supplyOnHand(t, db, supply.ID))

	var movement models.StockMovement
	require.NoError(t, db.Where("supply_item_id = ?", supply.ID).First(&movement).Error)
	require.NotNil(t, movement.WorkOrderID)
	assert.Equal(t, created.ID, *movement.WorkOrderID)

	// Completed maintenance on an available parcel starts preparation.
	var reloaded models.Parcel
	require.NoError(t, db.First(&reloaded, parcel.ID).Error)
	assert.Equal(t, models.StateInPreparation, reloaded.State)
}

func TestCreateWorkOrderInsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateAvailable)
	supply := createSupply(t, db, producer, "Urea", 5, 0)

	order := &models.WorkOrder{
		Kind:     models.WorkMaintenance,
		Status:   models.WorkOrderCompleted,
		ParcelID: parcel.ID,
		Supplies: []models.WorkOrderSupply{
			{SupplyItemID: supply.ID, QuantityUsed: 50},
		},
	}

	_, err := svc.Create(order, producer)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	// The whole creation rolled back: no order, no stock change, no move.
	var count int64
	require.NoError(t, db.Model(&models.WorkOrder{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, 5.0, supplyOnHand(t, db, supply.ID))

	var reloaded models.Parcel
	require.NoError(t, db.First(&reloaded, parcel.ID).Error)
	assert.Equal(t, models.StateAvailable, reloaded.State)
}

func TestCreateWorkOrderRequiresWorkRole(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)

	guest := createUser(t, db, "guest", models.RoleGuest)
	parcel := createParcel(t, db, guest, models.StateAvailable)

	_, err := svc.Create(&models.WorkOrder{
		Kind:     models.WorkMaintenance,
		ParcelID: parcel.ID,
	}, guest)

	var permission *PermissionError
	assert.ErrorAs(t, err, &permission)
}

func TestUpdateWorkOrderReconcilesStock(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateSown)
	supply := createSupply(t, db, producer, "Urea", 100, 0)

	created, err := svc.Create(&models.WorkOrder{
		Kind:     models.WorkFertilizing,
		Status:   models.WorkOrderCompleted,
		ParcelID: parcel.ID,
		Supplies: []models.WorkOrderSupply{
			{SupplyItemID: supply.ID, QuantityUsed: 10},
		},
	}, producer)
	require.NoError(t, err)
	require.Equal(t, 90.0, supplyOnHand(t, db, supply.ID))

	updated, err := svc.Update(created.ID, &models.WorkOrder{
		Kind:     models.WorkFertilizing,
		Status:   models.WorkOrderCompleted,
		Supplies: []models.WorkOrderSupply{
			{SupplyItemID: supply.ID, QuantityUsed: 4},
		},
	}, producer)
	require.NoError(t, err)

	// The ledger reflects only the net effect of the latest version:
	// 100 - 10 + 6 restored by the edit.
	assert.Equal(t, 96.0, supplyOnHand(t, db, supply.ID))
	require.Len(t, updated.Supplies, 1)
	assert.Equal(t, 4.0, updated.Supplies[0].QuantityUsed)
	assert.Equal(t, 40.0, updated.TotalCost)
}

func TestDeletePlannedOrderRestoresSupplies(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateSown)
	supply := createSupply(t, db, producer, "Urea", 100, 0)

	created, err := svc.Create(&models.WorkOrder{
		Kind:     models.WorkFertilizing,
		Status:   models.WorkOrderPlanned,
		ParcelID: parcel.ID,
		Supplies: []models.WorkOrderSupply{
			{SupplyItemID: supply.ID, QuantityUsed: 30},
		},
	}, producer)
	require.NoError(t, err)
	require.Equal(t, 70.0, supplyOnHand(t, db, supply.ID))

	require.NoError(t, svc.Delete(created.ID, producer))

	assert.Equal(t, 100.0, supplyOnHand(t, db, supply.ID))

	var order models.WorkOrder
	require.NoError(t, db.First(&order, created.ID).Error)
	assert.Equal(t, models.WorkOrderCancelled, order.Status)
	assert.False(t, order.IsActive)
}

func TestDeleteCompletedOrderRequiresAnnulment(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateSown)

	created, err := svc.Create(&models.WorkOrder{
		Kind:     models.WorkIrrigation,
		Status:   models.WorkOrderCompleted,
		ParcelID: parcel.ID,
	}, producer)
	require.NoError(t, err)

	err = svc.Delete(created.ID, producer)

	var permission *PermissionError
	require.ErrorAs(t, err, &permission)
	assert.Contains(t, permission.Message, "annulment")
}

func TestAnnulRestoresSuppliesAndAudits(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)

	admin := createUser(t, db, "admin", models.RoleAdmin)
	parcel := createParcel(t, db, admin, models.StateSown)
	supply := createSupply(t, db, admin, "Urea", 100, 0)

	created, err := svc.Create(&models.WorkOrder{
		Kind:     models.WorkFertilizing,
		Status:   models.WorkOrderCompleted,
		ParcelID: parcel.ID,
		Supplies: []models.WorkOrderSupply{
			{SupplyItemID: supply.ID, QuantityUsed: 25},
		},
	}, admin)
	require.NoError(t, err)
	require.Equal(t, 75.0, supplyOnHand(t, db, supply.ID))

	require.NoError(t, svc.Annul(created.ID, "recorded against the wrong parcel", true, admin))

	assert.Equal(t, 100.0, supplyOnHand(t, db, supply.ID))

	var order models.WorkOrder
	require.NoError(t, db.First(&order, created.ID).Error)
	assert.Equal(t, models.WorkOrderAnnulled, order.Status)
	assert.False(t, order.IsActive)
	assert.Equal(t, "recorded against the wrong parcel", order.AnnulReason)
	assert.NotNil(t, order.AnnulledAt)
	require.NotNil(t, order.AnnulledBy)
	assert.Equal(t, admin.ID, *order.AnnulledBy)
}

func TestAnnulRequiresJustificationAndAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateSown)

	created, err := svc.Create(&models.WorkOrder{
		Kind:     models.WorkIrrigation,
		Status:   models.WorkOrderCompleted,
		ParcelID: parcel.ID,
	}, producer)
	require.NoError(t, err)

	var permission *PermissionError

	err = svc.Annul(created.ID, "", true, producer)
	require.ErrorAs(t, err, &permission)

	err = svc.Annul(created.ID, "some justification", true, producer)
	require.ErrorAs(t, err, &permission)
	assert.Contains(t, permission.Message, "administrators")
}
