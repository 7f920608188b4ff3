package services

import (
	"testing"

	"agro-app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposeValidTransition(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, newPermissionService(db))

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateAvailable)

	proposal, err := svc.Propose(parcel.ID, models.StateSown, "starting the season", producer)
	require.NoError(t, err)

	assert.True(t, proposal.RequiresConfirmation)
	assert.True(t, proposal.CanCancel)
	assert.NotEmpty(t, proposal.Consequences)
	assert.NotEmpty(t, proposal.ActionRequired)
	assert.Equal(t, models.StateAvailable, proposal.CurrentState)
	assert.Equal(t, models.StateSown, proposal.ProposedState)

	// Proposing never touches the parcel.
	var reloaded models.Parcel
	require.NoError(t, db.First(&reloaded, parcel.ID).Error)
	assert.Equal(t, models.StateAvailable, reloaded.State)
}

func TestProposeInvalidTransitionListsValidTargets(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, newPermissionService(db))

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateAvailable)

	// Skipping the whole crop cycle is rejected as guidance, not an error.
	proposal, err := svc.Propose(parcel.ID, models.StateHarvested, "", producer)
	require.NoError(t, err)

	assert.False(t, proposal.RequiresConfirmation)
	assert.NotEmpty(t, proposal.Message)
	assert.ElementsMatch(t, ValidTargets(models.StateAvailable), proposal.ValidTargets)
}

func TestProposeWithoutPermission(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, newPermissionService(db))

	operator := createUser(t, db, "operator", models.RoleOperator)
	parcel := createParcel(t, db, operator, models.StateAvailable)

	proposal, err := svc.Propose(parcel.ID, models.StateSown, "", operator)
	require.NoError(t, err)

	assert.False(t, proposal.RequiresConfirmation)
	assert.Contains(t, proposal.Message, "permission")
}

func TestProposeUnknownParcel(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, newPermissionService(db))
	producer := createUser(t, db, "producer", models.RoleProducer)

	_, err := svc.Propose(9999, models.StateSown, "", producer)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestConfirmAppliesTransition(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, newPermissionService(db))

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateAvailable)

	applied, err := svc.Confirm(TransitionConfirmation{
		ParcelID:    parcel.ID,
		TargetState: models.StateSown,
		Reason:      "season start",
		Confirmed:   true,
	}, producer)
	require.NoError(t, err)
	assert.True(t, applied)

	var reloaded models.Parcel
	require.NoError(t, db.First(&reloaded, parcel.ID).Error)
	assert.Equal(t, models.StateSown, reloaded.State)
	assert.Equal(t, "season start", reloaded.StateChangeReason)
	require.NotNil(t, reloaded.LastStateChangeAt)
	require.NotNil(t, reloaded.PlantingDate, "entering SEMBRADO must stamp the planting date")

	var records []models.TransitionRecord
	require.NoError(t, db.Where("parcel_id = ?", parcel.ID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, models.StateAvailable, records[0].FromState)
	assert.Equal(t, models.StateSown, records[0].ToState)
	assert.False(t, records[0].Automatic)
	assert.Equal(t, producer.ID, records[0].UserID)
}

func TestConfirmDeclinedChangesNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, newPermissionService(db))

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateAvailable)

	applied, err := svc.Confirm(TransitionConfirmation{
		ParcelID:    parcel.ID,
		TargetState: models.StateSown,
		Confirmed:   false,
	}, producer)
	require.NoError(t, err)
	assert.False(t, applied)

	var reloaded models.Parcel
	require.NoError(t, db.First(&reloaded, parcel.ID).Error)
	assert.Equal(t, models.StateAvailable, reloaded.State)

	var count int64
	require.NoError(t, db.Model(&models.TransitionRecord{}).Where("parcel_id = ?", parcel.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConfirmStaleProposal(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, newPermissionService(db))

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateAvailable)

	// The parcel moved between propose and confirm; SEMBRADO is still valid
	// from PREPARADO, but from SEMBRADO it no longer is.
	applied, err := svc.Confirm(TransitionConfirmation{
		ParcelID: parcel.ID, TargetState: models.StateSown, Confirmed: true,
	}, producer)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = svc.Confirm(TransitionConfirmation{
		ParcelID: parcel.ID, TargetState: models.StateSown, Confirmed: true,
	}, producer)
	assert.False(t, applied)

	var stale *StaleConfirmationError
	require.ErrorAs(t, err, &stale)

	// The failed confirmation left no trace.
	var count int64
	require.NoError(t, db.Model(&models.TransitionRecord{}).Where("parcel_id = ?", parcel.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestConfirmHarvestedStampsHarvestDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, newPermissionService(db))

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateHarvesting)

	applied, err := svc.Confirm(TransitionConfirmation{
		ParcelID: parcel.ID, TargetState: models.StateHarvested, Confirmed: true,
	}, producer)
	require.NoError(t, err)
	require.True(t, applied)

	var reloaded models.Parcel
	require.NoError(t, db.First(&reloaded, parcel.ID).Error)
	assert.NotNil(t, reloaded.ActualHarvestDate)
}
