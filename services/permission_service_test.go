package services

import (
	"testing"

	"agro-app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorCannotRequestTransitions(t *testing.T) {
	db := newTestDB(t)
	perms := newPermissionService(db)

	operator := createUser(t, db, "operator", models.RoleOperator)
	parcel := createParcel(t, db, operator, models.StateAvailable)

	// Operators record work orders but never drive the state machine.
	assert.False(t, perms.CanRequestTransition(operator, parcel, models.StateSown))
	assert.False(t, perms.CanRequestTransition(operator, parcel, models.StateDiseased))
	assert.True(t, CanRecordWork(models.RoleOperator))
}

func TestProducerCanRequestCultivationStates(t *testing.T) {
	db := newTestDB(t)
	perms := newPermissionService(db)

	producer := createUser(t, db, "producer", models.RoleProducer)
	parcel := createParcel(t, db, producer, models.StateAvailable)

	assert.True(t, perms.CanRequestTransition(producer, parcel, models.StateSown))
	assert.True(t, perms.CanRequestTransition(producer, parcel, models.StateDiseased))
}

func TestAdvisorLimitedToAttentionStates(t *testing.T) {
	db := newTestDB(t)
	perms := newPermissionService(db)

	producer := createUser(t, db, "owner", models.RoleProducer)
	advisor := createUser(t, db, "advisor", models.RoleAdvisor)
	parcel := createParcel(t, db, producer, models.StateSown)

	// Advisor is not the owner, so access fails before the role check.
	assert.False(t, perms.CanRequestTransition(advisor, parcel, models.StateDiseased))

	// Own parcel: diseased and abandoned allowed, cultivation not.
	ownParcel := createParcel(t, db, advisor, models.StateSown)
	assert.True(t, perms.CanRequestTransition(advisor, ownParcel, models.StateDiseased))
	assert.False(t, perms.CanRequestTransition(advisor, ownParcel, models.StateGrowing))
}

func TestParentUserHasAccess(t *testing.T) {
	db := newTestDB(t)
	perms := newPermissionService(db)

	parent := createUser(t, db, "parent", models.RoleProducer)
	child := createUser(t, db, "child", models.RoleProducer)
	child.ParentUserID = &parent.ID
	require.NoError(t, db.Save(child).Error)

	parcel := createParcel(t, db, child, models.StateAvailable)

	assert.True(t, perms.HasParcelAccess(parent, parcel))
	assert.True(t, perms.CanRequestTransition(parent, parcel, models.StateSown))
}

func TestAdminAccessScopedToCompany(t *testing.T) {
	db := newTestDB(t)
	perms := newPermissionService(db)

	companyA := &models.Company{Name: "Company A", IsActive: true}
	companyB := &models.Company{Name: "Company B", IsActive: true}
	require.NoError(t, db.Create(companyA).Error)
	require.NoError(t, db.Create(companyB).Error)

	admin := createUser(t, db, "admin", models.RoleAdmin)
	admin.CompanyID = &companyA.ID
	require.NoError(t, db.Save(admin).Error)

	producer := createUser(t, db, "producer2", models.RoleProducer)

	parcelA := createParcel(t, db, producer, models.StateAvailable)
	parcelA.CompanyID = &companyA.ID
	require.NoError(t, db.Save(parcelA).Error)

	parcelB := createParcel(t, db, producer, models.StateAvailable)
	parcelB.CompanyID = &companyB.ID
	require.NoError(t, db.Save(parcelB).Error)

	assert.True(t, perms.HasParcelAccess(admin, parcelA))
	assert.False(t, perms.HasParcelAccess(admin, parcelB))
}

func TestCompanyRoleOverridesLegacyRole(t *testing.T) {
	db := newTestDB(t)
	users := newPermissionService(db)

	company := &models.Company{Name: "Company C", IsActive: true}
	require.NoError(t, db.Create(company).Error)

	// Legacy PRODUCTOR globally, but OPERARIO inside the company.
	user := createUser(t, db, "scoped", models.RoleProducer)
	require.NoError(t, db.Create(&models.UserCompanyRole{
		UserID:    user.ID,
		CompanyID: company.ID,
		Role:      models.RoleOperator,
	}).Error)

	parcel := createParcel(t, db, user, models.StateAvailable)
	parcel.CompanyID = &company.ID
	require.NoError(t, db.Save(parcel).Error)

	assert.False(t, users.CanRequestTransition(user, parcel, models.StateSown))
}
