package services

import (
	"agro-app/models"

	"golang.org/x/exp/slices"
)

// RoleResolver yields the effective role of an actor in the context of a
// parcel. The repository implementation resolves company-scoped roles first,
// then the legacy global role, and defaults to PRODUCTOR.
type RoleResolver interface {
	EffectiveRole(actor *models.User, parcel *models.Parcel) models.RoleName
}

// UserLoader loads user records for the ownership hierarchy checks.
type UserLoader interface {
	GetByID(id uint) (*models.User, error)
}

type PermissionService struct {
	users UserLoader
	roles RoleResolver
}

func NewPermissionService(users UserLoader, roles RoleResolver) *PermissionService {
	return &PermissionService{users: users, roles: roles}
}

var (
	cultivationRoles = []models.RoleName{
		models.RoleProducer, models.RoleTechnician, models.RoleAdmin, models.RoleSuperAdmin,
	}
	attentionRoles = []models.RoleName{
		models.RoleProducer, models.RoleTechnician, models.RoleAdvisor, models.RoleAdmin, models.RoleSuperAdmin,
	}
	adminOnlyRoles = []models.RoleName{models.RoleAdmin, models.RoleSuperAdmin}
)

// requiredRoles maps a target state to the roles allowed to request it.
// Disease and abandonment additionally allow the advisory role; anything
// unknown falls back to administrators only.
func requiredRoles(target models.LifecycleState) []models.RoleName {
	switch target {
	case models.StateSown, models.StateGrowing, models.StateFlowering, models.StateFruiting,
		models.StateReadyForHarvest, models.StateHarvesting, models.StateHarvested,
		models.StateResting, models.StateInPreparation, models.StateAvailable, models.StatePrepared:
		return cultivationRoles
	case models.StateDiseased, models.StateAbandoned:
		return attentionRoles
	default:
		return adminOnlyRoles
	}
}

// RequiredRolesDescription renders the permission requirement for rejection
// messages.
func RequiredRolesDescription(target models.LifecycleState) string {
	switch target {
	case models.StateDiseased, models.StateAbandoned:
		return "PRODUCTOR, TECNICO, ASESOR or ADMINISTRADOR"
	default:
		switch target {
		case models.StateSown, models.StateGrowing, models.StateFlowering, models.StateFruiting,
			models.StateReadyForHarvest, models.StateHarvesting, models.StateHarvested,
			models.StateResting, models.StateInPreparation, models.StateAvailable, models.StatePrepared:
			return "PRODUCTOR, TECNICO or ADMINISTRADOR"
		}
		return "ADMINISTRADOR"
	}
}

// CanRequestTransition reports whether the actor may request moving the
// parcel into the target state. Access (ownership or hierarchy) is checked
// first, then the role requirement of the target state.
func (s *PermissionService) CanRequestTransition(actor *models.User, parcel *models.Parcel, target models.LifecycleState) bool {
	if actor == nil || parcel == nil {
		return false
	}
	if !s.HasParcelAccess(actor, parcel) {
		return false
	}

	role := s.roles.EffectiveRole(actor, parcel)
	return slices.Contains(requiredRoles(target), role)
}

// HasParcelAccess implements the access rule: direct owner, parent of the
// owner in the user hierarchy, or an administrator within the parcel's
// company.
func (s *PermissionService) HasParcelAccess(actor *models.User, parcel *models.Parcel) bool {
	if parcel.UserID == actor.ID {
		return true
	}

	owner, err := s.users.GetByID(parcel.UserID)
	if err == nil && owner.ParentUserID != nil && *owner.ParentUserID == actor.ID {
		return true
	}

	role := s.roles.EffectiveRole(actor, parcel)
	if role == models.RoleAdmin || role == models.RoleSuperAdmin {
		return s.sameCompany(actor, parcel)
	}

	return false
}

// CanRecordWork reports whether the role may create or edit work orders.
func CanRecordWork(role models.RoleName) bool {
	switch role {
	case models.RoleProducer, models.RoleTechnician, models.RoleOperator, models.RoleAdmin, models.RoleSuperAdmin:
		return true
	default:
		return false
	}
}

func (s *PermissionService) sameCompany(actor *models.User, parcel *models.Parcel) bool {
	// Parcels without a company are legacy records, visible to any admin.
	if parcel.CompanyID == nil {
		return true
	}
	if actor.CompanyID != nil && *actor.CompanyID == *parcel.CompanyID {
		return true
	}
	for _, cr := range actor.CompanyRoles {
		if cr.CompanyID == *parcel.CompanyID {
			return true
		}
	}
	return false
}
