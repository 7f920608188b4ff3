package repositories

import (
	"agro-app/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("CompanyRoles").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

var knownRoles = map[models.RoleName]bool{
	models.RoleSuperAdmin: true,
	models.RoleAdmin:      true,
	models.RoleProducer:   true,
	models.RoleTechnician: true,
	models.RoleAdvisor:    true,
	models.RoleOperator:   true,
	models.RoleGuest:      true,
}

// EffectiveRole resolves the actor's role for a parcel. Company-scoped role
// assignments win over the legacy global role; anything unresolvable falls
// back to PRODUCTOR. This is the single place the fallback chain lives.
func (r *UserRepository) EffectiveRole(actor *models.User, parcel *models.Parcel) models.RoleName {
	if actor == nil {
		return models.RoleProducer
	}

	companyRoles := actor.CompanyRoles
	if len(companyRoles) == 0 {
		// Tolerate callers holding a user loaded without the association.
		var loaded []models.UserCompanyRole
		if err := r.db.Where("user_id = ?", actor.ID).Find(&loaded).Error; err == nil {
			companyRoles = loaded
		}
	}

	if parcel != nil && parcel.CompanyID != nil {
		for _, cr := range companyRoles {
			if cr.CompanyID == *parcel.CompanyID && knownRoles[cr.Role] {
				return cr.Role
			}
		}
	}
	if len(companyRoles) > 0 && knownRoles[companyRoles[0].Role] {
		return companyRoles[0].Role
	}

	if knownRoles[actor.Role] {
		return actor.Role
	}

	return models.RoleProducer
}
