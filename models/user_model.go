package models

import "gorm.io/gorm"

// RoleName values match the role catalog of the legacy system, so seeded
// databases keep working.
type RoleName string

const (
	RoleSuperAdmin RoleName = "SUPERADMIN"
	RoleAdmin      RoleName = "ADMINISTRADOR"
	RoleProducer   RoleName = "PRODUCTOR"
	RoleTechnician RoleName = "TECNICO"
	RoleAdvisor    RoleName = "ASESOR"
	RoleOperator   RoleName = "OPERARIO"
	RoleGuest      RoleName = "INVITADO"
)

type User struct {
	gorm.Model
	Username     string   `json:"username" gorm:"unique"`
	Password     string   `json:"-"`
	Name         string   `json:"name"`
	Email        string   `json:"email" gorm:"unique"`
	Role         RoleName `json:"role"` // legacy global role, superseded by company roles
	ParentUserID *uint    `json:"parent_user_id" gorm:"default:null"`
	CompanyID    *uint    `json:"company_id" gorm:"default:null"`
	CompanyRoles []UserCompanyRole `json:"company_roles" gorm:"foreignKey:UserID"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int
}

type Company struct {
	gorm.Model
	Name     string `json:"name" gorm:"unique"`
	TaxID    string `json:"tax_id"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

// UserCompanyRole is the company-scoped role assignment. It takes precedence
// over User.Role when resolving the effective role.
type UserCompanyRole struct {
	gorm.Model
	UserID    uint     `json:"user_id" gorm:"index:idx_user_company,unique"`
	CompanyID uint     `json:"company_id" gorm:"index:idx_user_company,unique"`
	Role      RoleName `json:"role"`
}

type Role struct {
	gorm.Model
	Name        RoleName `gorm:"unique"`
	Description string
}
