package database

import (
	"fmt"

	"agro-app/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var roleCatalog = []models.Role{
	{Name: models.RoleSuperAdmin, Description: "Super administrator"},
	{Name: models.RoleAdmin, Description: "Company administrator"},
	{Name: models.RoleProducer, Description: "Agricultural producer"},
	{Name: models.RoleTechnician, Description: "Agricultural technician"},
	{Name: models.RoleAdvisor, Description: "Agricultural advisor"},
	{Name: models.RoleOperator, Description: "Field operator"},
	{Name: models.RoleGuest, Description: "Guest user with limited access"},
}

// RunSeeders inserts the role catalog and a default admin user on first run.
func RunSeeders(db *gorm.DB) {
	for _, role := range roleCatalog {
		var existing models.Role
		if err := db.Where("name = ?", role.Name).First(&existing).Error; err != nil {
			db.Create(&role)
		}
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			fmt.Println("❌ Failed to hash default admin password:", err)
			return
		}
		admin := models.User{
			Username: "admin",
			Password: string(hashed),
			Name:     "Administrator",
			Email:    "admin@agro.local",
			Role:     models.RoleAdmin,
		}
		if err := db.Create(&admin).Error; err != nil {
			fmt.Println("❌ Failed to seed admin user:", err)
			return
		}
		fmt.Println("✅ Seeded default admin user")
	}
}
