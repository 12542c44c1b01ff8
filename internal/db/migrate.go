package db

import (
	"errors"

	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Location{},
		&model.User{},
		&model.Vehicle{},
		&model.Order{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedAdminUser(); err != nil {
		logger.Error("Failed to seed admin user during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedAdminUser creates the initial admin account when no admin exists yet.
// The password is hashed by the user model hook and must be changed after
// first login.
func seedAdminUser() error {
	var admin model.User
	err := DB.Where("role = ?", model.RoleAdmin).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin = model.User{
		Username:    "admin",
		Password:    "admin123",
		Role:        model.RoleAdmin,
		DisplayName: "管理者",
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("Seeded initial admin user", map[string]interface{}{
		"username": admin.Username,
	})
	return nil
}
