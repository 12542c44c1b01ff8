package repository

import (
	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/authz"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindAll(scope authz.Scope) ([]model.User, error)
	FindCustomersByLocation(locationID string) ([]model.User, error)
	Update(user *model.User) error
	UpdatePassword(id uint, hashedPassword string) error
	Delete(id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"username": user.Username,
		"role":     user.Role,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"username": user.Username,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Location").First(&user, id).Error; err != nil {
		logger.Debug("User not found by ID", map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Location").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(scope authz.Scope) ([]model.User, error) {
	var users []model.User
	query := scope.ApplyUsers(r.db.Preload("Location"))
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err, nil)
		return nil, err
	}

	logger.Debug("Users listed", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) FindCustomersByLocation(locationID string) ([]model.User, error) {
	var users []model.User
	query := r.db.Where("role = ?", model.RoleCustomer)
	if locationID != "" {
		query = query.Where("location_id = ?", locationID)
	}
	if err := query.Order("display_name ASC").Find(&users).Error; err != nil {
		logger.Error("Failed to list customers", err, map[string]interface{}{
			"location_id": locationID,
		})
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) UpdatePassword(id uint, hashedPassword string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).
		Update("password", hashedPassword).Error; err != nil {
		logger.Error("Failed to update password", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}
	return nil
}

func (r *userRepository) Delete(id uint) error {
	logger.Debug("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	if err := r.db.Delete(&model.User{}, id).Error; err != nil {
		logger.Error("Failed to delete user from database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}
	return nil
}
