package repository

import (
	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/authz"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

type VehicleRepository interface {
	Create(vehicle *model.Vehicle) error
	FindByID(id uint) (*model.Vehicle, error)
	FindAll(scope authz.Scope) ([]model.Vehicle, error)
	CountAll(scope authz.Scope) (int64, error)
	Update(vehicle *model.Vehicle) error
	Delete(id uint) error
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(vehicle *model.Vehicle) error {
	logger.Debug("Creating vehicle in database", map[string]interface{}{
		"frame_number": vehicle.FrameNumber,
		"location_id":  vehicle.LocationID,
	})

	if err := r.db.Create(vehicle).Error; err != nil {
		logger.Error("Failed to create vehicle in database", err, map[string]interface{}{
			"frame_number": vehicle.FrameNumber,
		})
		return err
	}
	return nil
}

func (r *vehicleRepository) FindByID(id uint) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := r.db.Preload("Customer").
		Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Preload("CreatedByUser").Order("order_date DESC")
		}).
		First(&vehicle, id).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) FindAll(scope authz.Scope) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	query := scope.ApplyVehicles(r.db.Preload("Customer"))
	if err := query.Order("created_at DESC").Find(&vehicles).Error; err != nil {
		logger.Error("Failed to list vehicles", err, nil)
		return nil, err
	}

	logger.Debug("Vehicles listed", map[string]interface{}{
		"count": len(vehicles),
	})
	return vehicles, nil
}

func (r *vehicleRepository) CountAll(scope authz.Scope) (int64, error) {
	var count int64
	query := scope.ApplyVehicles(r.db.Model(&model.Vehicle{}))
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *vehicleRepository) Update(vehicle *model.Vehicle) error {
	logger.Debug("Updating vehicle in database", map[string]interface{}{
		"vehicle_id": vehicle.ID,
	})

	if err := r.db.Save(vehicle).Error; err != nil {
		logger.Error("Failed to update vehicle in database", err, map[string]interface{}{
			"vehicle_id": vehicle.ID,
		})
		return err
	}
	return nil
}

func (r *vehicleRepository) Delete(id uint) error {
	logger.Debug("Deleting vehicle from database", map[string]interface{}{
		"vehicle_id": id,
	})

	if err := r.db.Delete(&model.Vehicle{}, id).Error; err != nil {
		logger.Error("Failed to delete vehicle from database", err, map[string]interface{}{
			"vehicle_id": id,
		})
		return err
	}
	return nil
}
