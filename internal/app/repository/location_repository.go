package repository

import (
	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

type LocationRepository interface {
	Create(location *model.Location) error
	FindByID(id string) (*model.Location, error)
	FindAll(activeOnly bool) ([]model.Location, error)
	Update(location *model.Location) error
	Delete(id string) error
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(location *model.Location) error {
	logger.Debug("Creating location in database", map[string]interface{}{
		"location_id": location.ID,
		"name":        location.Name,
	})

	if err := r.db.Create(location).Error; err != nil {
		logger.Error("Failed to create location in database", err, map[string]interface{}{
			"location_id": location.ID,
		})
		return err
	}
	return nil
}

func (r *locationRepository) FindByID(id string) (*model.Location, error) {
	var location model.Location
	if err := r.db.First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) FindAll(activeOnly bool) ([]model.Location, error) {
	var locations []model.Location
	query := r.db.Order("id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&locations).Error; err != nil {
		logger.Error("Failed to list locations", err, nil)
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) Update(location *model.Location) error {
	logger.Debug("Updating location in database", map[string]interface{}{
		"location_id": location.ID,
	})

	if err := r.db.Save(location).Error; err != nil {
		logger.Error("Failed to update location in database", err, map[string]interface{}{
			"location_id": location.ID,
		})
		return err
	}
	return nil
}

// Delete deactivates the location instead of removing the row so that
// existing orders keep their location reference
func (r *locationRepository) Delete(id string) error {
	logger.Debug("Deactivating location in database", map[string]interface{}{
		"location_id": id,
	})

	if err := r.db.Model(&model.Location{}).Where("id = ?", id).
		Update("is_active", false).Error; err != nil {
		logger.Error("Failed to deactivate location", err, map[string]interface{}{
			"location_id": id,
		})
		return err
	}
	return nil
}
