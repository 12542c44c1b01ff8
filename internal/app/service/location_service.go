package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

var (
	ErrLocationExists   = errors.New("location id already in use")
	ErrLocationNotFound = errors.New("location not found")
)

// UpdateLocationInput carries the mutable location fields
type UpdateLocationInput struct {
	Name         *string
	Address      *string
	Phone        *string
	Email        *string
	NotifyUserID *string
	IsActive     *bool
}

type LocationService interface {
	List() ([]model.Location, error)
	Get(id string) (*model.Location, error)
	Create(location *model.Location) error
	Update(id string, input UpdateLocationInput) (*model.Location, error)
	Delete(id string) error
}

type locationService struct {
	locationRepo repository.LocationRepository
}

func NewLocationService(locationRepo repository.LocationRepository) LocationService {
	return &locationService{locationRepo: locationRepo}
}

func (s *locationService) List() ([]model.Location, error) {
	return s.locationRepo.FindAll(true)
}

func (s *locationService) Get(id string) (*model.Location, error) {
	location, err := s.locationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return location, nil
}

func (s *locationService) Create(location *model.Location) error {
	if _, err := s.locationRepo.FindByID(location.ID); err == nil {
		logger.Warn("Location create rejected, id in use", map[string]interface{}{
			"location_id": location.ID,
		})
		return ErrLocationExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	location.IsActive = true
	if err := s.locationRepo.Create(location); err != nil {
		return err
	}

	logger.Info("Location created", map[string]interface{}{
		"location_id": location.ID,
		"name":        location.Name,
	})
	return nil
}

func (s *locationService) Update(id string, input UpdateLocationInput) (*model.Location, error) {
	location, err := s.locationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		location.Name = *input.Name
	}
	if input.Address != nil {
		location.Address = *input.Address
	}
	if input.Phone != nil {
		location.Phone = *input.Phone
	}
	if input.Email != nil {
		location.Email = *input.Email
	}
	if input.NotifyUserID != nil {
		location.NotifyUserID = *input.NotifyUserID
	}
	if input.IsActive != nil {
		location.IsActive = *input.IsActive
	}

	if err := s.locationRepo.Update(location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *locationService) Delete(id string) error {
	if _, err := s.locationRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLocationNotFound
		}
		return err
	}
	return s.locationRepo.Delete(id)
}
