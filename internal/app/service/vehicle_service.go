package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/internal/authz"
	"github.com/stmiyata/seibi-backend/internal/qr"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

var (
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrVehicleForbidden = errors.New("vehicle access denied")
)

type VehicleService interface {
	List(actor *model.User) ([]model.Vehicle, error)
	Get(actor *model.User, vehicleID uint) (*model.Vehicle, error)
	Create(actor *model.User, vehicle *model.Vehicle) error
	CreateFromScan(actor *model.User, payloads []string, customerID *uint) (*model.Vehicle, error)
	Update(actor *model.User, vehicleID uint, apply func(*model.Vehicle)) (*model.Vehicle, error)
	Delete(vehicleID uint) error
}

type vehicleService struct {
	vehicleRepo repository.VehicleRepository
}

func NewVehicleService(vehicleRepo repository.VehicleRepository) VehicleService {
	return &vehicleService{vehicleRepo: vehicleRepo}
}

func (s *vehicleService) List(actor *model.User) ([]model.Vehicle, error) {
	return s.vehicleRepo.FindAll(authz.ResolveScope(actor))
}

func (s *vehicleService) Get(actor *model.User, vehicleID uint) (*model.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	if !authz.ResolveScope(actor).AllowsVehicle(vehicle) {
		logger.Warn("Vehicle access denied", map[string]interface{}{
			"actor_id":   actor.ID,
			"vehicle_id": vehicleID,
		})
		return nil, ErrVehicleForbidden
	}
	return vehicle, nil
}

// Create registers a vehicle. Ownership and location come from the
// actor, never from the request body, except for admins.
func (s *vehicleService) Create(actor *model.User, vehicle *model.Vehicle) error {
	applyActorDefaults(actor, vehicle)
	if err := s.vehicleRepo.Create(vehicle); err != nil {
		return err
	}

	logger.Info("Vehicle created", map[string]interface{}{
		"vehicle_id":   vehicle.ID,
		"frame_number": vehicle.FrameNumber,
		"actor_id":     actor.ID,
	})
	return nil
}

// CreateFromScan decodes the scanned certificate payloads server-side
// and registers the resulting vehicle
func (s *vehicleService) CreateFromScan(actor *model.User, payloads []string, customerID *uint) (*model.Vehicle, error) {
	vehicle := &model.Vehicle{CustomerID: customerID}
	qr.ApplyToVehicle(vehicle, qr.Decode(payloads))
	applyActorDefaults(actor, vehicle)

	if err := s.vehicleRepo.Create(vehicle); err != nil {
		return nil, err
	}

	logger.Info("Vehicle registered from scan", map[string]interface{}{
		"vehicle_id":   vehicle.ID,
		"frame_number": vehicle.FrameNumber,
		"actor_id":     actor.ID,
	})
	return vehicle, nil
}

func applyActorDefaults(actor *model.User, vehicle *model.Vehicle) {
	if actor.Role == model.RoleCustomer {
		vehicle.CustomerID = &actor.ID
	}
	if actor.Role.IsStaff() || actor.Role == model.RoleCustomer {
		if actor.LocationID != nil {
			vehicle.LocationID = *actor.LocationID
		}
	}
}

func (s *vehicleService) Update(actor *model.User, vehicleID uint, apply func(*model.Vehicle)) (*model.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	// 従業員は自分の拠点の車両のみ更新可能
	if actor.Role.IsStaff() {
		if actor.LocationID == nil || vehicle.LocationID != *actor.LocationID {
			return nil, ErrVehicleForbidden
		}
	}

	apply(vehicle)
	if err := s.vehicleRepo.Update(vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *vehicleService) Delete(vehicleID uint) error {
	if _, err := s.vehicleRepo.FindByID(vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVehicleNotFound
		}
		return err
	}
	return s.vehicleRepo.Delete(vehicleID)
}
