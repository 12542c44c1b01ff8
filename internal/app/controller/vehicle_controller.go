package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/service"
	apperrors "github.com/stmiyata/seibi-backend/internal/errors"
	"github.com/stmiyata/seibi-backend/internal/middleware"
)

type VehicleController struct {
	vehicleService service.VehicleService
}

func NewVehicleController(vehicleService service.VehicleService) *VehicleController {
	return &VehicleController{vehicleService: vehicleService}
}

type CreateVehicleRequest struct {
	TypeNumber            string  `json:"type_number"`
	CategoryNumber        string  `json:"category_number"`
	FirstRegistrationDate string  `json:"first_registration_date"`
	FrameNumber           string  `json:"frame_number" binding:"required"`
	LicensePlate          string  `json:"license_plate"`
	VehicleType           string  `json:"vehicle_type"`
	EngineType            string  `json:"engine_type"`
	CustomerID            *uint   `json:"customer_id"`
	LocationID            string  `json:"location_id"`
}

type ScanVehicleRequest struct {
	Payloads   []string `json:"payloads" binding:"required,min=1"`
	CustomerID *uint    `json:"customer_id"`
}

type UpdateVehicleRequest struct {
	TypeNumber            *string `json:"type_number"`
	CategoryNumber        *string `json:"category_number"`
	FirstRegistrationDate *string `json:"first_registration_date"`
	FrameNumber           *string `json:"frame_number"`
	LicensePlate          *string `json:"license_plate"`
	VehicleType           *string `json:"vehicle_type"`
	EngineType            *string `json:"engine_type"`
	CustomerID            *uint   `json:"customer_id"`
}

// List returns the vehicles visible to the actor
// GET /api/vehicles
func (ctrl *VehicleController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	vehicles, err := ctrl.vehicleService.List(actor)
	if err != nil {
		log.Error("Failed to list vehicles", err, map[string]interface{}{
			"actor_id": actor.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get vehicles")
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

// Get returns one vehicle with its customer and order history
// GET /api/vehicles/:id
func (ctrl *VehicleController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	vehicleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "車両IDが正しくありません")
		return
	}

	vehicle, err := ctrl.vehicleService.Get(actor, uint(vehicleID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVehicleNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "車両が見つかりません")
		case errors.Is(err, service.ErrVehicleForbidden):
			apperrors.Forbidden(c, "この車両を閲覧する権限がありません")
		default:
			log.Error("Failed to get vehicle", err, map[string]interface{}{
				"vehicle_id": vehicleID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get vehicle")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// Create registers a vehicle from manual input
// POST /api/vehicles
func (ctrl *VehicleController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "入力内容が正しくありません")
		return
	}

	vehicle := &model.Vehicle{
		TypeNumber:            req.TypeNumber,
		CategoryNumber:        req.CategoryNumber,
		FirstRegistrationDate: req.FirstRegistrationDate,
		FrameNumber:           req.FrameNumber,
		LicensePlate:          req.LicensePlate,
		VehicleType:           req.VehicleType,
		EngineType:            req.EngineType,
		CustomerID:            req.CustomerID,
		LocationID:            req.LocationID,
	}
	if err := ctrl.vehicleService.Create(actor, vehicle); err != nil {
		log.Error("Failed to create vehicle", err, map[string]interface{}{
			"actor_id": actor.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create vehicle")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "車両を登録しました",
		"vehicle": vehicle,
	})
}

// Scan registers a vehicle from inspection certificate QR payloads
// POST /api/vehicles/scan
func (ctrl *VehicleController) Scan(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	var req ScanVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "QRコードの読み取り結果が正しくありません")
		return
	}

	vehicle, err := ctrl.vehicleService.CreateFromScan(actor, req.Payloads, req.CustomerID)
	if err != nil {
		log.Error("Failed to register scanned vehicle", err, map[string]interface{}{
			"actor_id": actor.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create vehicle")
		return
	}

	log.Info("Vehicle registered from scan", map[string]interface{}{
		"vehicle_id": vehicle.ID,
		"actor_id":   actor.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "車検証から車両を登録しました",
		"vehicle": vehicle,
	})
}

// Update modifies a vehicle
// PUT /api/vehicles/:id
func (ctrl *VehicleController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	vehicleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "車両IDが正しくありません")
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "入力内容が正しくありません")
		return
	}

	vehicle, err := ctrl.vehicleService.Update(actor, uint(vehicleID), func(v *model.Vehicle) {
		if req.TypeNumber != nil {
			v.TypeNumber = *req.TypeNumber
		}
		if req.CategoryNumber != nil {
			v.CategoryNumber = *req.CategoryNumber
		}
		if req.FirstRegistrationDate != nil {
			v.FirstRegistrationDate = *req.FirstRegistrationDate
		}
		if req.FrameNumber != nil {
			v.FrameNumber = *req.FrameNumber
		}
		if req.LicensePlate != nil {
			v.LicensePlate = *req.LicensePlate
		}
		if req.VehicleType != nil {
			v.VehicleType = *req.VehicleType
		}
		if req.EngineType != nil {
			v.EngineType = *req.EngineType
		}
		if req.CustomerID != nil {
			v.CustomerID = req.CustomerID
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVehicleNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "車両が見つかりません")
		case errors.Is(err, service.ErrVehicleForbidden):
			apperrors.Forbidden(c, "他拠点の車両は更新できません")
		default:
			log.Error("Failed to update vehicle", err, map[string]interface{}{
				"vehicle_id": vehicleID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update vehicle")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "車両情報を更新しました",
		"vehicle": vehicle,
	})
}

// Delete removes a vehicle
// DELETE /api/vehicles/:id
func (ctrl *VehicleController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	vehicleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "車両IDが正しくありません")
		return
	}

	if err := ctrl.vehicleService.Delete(uint(vehicleID)); err != nil {
		if errors.Is(err, service.ErrVehicleNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "車両が見つかりません")
			return
		}
		log.Error("Failed to delete vehicle", err, map[string]interface{}{
			"vehicle_id": vehicleID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete vehicle")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "車両を削除しました",
	})
}
