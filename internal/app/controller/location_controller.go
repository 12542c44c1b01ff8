package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/service"
	apperrors "github.com/stmiyata/seibi-backend/internal/errors"
	"github.com/stmiyata/seibi-backend/internal/middleware"
)

type LocationController struct {
	locationService service.LocationService
	notifier        service.Notifier
}

func NewLocationController(locationService service.LocationService, notifier service.Notifier) *LocationController {
	return &LocationController{
		locationService: locationService,
		notifier:        notifier,
	}
}

type CreateLocationRequest struct {
	ID           string `json:"id" binding:"required,max=50"`
	Name         string `json:"name" binding:"required"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	NotifyUserID string `json:"notify_user_id"`
}

type UpdateLocationRequest struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	NotifyUserID *string `json:"notify_user_id"`
	IsActive     *bool   `json:"is_active"`
}

// List returns the active locations
// GET /api/locations
func (ctrl *LocationController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	locations, err := ctrl.locationService.List()
	if err != nil {
		log.Error("Failed to list locations", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get locations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// Get returns one location
// GET /api/locations/:id
func (ctrl *LocationController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	location, err := ctrl.locationService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "拠点が見つかりません")
			return
		}
		log.Error("Failed to get location", err, map[string]interface{}{
			"location_id": c.Param("id"),
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get location")
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": location})
}

// Create registers a location
// POST /api/locations
func (ctrl *LocationController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "入力内容が正しくありません")
		return
	}

	location := &model.Location{
		ID:           req.ID,
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        req.Email,
		NotifyUserID: req.NotifyUserID,
	}
	if err := ctrl.locationService.Create(location); err != nil {
		if errors.Is(err, service.ErrLocationExists) {
			apperrors.Conflict(c, apperrors.ResourceAlreadyExists, "このIDは既に使用されています")
			return
		}
		log.Error("Failed to create location", err, map[string]interface{}{
			"location_id": req.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create location")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "拠点を作成しました",
		"location": location,
	})
}

// Update modifies a location
// PUT /api/locations/:id
func (ctrl *LocationController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "入力内容が正しくありません")
		return
	}

	location, err := ctrl.locationService.Update(c.Param("id"), service.UpdateLocationInput{
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        req.Email,
		NotifyUserID: req.NotifyUserID,
		IsActive:     req.IsActive,
	})
	if err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "拠点が見つかりません")
			return
		}
		log.Error("Failed to update location", err, map[string]interface{}{
			"location_id": c.Param("id"),
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update location")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "拠点を更新しました",
		"location": location,
	})
}

// Delete deactivates a location. The row is kept so existing orders
// and users keep their reference.
// DELETE /api/locations/:id
func (ctrl *LocationController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.locationService.Delete(c.Param("id")); err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "拠点が見つかりません")
			return
		}
		log.Error("Failed to delete location", err, map[string]interface{}{
			"location_id": c.Param("id"),
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete location")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "拠点を無効化しました",
	})
}

// TestNotification sends a test message to the location's bot recipient
// POST /api/locations/:id/test-notification
func (ctrl *LocationController) TestNotification(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	locationID := c.Param("id")

	if err := ctrl.notifier.SendTest(c.Request.Context(), locationID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotifyNotConfigured):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.NotifyNotConfigured, "通知機能が設定されていません")
		case errors.Is(err, service.ErrNotifyNoRecipient):
			apperrors.BadRequest(c, apperrors.NotifyNotConfigured, "この拠点には通知先が設定されていません")
		default:
			log.Error("Test notification failed", err, map[string]interface{}{
				"location_id": locationID,
			})
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.NotifySendFailed, "通知の送信に失敗しました")
		}
		return
	}

	log.Info("Test notification sent", map[string]interface{}{
		"location_id": locationID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "テスト通知を送信しました",
	})
}
