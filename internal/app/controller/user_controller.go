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

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

type CreateUserRequest struct {
	Username    string  `json:"username" binding:"required,min=3"`
	Password    string  `json:"password" binding:"required,min=6"`
	DisplayName string  `json:"display_name" binding:"required"`
	Role        string  `json:"role"`
	LocationID  *string `json:"location_id"`
}

type UpdateUserRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
	LocationID  *string `json:"location_id"`
}

// List returns the users the actor may see
// GET /api/users
func (ctrl *UserController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	users, err := ctrl.userService.List(actor)
	if err != nil {
		log.Error("Failed to list users", err, map[string]interface{}{
			"actor_id": actor.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ListCustomers returns the customers assignable to vehicles and orders
// GET /api/users/customers
func (ctrl *UserController) ListCustomers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	customers, err := ctrl.userService.ListCustomers(actor)
	if err != nil {
		if errors.Is(err, service.ErrCrossLocation) {
			apperrors.Forbidden(c, "この操作を行う権限がありません")
			return
		}
		log.Error("Failed to list customers", err, map[string]interface{}{
			"actor_id": actor.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// Create registers a user under the actor's scope
// POST /api/users
func (ctrl *UserController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "入力内容が正しくありません")
		return
	}

	user, err := ctrl.userService.Create(actor, service.CreateUserInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        model.UserRole(req.Role),
		LocationID:  req.LocationID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "このユーザー名は既に使用されています")
		case errors.Is(err, service.ErrInvalidRole):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "指定されたロールは存在しません")
		case errors.Is(err, service.ErrCrossLocation):
			apperrors.Forbidden(c, "他拠点のユーザーは作成できません")
		default:
			log.Error("Failed to create user", err, map[string]interface{}{
				"actor_id": actor.ID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create user")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "ユーザーを作成しました",
		"user":    userJSON(user),
	})
}

// Update modifies a user
// PUT /api/users/:id
func (ctrl *UserController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ユーザーIDが正しくありません")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "入力内容が正しくありません")
		return
	}

	input := service.UpdateUserInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		LocationID:  req.LocationID,
	}
	if req.Role != nil {
		role := model.UserRole(*req.Role)
		input.Role = &role
	}

	user, err := ctrl.userService.Update(actor, uint(userID), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "ユーザーが見つかりません")
		case errors.Is(err, service.ErrUsernameTaken):
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "このユーザー名は既に使用されています")
		case errors.Is(err, service.ErrInvalidRole):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "指定されたロールは存在しません")
		case errors.Is(err, service.ErrCrossLocation):
			apperrors.Forbidden(c, "他拠点のユーザーは更新できません")
		default:
			log.Error("Failed to update user", err, map[string]interface{}{
				"actor_id": actor.ID,
				"user_id":  userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "ユーザーを更新しました",
		"user":    userJSON(user),
	})
}

// Delete removes a user
// DELETE /api/users/:id
func (ctrl *UserController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, "ログインが必要です")
		return
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ユーザーIDが正しくありません")
		return
	}

	if err := ctrl.userService.Delete(actor, uint(userID)); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "ユーザーが見つかりません")
		case errors.Is(err, service.ErrCrossLocation):
			apperrors.Forbidden(c, "他拠点のユーザーは削除できません")
		default:
			log.Error("Failed to delete user", err, map[string]interface{}{
				"actor_id": actor.ID,
				"user_id":  userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "ユーザーを削除しました",
	})
}
