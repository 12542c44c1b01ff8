package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/internal/app/service"
	"github.com/stmiyata/seibi-backend/internal/db"
	"github.com/stmiyata/seibi-backend/internal/middleware"
)

func setupAuthControllerTest(t *testing.T) (*gin.Engine, service.AuthService) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, testJWTSecret, time.Hour)
	authController := NewAuthController(authService)
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, userRepo)

	router := gin.New()
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/change-password", authMiddleware.Authenticate(), authController.ChangePassword)
	}
	return router, authService
}

func doAuthJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthController_ChangePassword_Success(t *testing.T) {
	router, authService := setupAuthControllerTest(t)

	_, err := authService.Register("sato", "oldpass123", "佐藤", model.RoleCustomer)
	require.NoError(t, err)
	token, _, err := authService.Login("sato", "oldpass123")
	require.NoError(t, err)

	w := doAuthJSON(router, "POST", "/api/auth/change-password", token, gin.H{
		"current_password": "oldpass123",
		"new_password":     "newpass456",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// The old password no longer works, the new one does
	_, _, err = authService.Login("sato", "oldpass123")
	assert.Error(t, err)
	_, _, err = authService.Login("sato", "newpass456")
	assert.NoError(t, err)
}

func TestAuthController_ChangePassword_WrongCurrent(t *testing.T) {
	router, authService := setupAuthControllerTest(t)

	_, err := authService.Register("sato", "oldpass123", "佐藤", model.RoleCustomer)
	require.NoError(t, err)
	token, _, err := authService.Login("sato", "oldpass123")
	require.NoError(t, err)

	w := doAuthJSON(router, "POST", "/api/auth/change-password", token, gin.H{
		"current_password": "wrongpass",
		"new_password":     "newpass456",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, _, err = authService.Login("sato", "oldpass123")
	assert.NoError(t, err)
}

func TestAuthController_ChangePassword_RequiresAuth(t *testing.T) {
	router, _ := setupAuthControllerTest(t)

	w := doAuthJSON(router, "POST", "/api/auth/change-password", "", gin.H{
		"current_password": "oldpass123",
		"new_password":     "newpass456",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
