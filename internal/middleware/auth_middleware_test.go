package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/internal/authz"
	"github.com/stmiyata/seibi-backend/internal/db"
	"github.com/stmiyata/seibi-backend/pkg/util"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func setupMiddlewareTest(t *testing.T) (*gin.Engine, *AuthMiddleware, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	router := gin.New()
	authMiddleware := NewAuthMiddleware(testJWTSecret, repository.NewUserRepository(testDB))
	return router, authMiddleware, testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, username string, role model.UserRole) (*model.User, string) {
	user := &model.User{
		Username:    username,
		Password:    "password123",
		Role:        role,
		DisplayName: "テストユーザー",
	}
	require.NoError(t, testDB.Create(user).Error)

	token, err := util.GenerateToken(user.ID, user.Username, string(user.Role), testJWTSecret, time.Hour)
	require.NoError(t, err)
	return user, token
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, authMiddleware, testDB := setupMiddlewareTest(t)
	_, token := createTestUser(t, testDB, "tanaka", model.RolePA)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		current, ok := GetUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": current.ID, "role": current.Role})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"PA"`)
}

func TestAuthMiddleware_Authenticate_QueryToken(t *testing.T) {
	router, authMiddleware, testDB := setupMiddlewareTest(t)
	_, token := createTestUser(t, testDB, "tanaka", model.RolePA)

	router.GET("/ws", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req := httptest.NewRequest("GET", "/ws?token="+token, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Authenticate_NoToken(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_Authenticate_InvalidFormat(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	tests := []struct {
		name   string
		header string
	}{
		{name: "Missing Bearer prefix", header: "invalid-token"},
		{name: "Wrong prefix", header: "Basic token123"},
		{name: "Empty token", header: "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_Authenticate_InvalidToken(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid.jwt.token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_Authenticate_DeletedUser(t *testing.T) {
	router, authMiddleware, testDB := setupMiddlewareTest(t)
	user, token := createTestUser(t, testDB, "tanaka", model.RolePA)
	require.NoError(t, testDB.Delete(user).Error)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RequireAction(t *testing.T) {
	router, authMiddleware, testDB := setupMiddlewareTest(t)
	_, adminToken := createTestUser(t, testDB, "admin1", model.RoleAdmin)
	_, customerToken := createTestUser(t, testDB, "customer1", model.RoleCustomer)

	router.DELETE("/orders/:id",
		authMiddleware.Authenticate(),
		authMiddleware.RequireAction(authz.ActionOrderDelete),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "ok"})
		},
	)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "Admin may delete", token: adminToken, expectedStatus: http.StatusOK},
		{name: "Customer may not", token: customerToken, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "/orders/1", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireAction_NoUserInContext(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest(t)

	// Misconfigured chain: capability check without Authenticate first
	router.DELETE("/orders/:id",
		authMiddleware.RequireAction(authz.ActionOrderDelete),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "ok"})
		},
	)

	req := httptest.NewRequest("DELETE", "/orders/1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHZ_ROLE_NOT_FOUND")
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, authMiddleware, testDB := setupMiddlewareTest(t)
	_, managerToken := createTestUser(t, testDB, "manager1", model.RoleManager)
	_, paToken := createTestUser(t, testDB, "pa1", model.RolePA)

	router.GET("/manage",
		authMiddleware.Authenticate(),
		authMiddleware.RequireRole(model.RoleAdmin, model.RoleManager),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "ok"})
		},
	)

	req := httptest.NewRequest("GET", "/manage", nil)
	req.Header.Set("Authorization", "Bearer "+managerToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/manage", nil)
	req.Header.Set("Authorization", "Bearer "+paToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	userID, exists := GetUserID(c)
	assert.False(t, exists)
	assert.Equal(t, uint(0), userID)

	c.Set(UserIDKey, uint(123))
	userID, exists = GetUserID(c)
	assert.True(t, exists)
	assert.Equal(t, uint(123), userID)
}

func TestGetUserRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	role, exists := GetUserRole(c)
	assert.False(t, exists)
	assert.Empty(t, role)

	c.Set(UserRoleKey, model.RoleAdmin)
	role, exists = GetUserRole(c)
	assert.True(t, exists)
	assert.Equal(t, model.RoleAdmin, role)
}
