package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stmiyata/seibi-backend/config"
	"github.com/stmiyata/seibi-backend/internal/app/controller"
	"github.com/stmiyata/seibi-backend/internal/authz"
	"github.com/stmiyata/seibi-backend/internal/middleware"
	"github.com/stmiyata/seibi-backend/internal/app/model"
)

type Router struct {
	authController      *controller.AuthController
	userController      *controller.UserController
	locationController  *controller.LocationController
	vehicleController   *controller.VehicleController
	orderController     *controller.OrderController
	statsController     *controller.StatsController
	lineWorksController *controller.LineWorksController
	wsController        *controller.WSController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	locationController *controller.LocationController,
	vehicleController *controller.VehicleController,
	orderController *controller.OrderController,
	statsController *controller.StatsController,
	lineWorksController *controller.LineWorksController,
	wsController *controller.WSController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		userController:      userController,
		locationController:  locationController,
		vehicleController:   vehicleController,
		orderController:     orderController,
		statsController:     statsController,
		lineWorksController: lineWorksController,
		wsController:        wsController,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.Metrics())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "SEIBI API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Uploaded photos are referenced from the mobile app as plain URLs
	router.Static("/uploads", r.config.Upload.Dir)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.POST("/change-password", r.authMiddleware.Authenticate(), r.authController.ChangePassword)
			auth.POST("/reset-password",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleAdmin),
				r.authController.ResetPassword,
			)
		}

		users := api.Group("/users")
		users.Use(r.authMiddleware.Authenticate())
		{
			users.GET("", r.authMiddleware.RequireAction(authz.ActionUserManage), r.userController.List)
			users.GET("/customers", r.authMiddleware.RequireAction(authz.ActionUserManage), r.userController.ListCustomers)
			users.POST("", r.authMiddleware.RequireAction(authz.ActionUserManage), r.userController.Create)
			users.PUT("/:id", r.authMiddleware.RequireAction(authz.ActionUserManage), r.userController.Update)
			users.DELETE("/:id", r.authMiddleware.RequireAction(authz.ActionUserManage), r.userController.Delete)
		}

		locations := api.Group("/locations")
		locations.Use(r.authMiddleware.Authenticate())
		{
			locations.GET("", r.locationController.List)
			locations.GET("/:id", r.locationController.Get)
			locations.POST("", r.authMiddleware.RequireAction(authz.ActionLocationManage), r.locationController.Create)
			locations.PUT("/:id", r.authMiddleware.RequireAction(authz.ActionLocationManage), r.locationController.Update)
			locations.DELETE("/:id", r.authMiddleware.RequireAction(authz.ActionLocationManage), r.locationController.Delete)
			locations.POST("/:id/test-notification",
				r.authMiddleware.RequireAction(authz.ActionNotificationTest),
				r.locationController.TestNotification,
			)
		}

		vehicles := api.Group("/vehicles")
		vehicles.Use(r.authMiddleware.Authenticate())
		{
			vehicles.GET("", r.vehicleController.List)
			vehicles.GET("/:id", r.vehicleController.Get)
			vehicles.POST("", r.vehicleController.Create)
			vehicles.POST("/scan", r.vehicleController.Scan)
			vehicles.PUT("/:id", r.authMiddleware.RequireAction(authz.ActionVehicleUpdate), r.vehicleController.Update)
			vehicles.DELETE("/:id", r.authMiddleware.RequireAction(authz.ActionVehicleDelete), r.vehicleController.Delete)
		}

		orders := api.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.List)
			orders.GET("/:id", r.orderController.Get)
			orders.POST("", r.authMiddleware.RequireAction(authz.ActionOrderCreate), r.orderController.Create)
			orders.PUT("/:id", r.authMiddleware.RequireAction(authz.ActionOrderUpdate), r.orderController.Update)
			orders.PUT("/:id/confirm", r.authMiddleware.RequireAction(authz.ActionOrderConfirm), r.orderController.Confirm)
			orders.DELETE("/:id", r.authMiddleware.RequireAction(authz.ActionOrderDelete), r.orderController.Delete)
			orders.GET("/:id/photos", r.orderController.GetPhotos)
			orders.POST("/:id/photos", r.orderController.UploadPhotos)
		}

		stats := api.Group("/stats")
		stats.Use(r.authMiddleware.Authenticate())
		{
			stats.GET("/dashboard", r.statsController.Dashboard)
		}

		api.GET("/ws/orders", r.authMiddleware.Authenticate(), r.wsController.OrderFeed)

		// Signed by LINE WORKS, not by our tokens
		api.POST("/lineworks/callback", r.lineWorksController.Callback)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
