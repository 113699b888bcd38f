package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ratewise/ratewise-backend/config"
	"github.com/ratewise/ratewise-backend/internal/app/controller"
	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	storeController  *controller.StoreController
	ratingController *controller.RatingController
	userController   *controller.UserController
	adminController  *controller.AdminController
	uploadController *controller.UploadController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	storeController *controller.StoreController,
	ratingController *controller.RatingController,
	userController *controller.UserController,
	adminController *controller.AdminController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		storeController:  storeController,
		ratingController: ratingController,
		userController:   userController,
		adminController:  adminController,
		uploadController: uploadController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(middleware.RateLimitMiddleware(r.config.RateLimit.Requests, r.config.RateLimit.Window))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "RateWise API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/profile", r.authMiddleware.Authenticate(), r.authController.GetProfile)
			auth.PUT("/profile", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		stores := v1.Group("/stores")
		{
			stores.GET("", r.storeController.ListStores)
			stores.GET("/:id", r.storeController.GetStore)
			stores.GET("/my/stores",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleStoreOwner, model.RoleAdmin),
				r.storeController.GetMyStores,
			)
			stores.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleStoreOwner, model.RoleAdmin),
				r.storeController.CreateStore,
			)
			stores.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleStoreOwner, model.RoleAdmin),
				r.authMiddleware.RequireStoreOwnership(),
				r.storeController.UpdateStore,
			)
			stores.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleStoreOwner, model.RoleAdmin),
				r.authMiddleware.RequireStoreOwnership(),
				r.storeController.DeleteStore,
			)
		}

		ratings := v1.Group("/ratings")
		ratings.Use(r.authMiddleware.Authenticate())
		{
			ratings.POST("", r.ratingController.CreateRating)
			ratings.PUT("/:id", r.ratingController.UpdateRating)
			ratings.DELETE("/:id", r.ratingController.DeleteRating)
		}

		users := v1.Group("/users")
		users.Use(r.authMiddleware.Authenticate())
		{
			users.GET("/my-ratings", r.userController.GetMyRatings)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("/dashboard", r.adminController.GetDashboard)
			admin.GET("/users", r.adminController.ListUsers)
			admin.PATCH("/users/:id/status", r.adminController.SetUserStatus)
			admin.GET("/stores", r.adminController.ListStores)
			admin.PATCH("/stores/:id/status", r.adminController.SetStoreStatus)
		}

		if r.uploadController != nil {
			upload := v1.Group("/upload")
			upload.Use(
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleStoreOwner, model.RoleAdmin),
			)
			{
				upload.POST("/image", r.uploadController.UploadImage)
				upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
			}
		}
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
