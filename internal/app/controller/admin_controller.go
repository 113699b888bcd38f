package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/repository"
	"github.com/ratewise/ratewise-backend/internal/app/service"
	apperrors "github.com/ratewise/ratewise-backend/internal/errors"
	"github.com/ratewise/ratewise-backend/internal/middleware"
)

type AdminController struct {
	adminService service.AdminService
}

func NewAdminController(adminService service.AdminService) *AdminController {
	return &AdminController{adminService: adminService}
}

type SetStatusRequest struct {
	Status model.EntityStatus `json:"status" binding:"required,oneof=active inactive"`
}

// GetDashboard returns platform-wide statistics
// GET /api/v1/admin/dashboard
func (ctrl *AdminController) GetDashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.adminService.GetDashboardStats()
	if err != nil {
		log.Error("Failed to build dashboard stats", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "dashboard stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dashboard": stats,
	})
}

// ListUsers returns all users with optional role and search filters
// GET /api/v1/admin/users
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, limit := parsePagination(c)
	filter := repository.UserFilter{
		Role:   model.UserRole(c.Query("role")),
		Search: c.Query("search"),
	}

	users, pagination, err := ctrl.adminService.ListUsers(filter, page, limit)
	if err != nil {
		log.Error("Failed to list users", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list users")
		return
	}

	responses := make([]gin.H, 0, len(users))
	for i := range users {
		responses = append(responses, userResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      responses,
		"pagination": pagination,
	})
}

// SetUserStatus activates or deactivates a user account
// PATCH /api/v1/admin/users/:id/status
func (ctrl *AdminController) SetUserStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status must be active or inactive")
		return
	}

	current, _ := middleware.GetCurrentUser(c)
	if current != nil && current.ID == id && req.Status == model.StatusInactive {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Admins cannot deactivate their own account")
		return
	}

	user, err := ctrl.adminService.SetUserStatus(id, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
			return
		}
		log.Error("Failed to update user status", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update user status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User status updated",
		"user":    userResponse(user),
	})
}

// ListStores returns stores of any status, newest first
// GET /api/v1/admin/stores
func (ctrl *AdminController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, limit := parsePagination(c)
	filter := repository.StoreFilter{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Search:   c.Query("search"),
		Status:   model.EntityStatus(c.Query("status")),
	}

	stores, pagination, err := ctrl.adminService.ListStores(filter, page, limit)
	if err != nil {
		log.Error("Failed to list stores", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list stores")
		return
	}

	responses := make([]gin.H, 0, len(stores))
	for i := range stores {
		responses = append(responses, storeResponse(&stores[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"stores":     responses,
		"pagination": pagination,
	})
}

// SetStoreStatus activates or deactivates a store
// PATCH /api/v1/admin/stores/:id/status
func (ctrl *AdminController) SetStoreStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status must be active or inactive")
		return
	}

	store, err := ctrl.adminService.SetStoreStatus(id, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		log.Error("Failed to update store status", err, map[string]interface{}{
			"store_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update store status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store status updated",
		"store":   storeResponse(store),
	})
}
