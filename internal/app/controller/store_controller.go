package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/repository"
	"github.com/ratewise/ratewise-backend/internal/app/service"
	apperrors "github.com/ratewise/ratewise-backend/internal/errors"
	"github.com/ratewise/ratewise-backend/internal/middleware"
)

type StoreController struct {
	storeService service.StoreService
}

func NewStoreController(storeService service.StoreService) *StoreController {
	return &StoreController{storeService: storeService}
}

type CreateStoreRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description"`
	Address     string `json:"address" binding:"required"`
	City        string `json:"city" binding:"required"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
	Website     string `json:"website" binding:"omitempty,url"`
	LogoURL     string `json:"logo_url"`
	Category    string `json:"category" binding:"required"`
}

type UpdateStoreRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	ZipCode     *string `json:"zip_code"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Website     *string `json:"website" binding:"omitempty,url"`
	LogoURL     *string `json:"logo_url"`
	Category    *string `json:"category"`
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

func storeResponse(store *model.Store) gin.H {
	resp := gin.H{
		"id":             store.ID,
		"owner_id":       store.OwnerID,
		"name":           store.Name,
		"description":    store.Description,
		"address":        store.Address,
		"city":           store.City,
		"state":          store.State,
		"zip_code":       store.ZipCode,
		"phone":          store.Phone,
		"email":          store.Email,
		"website":        store.Website,
		"logo_url":       store.LogoURL,
		"category":       store.Category,
		"status":         store.Status,
		"average_rating": store.AverageRating,
		"total_ratings":  store.TotalRatings,
		"created_at":     store.CreatedAt,
		"updated_at":     store.UpdatedAt,
	}
	if store.Owner.ID != 0 {
		resp["owner_name"] = store.Owner.DisplayName()
	}
	return resp
}

// ListStores returns active stores ordered by average rating
// GET /api/v1/stores
func (ctrl *StoreController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, limit := parsePagination(c)
	filter := repository.StoreFilter{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Search:   c.Query("search"),
	}

	stores, pagination, err := ctrl.storeService.ListStores(filter, page, limit)
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

// GetStore returns a single active store with its ratings.
// Anonymous ratings are returned without the author's identity.
// GET /api/v1/stores/:id
func (ctrl *StoreController) GetStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	store, err := ctrl.storeService.GetStore(id)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		log.Error("Failed to get store", err, map[string]interface{}{
			"store_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get store")
		return
	}

	ratings := make([]gin.H, 0, len(store.Ratings))
	for i := range store.Ratings {
		ratings = append(ratings, ratingResponse(&store.Ratings[i]))
	}

	resp := storeResponse(store)
	resp["ratings"] = ratings

	c.JSON(http.StatusOK, gin.H{
		"store": resp,
	})
}

// GetMyStores returns stores owned by the authenticated store owner
// GET /api/v1/stores/my/stores
func (ctrl *StoreController) GetMyStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	stores, err := ctrl.storeService.GetMyStores(user.ID)
	if err != nil {
		log.Error("Failed to list owned stores", err, map[string]interface{}{
			"user_id": user.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list owned stores")
		return
	}

	responses := make([]gin.H, 0, len(stores))
	for i := range stores {
		responses = append(responses, storeResponse(&stores[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": responses,
		"count":  len(responses),
	})
}

// CreateStore registers a new store under the authenticated owner
// POST /api/v1/stores
func (ctrl *StoreController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid store creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid store payload")
		return
	}

	store, err := ctrl.storeService.CreateStore(user.ID, service.CreateStoreInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
		LogoURL:     req.LogoURL,
		Category:    req.Category,
	})
	if err != nil {
		log.Error("Store creation failed", err, map[string]interface{}{
			"user_id": user.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create store")
		return
	}

	log.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"owner_id": user.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully",
		"store":   storeResponse(store),
	})
}

// UpdateStore modifies a store. Ownership is enforced by middleware.
// PUT /api/v1/stores/:id
func (ctrl *StoreController) UpdateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid store update request", map[string]interface{}{
			"store_id": id,
			"error":    err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid store payload")
		return
	}

	store, err := ctrl.storeService.UpdateStore(id, service.UpdateStoreInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
		LogoURL:     req.LogoURL,
		Category:    req.Category,
	})
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		log.Error("Store update failed", err, map[string]interface{}{
			"store_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store updated successfully",
		"store":   storeResponse(store),
	})
}

// DeleteStore deactivates a store. Ownership is enforced by middleware.
// DELETE /api/v1/stores/:id
func (ctrl *StoreController) DeleteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.storeService.DeleteStore(id); err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		log.Error("Store deletion failed", err, map[string]interface{}{
			"store_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete store")
		return
	}

	log.Info("Store deactivated", map[string]interface{}{
		"store_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Store deleted successfully",
	})
}
