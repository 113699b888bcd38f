package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/service"
	apperrors "github.com/ratewise/ratewise-backend/internal/errors"
	"github.com/ratewise/ratewise-backend/internal/middleware"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

type CreateRatingRequest struct {
	StoreID     uint   `json:"store_id" binding:"required"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	Review      string `json:"review" binding:"max=2000"`
	IsAnonymous bool   `json:"is_anonymous"`
}

type UpdateRatingRequest struct {
	Rating      *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Review      *string `json:"review" binding:"omitempty,max=2000"`
	IsAnonymous *bool   `json:"is_anonymous"`
}

// ratingResponse hides the author's identity when the rating is anonymous.
// The user_id stays server-side only; readers see "Anonymous".
func ratingResponse(rating *model.Rating) gin.H {
	resp := gin.H{
		"id":           rating.ID,
		"store_id":     rating.StoreID,
		"rating":       rating.Rating,
		"review":       rating.Review,
		"is_anonymous": rating.IsAnonymous,
		"is_verified":  rating.IsVerified,
		"created_at":   rating.CreatedAt,
		"updated_at":   rating.UpdatedAt,
	}
	if rating.IsAnonymous {
		resp["author"] = "Anonymous"
	} else {
		resp["user_id"] = rating.UserID
		if rating.User.ID != 0 {
			resp["author"] = rating.User.DisplayName()
		}
	}
	if rating.Store.ID != 0 {
		resp["store"] = gin.H{
			"id":       rating.Store.ID,
			"name":     rating.Store.Name,
			"category": rating.Store.Category,
			"city":     rating.Store.City,
		}
	}
	return resp
}

// CreateRating submits a rating for a store
// POST /api/v1/ratings
func (ctrl *RatingController) CreateRating(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid rating request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid rating payload")
		return
	}

	rating, err := ctrl.ratingService.CreateRating(user.ID, service.CreateRatingInput{
		StoreID:     req.StoreID,
		Rating:      req.Rating,
		Review:      req.Review,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
		case errors.Is(err, service.ErrDuplicateRating):
			apperrors.Conflict(c, apperrors.RatingAlreadyExists, "You have already rated this store")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.RatingInvalidValue, "Rating must be between 1 and 5")
		default:
			log.Error("Rating creation failed", err, map[string]interface{}{
				"user_id":  user.ID,
				"store_id": req.StoreID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create rating")
		}
		return
	}

	log.Info("Rating created", map[string]interface{}{
		"rating_id": rating.ID,
		"store_id":  rating.StoreID,
		"user_id":   user.ID,
		"rating":    rating.Rating,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Rating submitted successfully",
		"rating":  ratingResponse(rating),
	})
}

// UpdateRating modifies the caller's own rating
// PUT /api/v1/ratings/:id
func (ctrl *RatingController) UpdateRating(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid rating update request", map[string]interface{}{
			"rating_id": id,
			"error":     err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid rating payload")
		return
	}

	rating, err := ctrl.ratingService.UpdateRating(id, user.ID, service.UpdateRatingInput{
		Rating:      req.Rating,
		Review:      req.Review,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRatingNotFound):
			apperrors.NotFound(c, apperrors.RatingNotFound, "Rating not found")
		case errors.Is(err, service.ErrNotRatingAuthor):
			apperrors.Forbidden(c, "Only the rating author can modify it")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.RatingInvalidValue, "Rating must be between 1 and 5")
		default:
			log.Error("Rating update failed", err, map[string]interface{}{
				"rating_id": id,
				"user_id":   user.ID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update rating")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rating updated successfully",
		"rating":  ratingResponse(rating),
	})
}

// DeleteRating removes a rating. Admins may remove any rating,
// everyone else only their own.
// DELETE /api/v1/ratings/:id
func (ctrl *RatingController) DeleteRating(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := ctrl.ratingService.DeleteRating(id, user.ID, user.Role == model.RoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRatingNotFound):
			apperrors.NotFound(c, apperrors.RatingNotFound, "Rating not found")
		case errors.Is(err, service.ErrNotRatingAuthor):
			apperrors.Forbidden(c, "Only the rating author can delete it")
		default:
			log.Error("Rating deletion failed", err, map[string]interface{}{
				"rating_id": id,
				"user_id":   user.ID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete rating")
		}
		return
	}

	log.Info("Rating deleted", map[string]interface{}{
		"rating_id": id,
		"user_id":   user.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Rating deleted successfully",
	})
}
