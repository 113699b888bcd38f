package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratewise/ratewise-backend/internal/app/service"
	apperrors "github.com/ratewise/ratewise-backend/internal/errors"
	"github.com/ratewise/ratewise-backend/internal/middleware"
)

type UserController struct {
	ratingService service.RatingService
}

func NewUserController(ratingService service.RatingService) *UserController {
	return &UserController{ratingService: ratingService}
}

// GetMyRatings returns the authenticated user's rating history,
// newest first, with the rated store attached.
// GET /api/v1/users/my-ratings
func (ctrl *UserController) GetMyRatings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	ratings, err := ctrl.ratingService.GetUserRatings(user.ID)
	if err != nil {
		log.Error("Failed to list user ratings", err, map[string]interface{}{
			"user_id": user.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list user ratings")
		return
	}

	responses := make([]gin.H, 0, len(ratings))
	for i := range ratings {
		// no anonymity redaction here, the caller is looking at their own ratings
		resp := ratingResponse(&ratings[i])
		resp["user_id"] = user.ID
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, gin.H{
		"ratings": responses,
		"count":   len(responses),
	})
}
