package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ratewise/ratewise-backend/internal/errors"
	"github.com/ratewise/ratewise-backend/pkg/redis"
)

// RateLimitMiddleware applies a fixed-window per-IP request limit backed by
// redis. When redis is not configured the limiter is a no-op.
func RateLimitMiddleware(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redis.GetClient() == nil {
			c.Next()
			return
		}

		allowed, err := redis.Allow(c.Request.Context(), c.ClientIP(), requests, window)
		if err != nil {
			// A broken limiter must not take the API down with it
			log := GetLoggerFromContext(c)
			log.Warn("Rate limiter unavailable, allowing request", map[string]interface{}{
				"error": err.Error(),
			})
			c.Next()
			return
		}

		if !allowed {
			errors.RespondWithError(c, http.StatusTooManyRequests, errors.RateLimitExceeded,
				"Too many requests from this IP, please try again later.")
			c.Abort()
			return
		}

		c.Next()
	}
}
