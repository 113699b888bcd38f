package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ratewise/ratewise-backend/internal/app/model"
	"github.com/ratewise/ratewise-backend/internal/app/repository"
	"github.com/ratewise/ratewise-backend/internal/errors"
	"github.com/ratewise/ratewise-backend/pkg/redis"
	"github.com/ratewise/ratewise-backend/pkg/util"
	"gorm.io/gorm"
)

// Context keys for the resolved identity
const (
	CurrentUserKey = "current_user"
	BearerTokenKey = "bearer_token"
)

type AuthMiddleware struct {
	jwtSecret string
	userRepo  repository.UserRepository
	storeRepo repository.StoreRepository
}

func NewAuthMiddleware(jwtSecret string, userRepo repository.UserRepository, storeRepo repository.StoreRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		userRepo:  userRepo,
		storeRepo: storeRepo,
	}
}

// Authenticate validates the bearer token and resolves it to an active user.
// The full user record is attached to the context for downstream handlers.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "Access denied. No token provided.")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authorization header format")
			c.Abort()
			return
		}
		token := parts[1]

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Session expired. Please log in again.")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authentication token")
			}
			c.Abort()
			return
		}

		// Logged-out tokens are refused even before their natural expiry.
		// Best effort: when redis is down we fall through to the DB check.
		if revoked, err := redis.IsTokenBlacklisted(c.Request.Context(), token); err == nil && revoked {
			log.Warn("Revoked token presented", map[string]interface{}{
				"user_id": claims.UserID,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token has been revoked")
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(claims.UserID)
		if err != nil || !user.IsActive() {
			log.Warn("Token user missing or inactive", map[string]interface{}{
				"user_id": claims.UserID,
			})
			errors.Unauthorized(c, "Access denied. User not found or inactive.")
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, user)
		c.Set(BearerTokenKey, token)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    user.Role,
		})

		c.Next()
	}
}

// RequireRole rejects the request unless the authenticated user's role is
// one of the allowed roles. Roles are the closed model.UserRole type.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		user, ok := GetCurrentUser(c)
		if !ok {
			log.Warn("Role check without authenticated user", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRoleNotFound, "Role information not found")
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        user.ID,
			"user_role":      user.Role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "Access denied. Insufficient permissions.")
		c.Abort()
	}
}

// RequireStoreOwnership gates store mutations on the :id path parameter.
// The existence check runs first: a missing store is 404 for everyone.
// Admins then pass unconditionally; store owners pass only for their own
// store; everyone else is 403.
func (m *AuthMiddleware) RequireStoreOwnership() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		user, ok := GetCurrentUser(c)
		if !ok {
			errors.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		storeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			errors.BadRequest(c, errors.ValidationInvalidID, "Invalid store ID")
			c.Abort()
			return
		}

		store, err := m.storeRepo.FindByID(uint(storeID))
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				errors.NotFound(c, errors.StoreNotFound, "Store not found")
			} else {
				log.Error("Failed to load store for ownership check", err, map[string]interface{}{
					"store_id": storeID,
				})
				errors.InternalError(c, "Error checking store ownership")
			}
			c.Abort()
			return
		}

		if user.Role == model.RoleAdmin {
			c.Next()
			return
		}

		if user.Role == model.RoleStoreOwner && store.OwnerID == user.ID {
			c.Next()
			return
		}

		log.Warn("Store ownership check failed", map[string]interface{}{
			"user_id":  user.ID,
			"store_id": store.ID,
			"owner_id": store.OwnerID,
		})
		errors.RespondWithError(c, http.StatusForbidden, errors.AuthzOwnerOnly, "Access denied. You can only manage your own stores.")
		c.Abort()
	}
}

// GetCurrentUser extracts the authenticated user from the context
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}

// GetBearerToken extracts the raw bearer token from the context
func GetBearerToken(c *gin.Context) (string, bool) {
	value, exists := c.Get(BearerTokenKey)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}
