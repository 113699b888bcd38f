package errors

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo is a parsed error: a stable code plus a user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts arbitrary persistence errors into a stable code and a
// message safe to show to the caller. Constraint violations are recognized
// from the driver error text (works for both Postgres and the sqlite test DB).
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "An unexpected error occurred"}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(context), Message: notFoundMessage(context)}
	}

	// Unique constraint violation (Postgres 23505 / sqlite UNIQUE)
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// Foreign key violation (Postgres 23503)
	if strings.Contains(errStr, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	// Not null violation (Postgres 23502)
	if strings.Contains(errStr, "null value") && strings.Contains(errStr, "not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	// Check constraint violation (Postgres 23514)
	if strings.Contains(errStr, "check constraint") {
		if strings.Contains(errStr, "rating") {
			return ErrorInfo{Code: RatingInvalidValue, Message: "Rating must be between 1 and 5"}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input value"}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "A backing service is unavailable. Please try again later.",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: "An unexpected error occurred. Please try again later."}
}

// IsDuplicateKey reports whether an error is a uniqueness violation
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint")
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "email") {
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email is already registered"}
	}
	if strings.Contains(errStr, "ratings") ||
		(strings.Contains(errStr, "user_id") && strings.Contains(errStr, "store_id")) {
		return ErrorInfo{Code: RatingAlreadyExists, Message: "You have already rated this store"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func parseForeignKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "still referenced") {
		return ErrorInfo{Code: ResourceConflict, Message: "Resource is referenced by other data and cannot be removed"}
	}
	if strings.Contains(errStr, "store_id") {
		return ErrorInfo{Code: StoreNotFound, Message: "Store not found"}
	}
	if strings.Contains(errStr, "user_id") || strings.Contains(errStr, "owner_id") {
		return ErrorInfo{Code: UserNotFound, Message: "User not found"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "Referenced resource not found"}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "store"):
		return StoreNotFound
	case strings.Contains(contextLower, "rating"):
		return RatingNotFound
	case strings.Contains(contextLower, "user"):
		return UserNotFound
	default:
		return ResourceNotFound
	}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "store"):
		return "Store not found"
	case strings.Contains(contextLower, "rating"):
		return "Rating not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	default:
		return "Requested resource not found"
	}
}

// ParseAndRespond parses an error and writes the corresponding response
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
