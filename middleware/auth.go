package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/config"
	"github.com/pathcare/pathlab-api/models"
	"github.com/pathcare/pathlab-api/utils"
)

// contextUserIDKey is the gin context key holding the authenticated user id
const contextUserIDKey = "user_id"

// TokenFromRequest extracts a bearer credential from the Authorization
// header, the x-access-token header, or the token query parameter. The query
// parameter is accepted so that direct download links can carry credentials.
func TokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token := c.GetHeader("x-access-token"); token != "" {
		return token
	}
	return c.Query("token")
}

// authenticate validates the session token and stores the caller's user id
// in the gin context. On failure it aborts the request with 401 and returns
// false.
func authenticate(c *gin.Context) bool {
	token := TokenFromRequest(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "Access denied: no token provided",
			},
		})
		return false
	}

	cfg := config.GetConfig()
	claims, err := utils.ValidateSessionToken(token, cfg.JWTSecret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TOKEN",
				"message": "Invalid or expired token",
			},
		})
		return false
	}

	c.Set(contextUserIDKey, claims.UserID)
	return true
}

// RequireAuth rejects requests that do not carry a valid session token
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireAdmin validates the session token and then re-fetches the caller's
// admin flag from the database. The flag embedded in a token is never
// trusted; only the stored value authorizes admin routes.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			return
		}

		userID, err := GetUserID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHENTICATED",
					"message": "Could not extract user information",
				},
			})
			return
		}

		db := config.GetDB()
		var user models.User
		if err := db.Select("is_admin").First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "User not found",
				},
			})
			return
		}

		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Access denied: requires admin privileges",
				},
			})
			return
		}

		c.Next()
	}
}

// GetUserID extracts the authenticated user id from the gin context
func GetUserID(c *gin.Context) (uint, error) {
	value, exists := c.Get(contextUserIDKey)
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userID, ok := value.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID has unexpected type"}
	}

	return userID, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
