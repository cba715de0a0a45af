package testutil

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pathcare/pathlab-api/models"
	"github.com/pathcare/pathlab-api/utils"
	"gorm.io/gorm"
)

// TestJWTSecret is the signing secret used across the test suites
const TestJWTSecret = "test-secret"

// MintSessionToken issues a real signed session token for the given user id
func MintSessionToken(t *testing.T, userID uint) string {
	t.Helper()

	token, err := utils.GenerateSessionToken(userID, TestJWTSecret)
	if err != nil {
		t.Fatalf("Failed to mint session token: %v", err)
	}
	return token
}

// MockAuthMiddleware simulates a validated session for the given user id
func MockAuthMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

// CreateUser inserts a user with a bcrypt-hashed password
func CreateUser(t *testing.T, db *gorm.DB, email, password string, isAdmin bool) models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  hash,
		Verified:  true,
		IsAdmin:   isAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}
